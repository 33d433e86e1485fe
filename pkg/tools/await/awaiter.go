package await

import "context"

type Awaiter interface {
	// Await blocks until the next event and reports false once ctx is done.
	Await(ctx context.Context) (waited bool)
}
