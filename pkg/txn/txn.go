package txn

import "context"

// Runner executes do as one unit of work. Implementations that cannot
// provide multi-operation atomicity must still call do exactly once and
// return its error unchanged.
type Runner interface {
	Txn(ctx context.Context, do func(ctx context.Context) error) error
}
