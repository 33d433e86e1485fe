package await

import (
	"context"
	"time"
)

type Ticker struct {
	*time.Ticker
}

func Tick(interval time.Duration) *Ticker {
	return &Ticker{time.NewTicker(interval)}
}

func (t *Ticker) Await(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-t.Ticker.C:
		return true
	}
}
