package repo

import (
	"context"

	"github.com/nikmy/shifter/internal/shifts"
	"github.com/nikmy/shifter/pkg/errors"
	"github.com/nikmy/shifter/pkg/logger"
)

type Repo interface {
	shifts.Store

	// Run blocks doing background upkeep until ctx is done.
	Run(ctx context.Context) error
	Close(ctx context.Context) error
}

func New(ctx context.Context, cfg Config, log logger.Logger) (Repo, error) {
	switch cfg.Kind {
	case KindMongo:
		r, err := newMongo(ctx, cfg.Mongo, log)
		if err != nil {
			return nil, errors.WrapFail(err, "init mongo repo")
		}
		return r, nil
	case KindMemory, "":
		r, err := NewMemory(cfg.Memory, log)
		if err != nil {
			return nil, errors.WrapFail(err, "init memory repo")
		}
		return r, nil
	default:
		return nil, errors.Errorf("unknown storage kind %q", cfg.Kind)
	}
}
