package shifts

import (
	"context"

	"github.com/nikmy/shifter/pkg/txn"
)

//go:generate mockgen -source=interfaces.go -destination=mock_interfaces_test.go -package=shifts

// Store persists shifts and answers range and conflict queries.
// Missing ids are reported as ErrNotFound.
type Store interface {
	txn.Runner

	Insert(ctx context.Context, shift Shift) (id string, err error)
	Get(ctx context.Context, id string) (Shift, error)
	Update(ctx context.Context, id string, interval Interval) (Shift, error)
	Delete(ctx context.Context, id string) error

	// FindOverlap returns the conflicting shift of owner with the lowest id,
	// skipping excludeID. Nil means no conflict.
	FindOverlap(ctx context.Context, owner string, interval Interval, excludeID string) (*Shift, error)

	// Scan returns shifts of every owner matching f, by start ascending.
	Scan(ctx context.Context, f ScanFilter) ([]Shift, error)
}

type Recorder interface {
	Observe(op Op, result Result)
}

type Op string

const (
	OpCreate Op = "create"
	OpEdit   Op = "edit"
	OpDelete Op = "delete"
)

type Result string

const (
	ResultOK           Result = "ok"
	ResultInvalid      Result = "invalid"
	ResultConflict     Result = "conflict"
	ResultNotFound     Result = "not_found"
	ResultUnauthorized Result = "unauthorized"
	ResultError        Result = "error"
)

type nopRecorder struct{}

func (nopRecorder) Observe(Op, Result) {}
