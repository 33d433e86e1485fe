package api

import (
	"context"
	"time"

	"github.com/nikmy/shifter/internal/auth"
	"github.com/nikmy/shifter/internal/shifts"
)

type Server interface {
	Serve(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

type Shifts interface {
	Create(ctx context.Context, actor shifts.Actor, req shifts.CreateRequest) (shifts.Shift, error)
	Edit(ctx context.Context, actor shifts.Actor, req shifts.EditRequest) (shifts.Shift, error)
	Delete(ctx context.Context, actor shifts.Actor, id string) error
	Get(ctx context.Context, id string) (shifts.Shift, error)
	List(ctx context.Context, from, to string) ([]shifts.Shift, error)
}

type Authenticator interface {
	Authenticate(header string) (auth.Principal, error)
}

type Metrics interface {
	ObserveRequest(method, route string, status int, took time.Duration)
}
