package shifts

import (
	"cmp"
	"context"
	"time"

	"github.com/nikmy/shifter/pkg/errors"
	"github.com/nikmy/shifter/pkg/keylock"
	"github.com/nikmy/shifter/pkg/logger"
)

type Option func(s *Service)

// WithLocation sets the zone for date-times given without an offset.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.rec = r
		}
	}
}

func NewService(store Store, log logger.Logger, opts ...Option) *Service {
	s := &Service{
		store: store,
		locks: keylock.New(),
		loc:   time.UTC,
		rec:   nopRecorder{},
		log:   log.With("shifts"),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Service validates and commits shift changes. Mutations of one owner's
// shifts are serialized, so the overlap check and the write that follows
// it cannot interleave with another writer for the same owner.
type Service struct {
	store Store
	locks *keylock.Locker
	loc   *time.Location
	rec   Recorder
	log   logger.Logger
}

func (s *Service) Location() *time.Location {
	return s.loc
}

func (s *Service) Create(ctx context.Context, actor Actor, req CreateRequest) (created Shift, err error) {
	defer func() { s.observe(OpCreate, err) }()

	iv, err := parseCreate(req, s.loc)
	if err != nil {
		return Shift{}, err
	}

	owner := cmp.Or(req.Owner, actor.ID)
	if owner == "" || !actor.mayActFor(owner) {
		return Shift{}, ErrUnauthorized
	}

	shift := Shift{
		Name:  req.Name,
		Owner: owner,
		Start: iv.Start,
		End:   iv.End,
	}

	unlock := s.locks.Lock(owner)
	defer unlock()

	err = s.store.Txn(ctx, func(ctx context.Context) error {
		err := s.Validate(ctx, owner, iv, "")
		if err != nil {
			return err
		}

		id, err := s.store.Insert(ctx, shift)
		if err != nil {
			return errors.WrapFail(err, "insert shift")
		}

		shift.ID = id
		return nil
	})
	if err != nil {
		return Shift{}, err
	}

	s.log.Debugf("created shift %s for %s [%s, %s]", shift.ID, owner, shift.Start, shift.End)
	return shift, nil
}

func (s *Service) Edit(ctx context.Context, actor Actor, req EditRequest) (edited Shift, err error) {
	defer func() { s.observe(OpEdit, err) }()

	iv, err := parseEdit(req, s.loc)
	if err != nil {
		return Shift{}, err
	}

	existing, err := s.store.Get(ctx, req.ID)
	if err != nil {
		return Shift{}, errors.WrapFail(err, "get shift to edit")
	}

	// an explicit owner must match the stored one
	if req.Owner != "" && req.Owner != existing.Owner {
		return Shift{}, ErrNotFound
	}

	if actor.ID == "" || !actor.mayActFor(existing.Owner) {
		return Shift{}, ErrUnauthorized
	}

	unlock := s.locks.Lock(existing.Owner)
	defer unlock()

	err = s.store.Txn(ctx, func(ctx context.Context) error {
		err := s.Validate(ctx, existing.Owner, iv, req.ID)
		if err != nil {
			return err
		}

		edited, err = s.store.Update(ctx, req.ID, iv)
		return errors.WrapFail(err, "update shift")
	})
	if err != nil {
		return Shift{}, err
	}

	return edited, nil
}

func (s *Service) Delete(ctx context.Context, actor Actor, id string) (err error) {
	defer func() { s.observe(OpDelete, err) }()

	existing, err := s.store.Get(ctx, id)
	if err != nil {
		return errors.WrapFail(err, "get shift to delete")
	}

	if actor.ID == "" || !actor.mayActFor(existing.Owner) {
		return ErrUnauthorized
	}

	unlock := s.locks.Lock(existing.Owner)
	defer unlock()

	return errors.WrapFail(s.store.Delete(ctx, id), "delete shift")
}

func (s *Service) Get(ctx context.Context, id string) (Shift, error) {
	shift, err := s.store.Get(ctx, id)
	return shift, errors.WrapFail(err, "get shift")
}

// List returns every shift with start >= from and end <= to. Empty bounds
// are open; a bound may be a date or a full date-time.
func (s *Service) List(ctx context.Context, from, to string) ([]Shift, error) {
	f, err := parseScanFilter(from, to, s.loc)
	if err != nil {
		return nil, err
	}

	found, err := s.store.Scan(ctx, f)
	if err != nil {
		return nil, errors.WrapFail(err, "scan shifts")
	}
	return found, nil
}

// Validate reports ErrConflict (as *ConflictError) when owner already has a
// shift intersecting interval, other than excludeID.
func (s *Service) Validate(ctx context.Context, owner string, interval Interval, excludeID string) error {
	if !interval.Valid() {
		return &InvalidInputError{Fields: map[string]string{FieldEnd: msgOrder}}
	}

	found, err := s.store.FindOverlap(ctx, owner, interval, excludeID)
	if err != nil {
		return errors.WrapFail(err, "find overlapping shift")
	}

	if found != nil {
		return &ConflictError{Existing: *found}
	}

	return nil
}

func (s *Service) observe(op Op, err error) {
	var invalid *InvalidInputError

	switch {
	case err == nil:
		s.rec.Observe(op, ResultOK)
	case errors.As(err, &invalid):
		s.rec.Observe(op, ResultInvalid)
	case errors.Is(err, ErrConflict):
		s.rec.Observe(op, ResultConflict)
	case errors.Is(err, ErrNotFound):
		s.rec.Observe(op, ResultNotFound)
	case errors.Is(err, ErrUnauthorized):
		s.rec.Observe(op, ResultUnauthorized)
	default:
		s.rec.Observe(op, ResultError)
		s.log.Error(errors.WrapFailf(err, "%s shift", op))
	}
}
