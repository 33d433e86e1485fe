package shifts

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/nikmy/shifter/pkg/errors"
	"github.com/nikmy/shifter/pkg/logger"
)

var errStorage = errors.New("connection reset")

func passTxn(ctx context.Context, do func(context.Context) error) error {
	return do(ctx)
}

func mustInterval(t *testing.T, start, end string) Interval {
	t.Helper()
	s, err := ParseTimestamp(start, time.UTC)
	require.NoError(t, err)
	e, err := ParseTimestamp(end, time.UTC)
	require.NoError(t, err)
	return Interval{Start: s, End: e}
}

func TestService_StorageErrors(t *testing.T) {
	ctx := context.Background()
	actor := Actor{ID: "u1"}

	stored := Shift{
		ID:    "000000000000000000000001",
		Name:  "a",
		Owner: "u1",
	}
	iv := mustInterval(t, "2024-01-01T09:00:00", "2024-01-01T10:00:00")
	stored.Start, stored.End = iv.Start, iv.End

	req := CreateRequest{Name: "a", Start: "2024-01-01T09:00:00", End: "2024-01-01T10:00:00"}
	edit := EditRequest{ID: stored.ID, Start: "2024-01-01T09:00:00", End: "2024-01-01T10:00:00"}

	type testcase struct {
		name   string
		op     Op
		expect func(store *MockStore)
		call   func(s *Service) error
	}

	tests := [...]testcase{
		{
			name: "create find overlap",
			op:   OpCreate,
			expect: func(store *MockStore) {
				store.EXPECT().Txn(gomock.Any(), gomock.Any()).DoAndReturn(passTxn)
				store.EXPECT().FindOverlap(gomock.Any(), "u1", iv, "").Return(nil, errStorage)
			},
			call: func(s *Service) error {
				_, err := s.Create(ctx, actor, req)
				return err
			},
		},
		{
			name: "create insert",
			op:   OpCreate,
			expect: func(store *MockStore) {
				store.EXPECT().Txn(gomock.Any(), gomock.Any()).DoAndReturn(passTxn)
				store.EXPECT().FindOverlap(gomock.Any(), "u1", iv, "").Return(nil, nil)
				store.EXPECT().Insert(gomock.Any(), gomock.Any()).Return("", errStorage)
			},
			call: func(s *Service) error {
				_, err := s.Create(ctx, actor, req)
				return err
			},
		},
		{
			name: "create txn commit",
			op:   OpCreate,
			expect: func(store *MockStore) {
				store.EXPECT().Txn(gomock.Any(), gomock.Any()).Return(errStorage)
			},
			call: func(s *Service) error {
				_, err := s.Create(ctx, actor, req)
				return err
			},
		},
		{
			name: "edit get",
			op:   OpEdit,
			expect: func(store *MockStore) {
				store.EXPECT().Get(gomock.Any(), stored.ID).Return(Shift{}, errStorage)
			},
			call: func(s *Service) error {
				_, err := s.Edit(ctx, actor, edit)
				return err
			},
		},
		{
			name: "edit update",
			op:   OpEdit,
			expect: func(store *MockStore) {
				store.EXPECT().Get(gomock.Any(), stored.ID).Return(stored, nil)
				store.EXPECT().Txn(gomock.Any(), gomock.Any()).DoAndReturn(passTxn)
				store.EXPECT().FindOverlap(gomock.Any(), "u1", iv, stored.ID).Return(nil, nil)
				store.EXPECT().Update(gomock.Any(), stored.ID, iv).Return(Shift{}, errStorage)
			},
			call: func(s *Service) error {
				_, err := s.Edit(ctx, actor, edit)
				return err
			},
		},
		{
			name: "delete",
			op:   OpDelete,
			expect: func(store *MockStore) {
				store.EXPECT().Get(gomock.Any(), stored.ID).Return(stored, nil)
				store.EXPECT().Delete(gomock.Any(), stored.ID).Return(errStorage)
			},
			call: func(s *Service) error {
				return s.Delete(ctx, actor, stored.ID)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			store := NewMockStore(ctrl)
			rec := NewMockRecorder(ctrl)

			tc.expect(store)
			rec.EXPECT().Observe(tc.op, ResultError)

			s := NewService(store, logger.NewStub(), WithRecorder(rec))

			err := tc.call(s)
			require.ErrorIs(t, err, errStorage)
			require.NotErrorIs(t, err, ErrConflict)
			require.NotErrorIs(t, err, ErrNotFound)

			var invalid *InvalidInputError
			require.False(t, errors.As(err, &invalid))
		})
	}
}

func TestService_ReadErrors(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	store := NewMockStore(ctrl)

	store.EXPECT().Get(gomock.Any(), "x").Return(Shift{}, errStorage)
	store.EXPECT().Scan(gomock.Any(), ScanFilter{}).Return(nil, errStorage)

	s := NewService(store, logger.NewStub())

	_, err := s.Get(ctx, "x")
	require.ErrorIs(t, err, errStorage)

	_, err = s.List(ctx, "", "")
	require.ErrorIs(t, err, errStorage)
}

func TestService_Recorder(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	store := NewMockStore(ctrl)
	rec := NewMockRecorder(ctrl)

	iv := mustInterval(t, "2024-01-01T09:00:00", "2024-01-01T10:00:00")
	existing := Shift{ID: "000000000000000000000001", Owner: "u1", Start: iv.Start, End: iv.End}

	s := NewService(store, logger.NewStub(), WithRecorder(rec))

	gomock.InOrder(
		rec.EXPECT().Observe(OpCreate, ResultInvalid),
		rec.EXPECT().Observe(OpCreate, ResultUnauthorized),
		rec.EXPECT().Observe(OpCreate, ResultConflict),
		rec.EXPECT().Observe(OpCreate, ResultOK),
		rec.EXPECT().Observe(OpDelete, ResultNotFound),
	)

	_, err := s.Create(ctx, Actor{ID: "u1"}, CreateRequest{})
	require.Error(t, err)

	_, err = s.Create(ctx, Actor{ID: "u2"}, CreateRequest{
		Name: "a", Owner: "u1", Start: "2024-01-01T09:00:00", End: "2024-01-01T10:00:00",
	})
	require.ErrorIs(t, err, ErrUnauthorized)

	store.EXPECT().Txn(gomock.Any(), gomock.Any()).DoAndReturn(passTxn).Times(2)
	first := store.EXPECT().FindOverlap(gomock.Any(), "u1", iv, "").Return(&existing, nil)
	store.EXPECT().FindOverlap(gomock.Any(), "u1", iv, "").Return(nil, nil).After(first)
	store.EXPECT().Insert(gomock.Any(), gomock.Any()).Return("000000000000000000000002", nil)

	req := CreateRequest{Name: "a", Start: "2024-01-01T09:00:00", End: "2024-01-01T10:00:00"}

	_, err = s.Create(ctx, Actor{ID: "u1"}, req)
	require.ErrorIs(t, err, ErrConflict)

	created, err := s.Create(ctx, Actor{ID: "u1"}, req)
	require.NoError(t, err)
	require.Equal(t, "000000000000000000000002", created.ID)

	store.EXPECT().Get(gomock.Any(), "missing").Return(Shift{}, ErrNotFound)
	require.ErrorIs(t, s.Delete(ctx, Actor{ID: "u1"}, "missing"), ErrNotFound)
}
