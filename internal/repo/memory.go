package repo

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/nikmy/shifter/internal/shifts"
	"github.com/nikmy/shifter/pkg/errors"
	"github.com/nikmy/shifter/pkg/logger"
)

// NewMemory returns an in-process store. Ids are 24 hex digits of an
// increasing counter, so they sort in insertion order and look like the
// ObjectIDs the mongo store hands out.
func NewMemory(cfg MemoryConfig, log logger.Logger) (*Memory, error) {
	m := &Memory{
		byID: make(map[string]shifts.Shift),
		log:  log.With("memory_repo"),
	}

	if cfg.Snapshot == "" {
		return m, nil
	}

	m.snap = newSnapshotFile(cfg.Snapshot, cfg.Interval, m.log)

	loaded, err := m.snap.load()
	if err != nil {
		return nil, errors.WrapFail(err, "load snapshot")
	}

	m.restore(loaded)
	return m, nil
}

var _ Repo = (*Memory)(nil)

// Memory is the in-process Repo, optionally persisted to a JSON snapshot.
type Memory struct {
	// txMu serializes transactions, mu guards the data itself
	txMu sync.Mutex
	mu   sync.RWMutex

	seq   uint64
	byID  map[string]shifts.Shift
	order []string // by start, then id
	dirty bool

	snap *snapshotFile
	log  logger.Logger
}

func (m *Memory) Txn(ctx context.Context, do func(ctx context.Context) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	return do(ctx)
}

func (m *Memory) Insert(ctx context.Context, shift shifts.Shift) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	shift.ID = fmt.Sprintf("%024x", m.seq)

	m.byID[shift.ID] = shift
	m.index(shift)
	m.dirty = true

	return shift.ID, nil
}

func (m *Memory) Get(ctx context.Context, id string) (shifts.Shift, error) {
	if err := ctx.Err(); err != nil {
		return shifts.Shift{}, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	shift, ok := m.byID[id]
	if !ok {
		return shifts.Shift{}, shifts.ErrNotFound
	}
	return shift, nil
}

func (m *Memory) Update(ctx context.Context, id string, interval shifts.Interval) (shifts.Shift, error) {
	if err := ctx.Err(); err != nil {
		return shifts.Shift{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	shift, ok := m.byID[id]
	if !ok {
		return shifts.Shift{}, shifts.ErrNotFound
	}

	m.unindex(shift)
	shift.Start, shift.End = interval.Start, interval.End
	// id may alias caller memory, the stored key must stay the record's own
	m.byID[shift.ID] = shift
	m.index(shift)
	m.dirty = true

	return shift, nil
}

func (m *Memory) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	shift, ok := m.byID[id]
	if !ok {
		return shifts.ErrNotFound
	}

	m.unindex(shift)
	delete(m.byID, id)
	m.dirty = true

	return nil
}

func (m *Memory) FindOverlap(
	ctx context.Context,
	owner string,
	interval shifts.Interval,
	excludeID string,
) (*shifts.Shift, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var found *shifts.Shift
	for _, id := range m.order {
		s := m.byID[id]

		// nothing starting after the candidate ends can intersect it
		if s.Start.At.After(interval.End.At) {
			break
		}

		if s.Owner != owner || s.ID == excludeID || !s.Interval().Overlaps(interval) {
			continue
		}

		if found == nil || s.ID < found.ID {
			c := s
			found = &c
		}
	}

	return found, nil
}

func (m *Memory) Scan(ctx context.Context, f shifts.ScanFilter) ([]shifts.Shift, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	start := 0
	if f.From != nil {
		from := *f.From
		start = sort.Search(len(m.order), func(i int) bool {
			return !m.byID[m.order[i]].Start.At.Before(from)
		})
	}

	found := make([]shifts.Shift, 0, len(m.order)-start)
	for _, id := range m.order[start:] {
		s := m.byID[id]
		if f.Match(s) {
			found = append(found, s)
		}
	}

	return found, nil
}

func (m *Memory) Run(ctx context.Context) error {
	if m.snap == nil {
		<-ctx.Done()
		return nil
	}

	return m.snap.run(ctx, m.dump)
}

func (m *Memory) Close(ctx context.Context) error {
	if m.snap == nil {
		return nil
	}

	data, dirty := m.dump()
	if !dirty {
		return nil
	}
	return errors.WrapFail(m.snap.save(data), "save snapshot on close")
}

// dump copies the data for persisting and clears the dirty flag.
func (m *Memory) dump() (snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data := snapshot{Seq: m.seq, Shifts: make([]shifts.Shift, 0, len(m.order))}
	for _, id := range m.order {
		data.Shifts = append(data.Shifts, m.byID[id])
	}

	dirty := m.dirty
	m.dirty = false
	return data, dirty
}

func (m *Memory) restore(data snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq = data.Seq
	for _, s := range data.Shifts {
		m.byID[s.ID] = s
		m.index(s)
	}
}

func (m *Memory) position(s shifts.Shift) int {
	return sort.Search(len(m.order), func(i int) bool {
		other := m.byID[m.order[i]]
		if other.Start.At.Equal(s.Start.At) {
			return other.ID >= s.ID
		}
		return other.Start.At.After(s.Start.At)
	})
}

func (m *Memory) index(s shifts.Shift) {
	m.order = slices.Insert(m.order, m.position(s), s.ID)
}

func (m *Memory) unindex(s shifts.Shift) {
	idx := m.position(s)
	if idx < len(m.order) && m.order[idx] == s.ID {
		m.order = slices.Delete(m.order, idx, idx+1)
	}
}
