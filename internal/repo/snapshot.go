package repo

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/nikmy/shifter/internal/repo/models"
	"github.com/nikmy/shifter/internal/shifts"
	"github.com/nikmy/shifter/pkg/errors"
	"github.com/nikmy/shifter/pkg/logger"
	mng "github.com/nikmy/shifter/pkg/mongotools"
	"github.com/nikmy/shifter/pkg/tools/await"
)

const defaultSnapshotInterval = time.Minute

type snapshot struct {
	Seq    uint64
	Shifts []shifts.Shift
}

// snapshotRecord is the on-disk layout. It reuses the stored document so a
// snapshot carries both the canonical dates and the display strings.
type snapshotRecord struct {
	Seq    uint64         `json:"seq"`
	Shifts []models.Shift `json:"shifts"`
}

func newSnapshotFile(fileName string, interval time.Duration, log logger.Logger) *snapshotFile {
	if interval <= 0 {
		interval = defaultSnapshotInterval
	}

	return &snapshotFile{
		fileName: fileName,
		interval: interval,
		log:      log.With("snapshot"),
	}
}

type snapshotFile struct {
	fileName string
	interval time.Duration
	log      logger.Logger
}

func (s *snapshotFile) run(ctx context.Context, dump func() (snapshot, bool)) error {
	tick := await.Tick(s.interval)
	defer tick.Stop()

	for tick.Await(ctx) {
		data, dirty := dump()
		if !dirty {
			continue
		}

		err := s.save(data)
		if err != nil {
			s.log.Error(errors.WrapFailf(err, "save snapshot to %s", s.fileName))
		}
	}

	return nil
}

func (s *snapshotFile) save(data snapshot) error {
	rec := snapshotRecord{Seq: data.Seq, Shifts: make([]models.Shift, 0, len(data.Shifts))}
	for _, shift := range data.Shifts {
		doc := models.ShiftFromDomain(shift)
		doc.ID, _ = mng.ObjectID(shift.ID)
		rec.Shifts = append(rec.Shifts, doc)
	}

	bytes, err := json.Marshal(rec)
	if err != nil {
		return errors.WrapFail(err, "marshal snapshot")
	}

	tmp := s.fileName + ".tmp"
	err = os.WriteFile(tmp, bytes, 0o644)
	if err != nil {
		return errors.WrapFailf(err, "write %s", tmp)
	}

	err = os.Rename(tmp, s.fileName)
	if err != nil {
		return errors.WrapFailf(err, "replace %s", s.fileName)
	}

	s.log.Debugf("saved %d shifts to %s", len(rec.Shifts), filepath.Base(s.fileName))
	return nil
}

func (s *snapshotFile) load() (snapshot, error) {
	bytes, err := os.ReadFile(s.fileName)
	if errors.Is(err, os.ErrNotExist) {
		return snapshot{}, nil
	}
	if err != nil {
		return snapshot{}, errors.WrapFailf(err, "read %s", s.fileName)
	}

	var rec snapshotRecord
	err = json.Unmarshal(bytes, &rec)
	if err != nil {
		return snapshot{}, errors.WrapFailf(err, "parse %s", s.fileName)
	}

	data := snapshot{Seq: rec.Seq, Shifts: make([]shifts.Shift, 0, len(rec.Shifts))}
	for _, doc := range rec.Shifts {
		data.Shifts = append(data.Shifts, doc.ToDomain())
	}

	s.log.Infof("loaded %d shifts from %s", len(data.Shifts), s.fileName)
	return data, nil
}
