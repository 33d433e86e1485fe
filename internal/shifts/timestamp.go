package shifts

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/nikmy/shifter/pkg/errors"
)

// Timestamp is an instant together with the exact text it was parsed from.
// At is used for ordering and overlap math only; Raw is what gets shown back.
type Timestamp struct {
	At  time.Time
	Raw string
}

var (
	zonedLayouts = [...]string{
		"2006-01-02T15:04:05.999999999Z07:00",
		"2006-01-02T15:04:05.999999999Z0700",
		"2006-01-02T15:04Z07:00",
		"2006-01-02T15:04Z0700",
	}

	// Inputs without an offset are read in the configured location.
	localLayouts = [...]string{
		"2006-01-02T15:04:05.999999999",
		"2006-01-02T15:04",
	}

	dateLayout = "2006-01-02"
)

const errBadTimestamp = errors.Const("not a full ISO 8601 date-time")

// ParseTimestamp accepts a full ISO 8601 date-time with or without an offset.
// Bare dates are rejected.
func ParseTimestamp(raw string, loc *time.Location) (Timestamp, error) {
	at, ok := parseDateTime(raw, loc)
	if !ok {
		return Timestamp{}, errors.Wrapf(errBadTimestamp, "parse %q", raw)
	}
	return Timestamp{At: at, Raw: raw}, nil
}

// ParseBound is like ParseTimestamp but also accepts a plain date, which
// means midnight in loc. Used for range filters.
func ParseBound(raw string, loc *time.Location) (time.Time, error) {
	if at, ok := parseDateTime(raw, loc); ok {
		return at, nil
	}

	at, err := time.ParseInLocation(dateLayout, raw, loc)
	if err != nil {
		return time.Time{}, errors.Wrapf(errBadTimestamp, "parse bound %q", raw)
	}
	return at, nil
}

func parseDateTime(raw string, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.UTC
	}

	// ISO 8601 allows lowercase designators, time.Parse does not.
	s := strings.ToUpper(raw)

	for _, layout := range zonedLayouts {
		if at, err := time.Parse(layout, s); err == nil {
			return at, true
		}
	}

	for _, layout := range localLayouts {
		if at, err := time.ParseInLocation(layout, s, loc); err == nil {
			return at, true
		}
	}

	return time.Time{}, false
}

func (t Timestamp) IsZero() bool {
	return t.At.IsZero() && t.Raw == ""
}

func (t Timestamp) String() string {
	return t.Raw
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Raw)
}
