package shifts

import "time"

type Shift struct {
	ID    string    `json:"_id"`
	Name  string    `json:"name"`
	Owner string    `json:"user"`
	Start Timestamp `json:"start_date"`
	End   Timestamp `json:"end_date"`
}

func (s Shift) Interval() Interval {
	return Interval{Start: s.Start, End: s.End}
}

// ScanFilter bounds a range scan: Start >= From and End <= To.
// Nil bounds are open.
type ScanFilter struct {
	From *time.Time
	To   *time.Time
}

func (f ScanFilter) Match(s Shift) bool {
	if f.From != nil && s.Start.At.Before(*f.From) {
		return false
	}
	if f.To != nil && s.End.At.After(*f.To) {
		return false
	}
	return true
}

// Actor is the authenticated caller of a mutating operation.
type Actor struct {
	ID      string
	Manager bool
}

func (a Actor) mayActFor(owner string) bool {
	return a.Manager || a.ID == owner
}

type CreateRequest struct {
	Name  string
	Start string
	End   string
	Owner string
}

// EditRequest carries no name: names are fixed at creation.
type EditRequest struct {
	ID    string
	Start string
	End   string
	Owner string
}
