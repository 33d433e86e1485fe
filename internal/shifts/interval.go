package shifts

// Interval is a closed [Start, End] span.
type Interval struct {
	Start Timestamp
	End   Timestamp
}

func (i Interval) Valid() bool {
	return i.Start.At.Before(i.End.At)
}

// Overlaps reports whether either interval's start lies within the other's
// closed span. Boundaries are inclusive: a shift ending at T and one
// starting at T overlap.
func (i Interval) Overlaps(o Interval) bool {
	return contains(i, o.Start) || contains(o, i.Start)
}

func contains(i Interval, t Timestamp) bool {
	return !t.At.Before(i.Start.At) && !t.At.After(i.End.At)
}
