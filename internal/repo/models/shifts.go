package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/nikmy/shifter/internal/shifts"
)

// Shift is the stored form of shifts.Shift. Dates are kept twice: as BSON
// dates for comparisons and as the caller's text for display.
type Shift struct {
	ID          primitive.ObjectID `json:"id"                bson:"_id,omitempty"`
	Name        string             `json:"name"              bson:"name"`
	Owner       string             `json:"user"              bson:"user"`
	StartDate   time.Time          `json:"start_date"        bson:"start_date"`
	EndDate     time.Time          `json:"end_date"          bson:"end_date"`
	StartString string             `json:"start_date_string" bson:"start_date_string"`
	EndString   string             `json:"end_date_string"   bson:"end_date_string"`
}

const (
	ShiftFieldID          = "_id"
	ShiftFieldName        = "name"
	ShiftFieldOwner       = "user"
	ShiftFieldStartDate   = "start_date"
	ShiftFieldEndDate     = "end_date"
	ShiftFieldStartString = "start_date_string"
	ShiftFieldEndString   = "end_date_string"
)

func ShiftFromDomain(s shifts.Shift) Shift {
	return Shift{
		Name:        s.Name,
		Owner:       s.Owner,
		StartDate:   s.Start.At.UTC(),
		EndDate:     s.End.At.UTC(),
		StartString: s.Start.Raw,
		EndString:   s.End.Raw,
	}
}

func (s Shift) ToDomain() shifts.Shift {
	return shifts.Shift{
		ID:    s.ID.Hex(),
		Name:  s.Name,
		Owner: s.Owner,
		Start: shifts.Timestamp{At: s.StartDate, Raw: s.StartString},
		End:   shifts.Timestamp{At: s.EndDate, Raw: s.EndString},
	}
}

// OwnerGuardFieldVersion is bumped inside every transactional overlap check
// so that two transactions booking for the same owner always write the same
// document.
const OwnerGuardFieldVersion = "version"
