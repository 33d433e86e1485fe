package shifts

import (
	"time"
)

type fieldErrors map[string]string

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return &InvalidInputError{Fields: f}
}

func parseCreate(req CreateRequest, loc *time.Location) (Interval, error) {
	errs := fieldErrors{}
	if req.Name == "" {
		errs[FieldName] = msgNameRequired
	}

	iv := parseInterval(req.Start, req.End, loc, errs)
	return iv, errs.err()
}

func parseEdit(req EditRequest, loc *time.Location) (Interval, error) {
	errs := fieldErrors{}
	iv := parseInterval(req.Start, req.End, loc, errs)
	return iv, errs.err()
}

func parseInterval(rawStart, rawEnd string, loc *time.Location, errs fieldErrors) Interval {
	start, startErr := ParseTimestamp(rawStart, loc)
	if startErr != nil {
		errs[FieldStart] = msgStartInvalid
	}

	end, endErr := ParseTimestamp(rawEnd, loc)
	if endErr != nil {
		errs[FieldEnd] = msgEndInvalid
	}

	iv := Interval{Start: start, End: end}
	if startErr == nil && endErr == nil && !iv.Valid() {
		errs[FieldEnd] = msgOrder
	}

	return iv
}

func parseScanFilter(rawFrom, rawTo string, loc *time.Location) (ScanFilter, error) {
	var (
		f    ScanFilter
		errs = fieldErrors{}
	)

	if rawFrom != "" {
		from, err := ParseBound(rawFrom, loc)
		if err != nil {
			errs[FieldStart] = "start_date must be a valid ISO 8601 date"
		} else {
			f.From = &from
		}
	}

	if rawTo != "" {
		to, err := ParseBound(rawTo, loc)
		if err != nil {
			errs[FieldEnd] = "end_date must be a valid ISO 8601 date"
		} else {
			f.To = &to
		}
	}

	return f, errs.err()
}
