package schema

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedOutput is returned when generative output cannot be parsed
	// as JSON at all. Never retried without operator input.
	ErrMalformedOutput = errors.New("generative output is not valid JSON")

	// ErrMissingPrimaryAnomaly is returned when the rank-1 anomaly is absent
	// or its rank is ambiguous. The outlier section is built from rank 1
	// only; falling back to rank 2 is a policy violation, not a recovery.
	ErrMissingPrimaryAnomaly = errors.New("rank-1 anomaly is missing or ambiguous")
)

// Error describes a single shape violation with enough detail to drive a
// manual fix: which region, which field, which slot.
type Error struct {
	Region string // Region the violation belongs to, if regional
	Field  string // JSON field path, e.g. "weather_grid[0].deep_why"
	Slot   int    // Slot or rank number, 0 if not slot-scoped
	Reason string
}

func (e *Error) Error() string {
	msg := "schema violation"
	if e.Region != "" {
		msg += " [" + e.Region + "]"
	}
	if e.Field != "" {
		msg += " " + e.Field
	}
	if e.Slot != 0 {
		msg += fmt.Sprintf(" (slot %d)", e.Slot)
	}
	return msg + ": " + e.Reason
}

func violation(region, field string, slot int, format string, args ...any) error {
	return &Error{Region: region, Field: field, Slot: slot, Reason: fmt.Sprintf(format, args...)}
}
