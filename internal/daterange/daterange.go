// internal/daterange/daterange.go
//
// Year-independent month-day ranges used to narrow which source comics are
// eligible for random selection. Ranges are inclusive and may not wrap from
// December into January.

package daterange

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// referenceYear is a non-leap year, so 02-29 is not a valid range bound.
const referenceYear = 2001

const separator = ".."

// MonthDay is a (month, day) pair ordered as if both fell in the same year.
type MonthDay struct {
	Month time.Month
	Day   int
}

// NewMonthDay validates month and day against a non-leap year.
func NewMonthDay(month, day int) (MonthDay, bool) {
	if month < 1 || month > 12 || day < 1 {
		return MonthDay{}, false
	}
	t := time.Date(referenceYear, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Month() != time.Month(month) || t.Day() != day {
		return MonthDay{}, false
	}
	return MonthDay{Month: time.Month(month), Day: day}, true
}

// FromDate drops the year of date. 29 February maps onto (2, 29), which
// still orders between 02-28 and 03-01.
func FromDate(date time.Time) MonthDay {
	return MonthDay{Month: date.Month(), Day: date.Day()}
}

// Before reports whether m sorts strictly before other.
func (m MonthDay) Before(other MonthDay) bool {
	if m.Month != other.Month {
		return m.Month < other.Month
	}
	return m.Day < other.Day
}

func (m MonthDay) String() string {
	return fmt.Sprintf("%02d-%02d", int(m.Month), m.Day)
}

// DateRange is an inclusive range of month-days with From <= To.
type DateRange struct {
	From MonthDay
	To   MonthDay
}

// All spans the whole year.
func All() DateRange {
	return DateRange{
		From: MonthDay{Month: time.January, Day: 1},
		To:   MonthDay{Month: time.December, Day: 31},
	}
}

// Contains reports whether the month and day of date fall within the range.
// The year of date is ignored.
func (r DateRange) Contains(date time.Time) bool {
	md := FromDate(date)
	return !md.Before(r.From) && !r.To.Before(md)
}

// IsAll reports whether the range covers the whole year.
func (r DateRange) IsAll() bool {
	return r == All()
}

func (r DateRange) String() string {
	if r.From == r.To {
		return r.From.String()
	}
	return r.From.String() + separator + r.To.String()
}

// ParseError describes why a range string was rejected.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("daterange: invalid range %q: %s", e.Input, e.Reason)
}

// Parse accepts "MM-DD" for a single day or "MM-DD..MM-DD" for an inclusive
// range.
func Parse(text string) (DateRange, error) {
	fromText, toText, hasTo := strings.Cut(text, separator)

	from, ok := parseMonthDay(fromText)
	if !ok {
		return DateRange{}, &ParseError{Input: text, Reason: fmt.Sprintf("invalid start date %q", fromText)}
	}
	to := from
	if hasTo {
		to, ok = parseMonthDay(toText)
		if !ok {
			return DateRange{}, &ParseError{Input: text, Reason: fmt.Sprintf("invalid end date %q", toText)}
		}
	}
	if to.Before(from) {
		return DateRange{}, &ParseError{Input: text, Reason: "end date must not be before start date"}
	}
	return DateRange{From: from, To: to}, nil
}

func parseMonthDay(text string) (MonthDay, bool) {
	monthText, dayText, ok := strings.Cut(text, "-")
	if !ok {
		return MonthDay{}, false
	}
	month, err := strconv.Atoi(monthText)
	if err != nil {
		return MonthDay{}, false
	}
	day, err := strconv.Atoi(dayText)
	if err != nil {
		return MonthDay{}, false
	}
	return NewMonthDay(month, day)
}
