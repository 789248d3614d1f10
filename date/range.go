package date

import "fmt"

// Range represents a range of dates, boundaries included.
type Range struct{ From, To Date }

// Year returns the range covering a whole calendar (tax) year.
func Year(y int) Range {
	return Range{From: New(y, 1, 1), To: New(y, 12, 31)}
}

// Contains return true date is included in the range (boundaries included)
func (r Range) Contains(date Date) bool { return !date.Before(r.From) && !date.After(r.To) }

// IsZero reports whether the range is unset, which callers read as "all time".
func (r Range) IsZero() bool { return r.From.IsZero() && r.To.IsZero() }

// String returns "2025" for a calendar year and "from_to" otherwise.
func (r Range) String() string {
	if r.From == New(r.From.Year(), 1, 1) && r.To == New(r.From.Year(), 12, 31) {
		return r.From.Format("2006")
	}
	return fmt.Sprintf("%s_%s", r.From, r.To)
}
