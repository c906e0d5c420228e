package reservation

import (
	"time"

	"rentals/internal/domain"
)

// DateRange is an inclusive span of calendar days.
type DateRange struct {
	Start time.Time
	End   time.Time
}

func RangeOf(r domain.Reservation) DateRange {
	return DateRange{Start: r.StartDate, End: r.EndDate}
}

// Overlaps reports whether a and b share at least one calendar day.
// Ranges that touch on a boundary day overlap.
func Overlaps(a, b DateRange) bool {
	return !Day(a.Start).After(Day(b.End)) && !Day(a.End).Before(Day(b.Start))
}

// FindConflict returns the first blocking reservation whose dates overlap
// candidate, or nil.
func FindConflict(candidate DateRange, existing []domain.Reservation) *domain.Reservation {
	for i := range existing {
		if !existing[i].Status.Blocking() {
			continue
		}
		if Overlaps(candidate, RangeOf(existing[i])) {
			return &existing[i]
		}
	}
	return nil
}

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysBetween is the whole-day difference end - start.
func daysBetween(start, end time.Time) int {
	return int(Day(end).Sub(Day(start)).Hours() / 24)
}
