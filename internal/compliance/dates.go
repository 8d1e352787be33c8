package compliance

import (
	"math"
	"time"

	"hrdocs/internal/types"
)

// midnight truncates t to 00:00 in its own location. All window math in this
// package operates on midnights so that an item's daysLeft does not change
// within a calendar day.
func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// daysBetween returns the signed number of calendar days from a to b, both
// taken at midnight. Rounding absorbs DST transitions, which make some local
// days 23 or 25 hours long.
func daysBetween(a, b time.Time) int {
	return int(math.Round(midnight(b).Sub(midnight(a)).Hours() / 24))
}

// urgencyOf maps remaining days to the shared three-level urgency scale.
func urgencyOf(days int) types.UrgencyLevel {
	switch {
	case days <= 7:
		return types.UrgencyCritical
	case days <= 30:
		return types.UrgencyWarning
	default:
		return types.UrgencyInfo
	}
}

// nextAnniversary returns the first hire-date anniversary strictly after
// today. An anniversary falling on today rolls over to next year.
func nextAnniversary(hireDate, today time.Time) time.Time {
	hire := midnight(hireDate)
	anniv := time.Date(today.Year(), hire.Month(), hire.Day(), 0, 0, 0, 0, today.Location())
	if !anniv.After(today) {
		anniv = anniv.AddDate(1, 0, 0)
	}
	return anniv
}
