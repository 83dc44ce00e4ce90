package scoring

import (
	"time"

	"github.com/plant-healthcheck/planthealth/internal/model"
)

// NextDueDate derives the next inspection date from the template frequency
// and the completion instant. The result is a calendar date (midnight UTC).
//
// Month and year offsets clamp to the end of the target month: monthly from
// Jan 31 lands on Feb 29 (leap) or Feb 28, never on Mar 2. An unrecognized
// or missing frequency falls back to monthly.
func NextDueDate(freq model.Frequency, ref time.Time) time.Time {
	ref = ref.UTC()
	switch freq {
	case model.FrequencyDaily:
		return dateOnly(ref.AddDate(0, 0, 1))
	case model.FrequencyWeekly:
		return dateOnly(ref.AddDate(0, 0, 7))
	case model.FrequencyBiweekly:
		return dateOnly(ref.AddDate(0, 0, 14))
	case model.FrequencyMonthly:
		return addMonthsClamped(ref, 1)
	case model.FrequencyQuarterly:
		return addMonthsClamped(ref, 3)
	case model.FrequencySemiannual:
		return addMonthsClamped(ref, 6)
	case model.FrequencyAnnual:
		return addMonthsClamped(ref, 12)
	default:
		return addMonthsClamped(ref, 1)
	}
}

// addMonthsClamped adds months keeping the day of month, clamped to the last
// day of the target month. time.AddDate would normalize Jan 31 + 1 month to
// Mar 2/3, which is the silent overflow this avoids.
func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	m := int(month) + months
	year += (m - 1) / 12
	month = time.Month((m-1)%12 + 1)
	if last := daysInMonth(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func daysInMonth(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
