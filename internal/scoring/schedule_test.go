package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/plant-healthcheck/planthealth/internal/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextDueDate(t *testing.T) {
	cases := []struct {
		name string
		freq model.Frequency
		ref  time.Time
		want time.Time
	}{
		{"daily", model.FrequencyDaily, date(2024, 1, 1), date(2024, 1, 2)},
		{"weekly", model.FrequencyWeekly, date(2024, 1, 1), date(2024, 1, 8)},
		{"biweekly", model.FrequencyBiweekly, date(2024, 1, 1), date(2024, 1, 15)},
		{"monthly mid-month", model.FrequencyMonthly, date(2024, 3, 15), date(2024, 4, 15)},
		{"quarterly", model.FrequencyQuarterly, date(2024, 2, 10), date(2024, 5, 10)},
		{"semiannual", model.FrequencySemiannual, date(2024, 3, 1), date(2024, 9, 1)},
		{"annual", model.FrequencyAnnual, date(2024, 6, 30), date(2025, 6, 30)},
		{"unknown falls back to monthly", model.Frequency("fortnightly"), date(2024, 3, 15), date(2024, 4, 15)},
		{"empty falls back to monthly", model.Frequency(""), date(2024, 3, 15), date(2024, 4, 15)},

		// End-of-month clamping: the day clamps to the target month's
		// length instead of overflowing into the following month.
		{"monthly from Jan 31 leap year", model.FrequencyMonthly, date(2024, 1, 31), date(2024, 2, 29)},
		{"monthly from Jan 31 common year", model.FrequencyMonthly, date(2023, 1, 31), date(2023, 2, 28)},
		{"quarterly from Nov 30", model.FrequencyQuarterly, date(2024, 11, 30), date(2025, 2, 28)},
		{"semiannual from Aug 31", model.FrequencySemiannual, date(2024, 8, 31), date(2025, 2, 28)},
		{"annual from Feb 29", model.FrequencyAnnual, date(2024, 2, 29), date(2025, 2, 28)},
		{"monthly year rollover", model.FrequencyMonthly, date(2024, 12, 31), date(2025, 1, 31)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NextDueDate(tc.freq, tc.ref))
		})
	}
}

func TestNextDueDateDropsTimeOfDay(t *testing.T) {
	ref := time.Date(2024, 1, 1, 23, 59, 59, 0, time.UTC)
	assert.Equal(t, date(2024, 1, 8), NextDueDate(model.FrequencyWeekly, ref))
}
