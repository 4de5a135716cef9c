package core

import (
	"math"
	"time"
)

// Date and month layouts. Dates are stored as strings in exactly these
// forms; month filtering relies on the 7-character prefix of DateLayout.
const (
	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"
)

// ParseDate validates a strict ISO calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, Validationf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return t, nil
}

// ParseMonth validates a strict "YYYY-MM" month.
func ParseMonth(s string) (time.Time, error) {
	t, err := time.Parse(MonthLayout, s)
	if err != nil {
		return time.Time{}, Validationf("invalid month %q: expected YYYY-MM", s)
	}
	return t, nil
}

// MonthOf returns the "YYYY-MM" prefix of an ISO date string.
func MonthOf(date string) string {
	if len(date) < 7 {
		return date
	}
	return date[:7]
}

// CurrentMonth formats now as "YYYY-MM".
func CurrentMonth(now time.Time) string {
	return now.Format(MonthLayout)
}

// LastNMonths lists the n calendar months ending at end (inclusive), in
// chronological order.
func LastNMonths(end string, n int) ([]string, error) {
	t, err := ParseMonth(end)
	if err != nil {
		return nil, err
	}
	if n < 1 {
		return nil, Validationf("month window must be at least 1, got %d", n)
	}
	months := make([]string, 0, n)
	for delta := n - 1; delta >= 0; delta-- {
		months = append(months, t.AddDate(0, -delta, 0).Format(MonthLayout))
	}
	return months, nil
}

// ShiftMonth moves a month string by delta calendar months.
func ShiftMonth(month string, delta int) (string, error) {
	t, err := ParseMonth(month)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, delta, 0).Format(MonthLayout), nil
}

// RoundCents rounds to two decimal places, half away from zero. Used for
// import dedup keys so equal amounts compare equal regardless of float noise.
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
