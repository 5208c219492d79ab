// Package ordernumber formats human-readable order numbers of the form
// ORD-YYYYMMDD-NNNN, where NNNN is the 1-based sequence within a UTC day.
package ordernumber

import (
	"fmt"
	"time"
)

const prefix = "ORD"

// Day truncates t to its UTC calendar day.
func Day(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// Format renders the order number for the seq-th order of t's UTC day.
// Sequences past 9999 widen rather than wrap.
func Format(t time.Time, seq int) string {
	return fmt.Sprintf("%s-%s-%04d", prefix, t.UTC().Format("20060102"), seq)
}

// Next is the number for the order after countToday orders already placed on
// t's UTC day.
func Next(t time.Time, countToday int) string {
	return Format(t, countToday+1)
}
