package util

import "time"

// DateLayout is the calendar-day layout used for every series date.
const DateLayout = "2006-01-02"

// NowUTC exposes time.Now for deterministic testing.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// ParseDate parses a YYYY-MM-DD string as a naive UTC calendar day. Full RFC 3339
// timestamps are accepted and truncated to their UTC day.
func ParseDate(value string) (time.Time, bool) {
	if ts, err := time.Parse(DateLayout, value); err == nil {
		return ts, true
	}
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, false
	}
	return StartOfDayUTC(ts), true
}

// FormatDate renders t as YYYY-MM-DD in UTC.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// StartOfDayUTC truncates t to midnight UTC.
func StartOfDayUTC(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// ShiftDate moves an ISO date by days. Unparsable input is returned unchanged.
func ShiftDate(value string, days int) string {
	ts, ok := ParseDate(value)
	if !ok {
		return value
	}
	return FormatDate(ts.AddDate(0, 0, days))
}
