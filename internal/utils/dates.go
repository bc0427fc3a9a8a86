package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	DateLayout     = "2006-01-02"
	ClockLayout    = "15:04"
	ClockSecLayout = "15:04:05"
)

// ParseDate accepts "2006-01-02" and returns midnight in loc.
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(value), loc)
}

// ParseClock accepts "15:04" or "15:04:05" and returns the minutes since
// midnight. Like MySQL TIME values, hours may run past 23 for sessions that
// end after midnight ("24:05:00").
func ParseClock(value string) (int, error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("invalid time %q", value)
	}
	var fields [3]int
	for i, part := range parts {
		if len(part) < 2 || (i > 0 && len(part) != 2) {
			return 0, fmt.Errorf("invalid time %q", value)
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 || (i > 0 && n > 59) {
			return 0, fmt.Errorf("invalid time %q", value)
		}
		fields[i] = n
	}
	return fields[0]*60 + fields[1], nil
}

// FormatClock renders minutes since midnight as "15:04:05", the form MySQL
// TIME columns come back in. Minutes past midnight keep counting hours
// ("24:05:00") so an end never sorts before its start.
func FormatClock(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	return fmt.Sprintf("%02d:%02d:00", minutes/60, minutes%60)
}

// Today returns the current calendar date in loc as "2006-01-02".
func Today(now time.Time, loc *time.Location) string {
	return now.In(loc).Format(DateLayout)
}
