package statistics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestWindowLengths(t *testing.T) {
	anchor := date(2024, time.March, 14)

	assert.Len(t, Window(Day, anchor, 0), 7)
	assert.Len(t, Window(Week, anchor, 0), 8)
	assert.Len(t, Window(Month, anchor, 0), 12)
	assert.Len(t, Window(Year, anchor, 2021), 4)
}

func TestWindowEndsAtAnchorWithoutGaps(t *testing.T) {
	anchor := date(2024, time.March, 14)

	days := Window(Day, anchor, 0)
	assert.Equal(t, "2024-03-08", days[0].Key)
	assert.Equal(t, "2024-03-14", days[6].Key)
	for i := 1; i < len(days); i++ {
		assert.Equal(t, days[i-1].Start.AddDate(0, 0, 1), days[i].Start)
	}

	weeks := Window(Week, anchor, 0)
	assert.Equal(t, "2024-W11", weeks[7].Key)
	assert.Equal(t, "2024-W04", weeks[0].Key)
	assert.Equal(t, "KW 11/2024", weeks[7].Label)

	months := Window(Month, anchor, 0)
	assert.Equal(t, "2023-04", months[0].Key)
	assert.Equal(t, "2024-03", months[11].Key)
	assert.Equal(t, "03/2024", months[11].Label)
}

func TestYearWindowWithoutData(t *testing.T) {
	years := Window(Year, date(2024, time.June, 1), 0)
	assert.Len(t, years, 1)
	assert.Equal(t, "2024", years[0].Key)

	future := Window(Year, date(2024, time.June, 1), 2030)
	assert.Len(t, future, 1)
}

func TestPeriodKeyUsesISOWeeks(t *testing.T) {
	assert.Equal(t, "2020-W53", PeriodKey(Week, date(2021, time.January, 3)))
	assert.Equal(t, "2025-W01", PeriodKey(Week, date(2024, time.December, 30)))
	assert.Equal(t, "2024-W01", PeriodKey(Week, date(2024, time.January, 1)))
}

func TestWeekWindowAcrossYearBoundary(t *testing.T) {
	weeks := Window(Week, date(2021, time.January, 6), 0)
	keys := make([]string, len(weeks))
	for i, w := range weeks {
		keys[i] = w.Key
	}
	assert.Equal(t, []string{
		"2020-W47", "2020-W48", "2020-W49", "2020-W50",
		"2020-W51", "2020-W52", "2020-W53", "2021-W01",
	}, keys)
}

func TestFillDefaultsToZero(t *testing.T) {
	periods := Window(Day, date(2024, time.January, 10), 0)
	values := fill(periods, map[string]int{"2024-01-10": 3, "2024-01-05": 1, "2023-12-01": 9})
	assert.Equal(t, []int{0, 1, 0, 0, 0, 0, 3}, values)
}
