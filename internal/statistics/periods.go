package statistics

import (
	"fmt"
	"time"

	"aufgussplan/internal/utils"
)

type Granularity string

const (
	Day   Granularity = "day"
	Week  Granularity = "week"
	Month Granularity = "month"
	Year  Granularity = "year"
)

// Granularities lists the report windows in display order.
var Granularities = []Granularity{Day, Week, Month, Year}

const (
	dayWindow   = 7
	weekWindow  = 8
	monthWindow = 12
)

func (g Granularity) Title() string {
	switch g {
	case Day:
		return "Letzte 7 Tage"
	case Week:
		return "Letzte 8 Wochen"
	case Month:
		return "Letzte 12 Monate"
	case Year:
		return "Alle Jahre"
	}
	return string(g)
}

// Period is one bucket of a window. Key matches the SQL period expression.
type Period struct {
	Key   string    `json:"key"`
	Label string    `json:"label"`
	Start time.Time `json:"-"`
}

// PeriodKey renders the bucket key t falls into.
func PeriodKey(g Granularity, t time.Time) string {
	switch g {
	case Week:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	case Month:
		return t.Format("2006-01")
	case Year:
		return t.Format("2006")
	}
	return t.Format(utils.DateLayout)
}

func periodLabel(g Granularity, t time.Time) string {
	switch g {
	case Week:
		year, week := t.ISOWeek()
		return fmt.Sprintf("KW %02d/%d", week, year)
	case Month:
		return t.Format("01/2006")
	case Year:
		return t.Format("2006")
	}
	return t.Format("02.01.")
}

// Window returns the canonical, gap-free period sequence ending at anchor,
// oldest first. firstYear only matters for Year and is clamped to the anchor.
func Window(g Granularity, anchor time.Time, firstYear int) []Period {
	anchor = time.Date(anchor.Year(), anchor.Month(), anchor.Day(), 0, 0, 0, 0, time.UTC)

	var starts []time.Time
	switch g {
	case Day:
		for i := dayWindow - 1; i >= 0; i-- {
			starts = append(starts, anchor.AddDate(0, 0, -i))
		}
	case Week:
		monday := isoMonday(anchor)
		for i := weekWindow - 1; i >= 0; i-- {
			starts = append(starts, monday.AddDate(0, 0, -7*i))
		}
	case Month:
		first := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, time.UTC)
		for i := monthWindow - 1; i >= 0; i-- {
			starts = append(starts, first.AddDate(0, -i, 0))
		}
	case Year:
		if firstYear <= 0 || firstYear > anchor.Year() {
			firstYear = anchor.Year()
		}
		for y := firstYear; y <= anchor.Year(); y++ {
			starts = append(starts, time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC))
		}
	}

	periods := make([]Period, 0, len(starts))
	for _, s := range starts {
		periods = append(periods, Period{Key: PeriodKey(g, s), Label: periodLabel(g, s), Start: s})
	}
	return periods
}

func isoMonday(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset)
}

// Labels returns the period labels in order.
func Labels(periods []Period) []string {
	labels := make([]string, len(periods))
	for i, p := range periods {
		labels[i] = p.Label
	}
	return labels
}

// fill looks every period up in counts, defaulting to zero.
func fill(periods []Period, counts map[string]int) []int {
	values := make([]int, len(periods))
	for i, p := range periods {
		values[i] = counts[p.Key]
	}
	return values
}
