package display

import (
	"aufgussplan/internal/models"
	"aufgussplan/internal/utils"
)

// window returns the start and end of a session in minutes since midnight.
// Sessions without an end run for defaultMinutes; legacy rows only carry zeit.
func window(a models.Aufguss, defaultMinutes int) (start, end int, ok bool) {
	begin := a.ZeitAnfang
	if begin == "" {
		begin = a.Zeit
	}
	start, err := utils.ParseClock(begin)
	if err != nil {
		return 0, 0, false
	}

	end = start + defaultMinutes
	if a.ZeitEnde != "" {
		if e, err := utils.ParseClock(a.ZeitEnde); err == nil && e >= start {
			end = e
		}
	}
	return start, end, true
}

// CurrentID returns the id of the session running at minute now, or nil.
// When sessions overlap the one that started last wins.
func CurrentID(rows []models.AufgussDetail, now, defaultMinutes int) *int64 {
	var current *int64
	bestStart := -1
	for i := range rows {
		start, end, ok := window(rows[i].Aufguss, defaultMinutes)
		if !ok || now < start || now > end {
			continue
		}
		if start >= bestStart {
			id := rows[i].ID
			current = &id
			bestStart = start
		}
	}
	return current
}

// NextID returns the id of the first session starting after minute now.
func NextID(rows []models.AufgussDetail, now int) *int64 {
	var next *int64
	bestStart := 24 * 60
	for i := range rows {
		start, _, ok := window(rows[i].Aufguss, 0)
		if !ok || start <= now {
			continue
		}
		if start < bestStart {
			id := rows[i].ID
			next = &id
			bestStart = start
		}
	}
	return next
}
