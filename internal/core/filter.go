package core

import (
	"sort"
	"strings"
	"time"
)

// DateFilter selects the time window of a query relative to "now".
type DateFilter string

const (
	FilterAll   DateFilter = "all"
	FilterToday DateFilter = "today"
	FilterWeek  DateFilter = "week"
	FilterMonth DateFilter = "month"
)

func (f DateFilter) Valid() bool {
	switch f {
	case FilterAll, FilterToday, FilterWeek, FilterMonth:
		return true
	}
	return false
}

// Filter derives the query result for one notebook: window by dateFilter
// relative to now, optional search, stable sort by date descending. The
// input slice is never mutated.
//
// Search matches the note case-insensitively, or the resolved category name
// as a case-sensitive substring. The asymmetry is inherited behavior, kept
// deliberately (see DESIGN.md).
func Filter(txs []Transaction, notebook string, dateFilter DateFilter, search string, categories []Category, now time.Time) []Transaction {
	today := DateOf(now)
	weekStart := NewDate(now.Year(), int(now.Month()), now.Day()-int(now.Weekday()))
	monthStart := NewDate(now.Year(), int(now.Month()), 1)

	catNames := make(map[string]string, len(categories))
	for _, c := range categories {
		catNames[c.ID] = c.Name
	}
	searchLower := strings.ToLower(search)

	out := make([]Transaction, 0, len(txs))
	for _, t := range txs {
		if t.Notebook != notebook {
			continue
		}
		switch dateFilter {
		case FilterToday:
			if !t.Date.SameDay(today) {
				continue
			}
		case FilterWeek:
			if t.Date.Before(weekStart.Time) {
				continue
			}
		case FilterMonth:
			if t.Date.Before(monthStart.Time) {
				continue
			}
		}
		if search != "" {
			noteMatch := strings.Contains(strings.ToLower(t.Note), searchLower)
			name, known := catNames[t.Category]
			nameMatch := known && strings.Contains(name, search)
			if !noteMatch && !nameMatch {
				continue
			}
		}
		out = append(out, t)
	}

	// Stable: same-date entries keep collection order.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date.Time)
	})
	return out
}
