package tracker

import (
	"time"

	"github.com/radumihail/orbit/internal/dateutil"
	"github.com/radumihail/orbit/internal/habit"
)

// DayView is one materialized day inside a week view: the entry's items
// bucketed by group, plus completion counts.
type DayView struct {
	DateKey        string            `json:"dateKey"`
	Date           time.Time         `json:"date"`
	Groups         []habit.ItemGroup `json:"groups"`
	TotalTasks     int               `json:"totalTasks"`
	CompletedTasks int               `json:"completedTasks"`
}

// WeekView covers the Monday-anchored week around a reference date.
type WeekView struct {
	WeekStart      string    `json:"weekStart"`
	WeekEnd        string    `json:"weekEnd"`
	Days           []DayView `json:"days"`
	TotalTasks     int       `json:"totalTasks"`
	CompletedTasks int       `json:"completedTasks"`
}

// DaySummary carries counts for one day of a month view. Days without a
// persisted entry are projected in memory and never written.
type DaySummary struct {
	DateKey        string    `json:"dateKey"`
	Date           time.Time `json:"date"`
	TotalTasks     int       `json:"totalTasks"`
	CompletedTasks int       `json:"completedTasks"`
}

// MonthView covers every calendar day of the reference date's month.
type MonthView struct {
	MonthStart string       `json:"monthStart"`
	MonthEnd   string       `json:"monthEnd"`
	Days       []DaySummary `json:"days"`
}

// MonthSummary is one month's totals inside a year view.
type MonthSummary struct {
	MonthStart     string `json:"monthStart"`
	MonthEnd       string `json:"monthEnd"`
	TotalTasks     int    `json:"totalTasks"`
	CompletedTasks int    `json:"completedTasks"`
}

// YearView sums every month of the reference date's year.
type YearView struct {
	Year   int            `json:"year"`
	Months []MonthSummary `json:"months"`
}

// Week materializes the seven days of the week containing date, Monday
// first, creating entries as needed, and sums completion counts per day
// and across the week.
func (tr *Tracker) Week(profileID string, date time.Time) (*WeekView, error) {
	profileID = habit.NormalizeProfileID(profileID)
	weekStart := dateutil.AddDays(date, -dateutil.WeekdayMondayZero(date))

	view := &WeekView{
		WeekStart: dateutil.ToKey(weekStart),
		WeekEnd:   dateutil.ToKey(dateutil.AddDays(weekStart, 6)),
	}
	for i := 0; i < 7; i++ {
		dayDate := dateutil.AddDays(weekStart, i)
		dayKey := dateutil.ToKey(dayDate)
		entry, err := tr.GetOrCreateDailyEntry(profileID, dayKey, dayDate)
		if err != nil {
			return nil, err
		}
		completed := habit.CountComplete(entry.Items)
		view.Days = append(view.Days, DayView{
			DateKey:        dayKey,
			Date:           entry.Date,
			Groups:         habit.GroupItems(entry.Items),
			TotalTasks:     len(entry.Items),
			CompletedTasks: completed,
		})
		view.TotalTasks += len(entry.Items)
		view.CompletedTasks += completed
	}
	return view, nil
}

// Month summarizes every day of date's month. Persisted entries are
// counted from their items; days not yet materialized get a read-only
// in-memory projection so a page view does not write a month of
// entries.
func (tr *Tracker) Month(profileID string, date time.Time) (*MonthView, error) {
	profileID = habit.NormalizeProfileID(profileID)
	monthStart := dateutil.MonthStart(date)
	monthEnd := dateutil.MonthEnd(date)

	tasks, err := tr.store.ListTasks(profileID, true)
	if err != nil {
		return nil, err
	}
	entries, err := tr.entriesByKey(profileID, dateutil.ToKey(monthStart), dateutil.ToKey(monthEnd))
	if err != nil {
		return nil, err
	}

	view := &MonthView{
		MonthStart: dateutil.ToKey(monthStart),
		MonthEnd:   dateutil.ToKey(monthEnd),
	}
	for day := 0; day < dateutil.DaysInMonth(date); day++ {
		dayDate := dateutil.AddDays(monthStart, day)
		total, completed, entryDate := tr.dayCounts(dayDate, tasks, entries)
		view.Days = append(view.Days, DaySummary{
			DateKey:        dateutil.ToKey(dayDate),
			Date:           entryDate,
			TotalTasks:     total,
			CompletedTasks: completed,
		})
	}
	return view, nil
}

// Year sums the same projection month by month across date's year.
func (tr *Tracker) Year(profileID string, date time.Time) (*YearView, error) {
	profileID = habit.NormalizeProfileID(profileID)
	year := date.Year()
	yearStart := time.Date(year, time.January, 1, 0, 0, 0, 0, date.Location())
	yearEnd := time.Date(year, time.December, 31, 0, 0, 0, 0, date.Location())

	tasks, err := tr.store.ListTasks(profileID, true)
	if err != nil {
		return nil, err
	}
	entries, err := tr.entriesByKey(profileID, dateutil.ToKey(yearStart), dateutil.ToKey(yearEnd))
	if err != nil {
		return nil, err
	}

	view := &YearView{Year: year}
	for month := time.January; month <= time.December; month++ {
		monthStart := time.Date(year, month, 1, 0, 0, 0, 0, date.Location())
		summary := MonthSummary{
			MonthStart: dateutil.ToKey(monthStart),
			MonthEnd:   dateutil.ToKey(dateutil.MonthEnd(monthStart)),
		}
		for day := 0; day < dateutil.DaysInMonth(monthStart); day++ {
			total, completed, _ := tr.dayCounts(dateutil.AddDays(monthStart, day), tasks, entries)
			summary.TotalTasks += total
			summary.CompletedTasks += completed
		}
		view.Months = append(view.Months, summary)
	}
	return view, nil
}

// History returns the persisted entries in [fromKey, toKey], oldest
// first. Empty bounds default to all recorded history.
func (tr *Tracker) History(profileID, fromKey, toKey string) ([]habit.DailyEntry, error) {
	if fromKey == "" {
		fromKey = "0001-01-01"
	}
	if toKey == "" {
		toKey = "9999-12-31"
	}
	return tr.store.ListDailyEntries(habit.NormalizeProfileID(profileID), fromKey, toKey)
}

func (tr *Tracker) entriesByKey(profileID, fromKey, toKey string) (map[string]*habit.DailyEntry, error) {
	list, err := tr.store.ListDailyEntries(profileID, fromKey, toKey)
	if err != nil {
		return nil, err
	}
	entries := make(map[string]*habit.DailyEntry, len(list))
	for i := range list {
		entries[list[i].DateKey] = &list[i]
	}
	return entries, nil
}

// dayCounts returns the totals for one day, preferring the persisted
// entry and falling back to an unpersisted projection from current
// active tasks.
func (tr *Tracker) dayCounts(dayDate time.Time, tasks []habit.Task, entries map[string]*habit.DailyEntry) (total, completed int, date time.Time) {
	dayKey := dateutil.ToKey(dayDate)
	if entry, ok := entries[dayKey]; ok {
		return len(entry.Items), habit.CountComplete(entry.Items), entry.Date
	}
	items := habit.BuildDailyItems(tasks, dayKey, dateutil.WeekdayMondayZero(dayDate), tr.now())
	return len(items), habit.CountComplete(items), dayDate
}
