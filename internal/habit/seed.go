package habit

import (
	"time"

	"github.com/radumihail/orbit/internal/dateutil"
)

var everyDay = []int{0, 1, 2, 3, 4, 5, 6}

// SeedTemplates returns the read-only starter catalog offered when a
// profile sets up its first tasks.
func SeedTemplates() []Template {
	return []Template{
		{
			TemplateID: "make-bed",
			Title:      "Make bed + open curtains",
			Group:      "Morning reset",
			Meta:       "5 min - low effort",
			Recurrence: Recurrence{Type: RecurWeekly, DaysOfWeek: everyDay},
			ValueType:  ValueBool,
			SortOrder:  1,
		},
		{
			TemplateID: "water-meds",
			Title:      "Water + meds",
			Group:      "Morning reset",
			Meta:       "2 min - no friction",
			Recurrence: Recurrence{Type: RecurWeekly, DaysOfWeek: everyDay},
			ValueType:  ValueBool,
			SortOrder:  2,
		},
		{
			TemplateID: "stretch",
			Title:      "10-minute stretch",
			Group:      "Morning reset",
			Meta:       "10 min - gentle",
			Recurrence: Recurrence{Type: RecurWeekly, DaysOfWeek: []int{0, 2, 4}},
			ValueType:  ValueBool,
			SortOrder:  3,
		},
		{
			TemplateID: "daily-log",
			Title:      "Daily log",
			Group:      "Midday momentum",
			Meta:       "How did today feel?",
			Recurrence: Recurrence{Type: RecurWeekly, DaysOfWeek: everyDay},
			ValueType:  ValueString,
			SortOrder:  1,
		},
		{
			TemplateID: "deep-work",
			Title:      "Deep work block",
			Group:      "Midday momentum",
			Meta:       "45 min - focus",
			Recurrence: Recurrence{Type: RecurWeekly, DaysOfWeek: []int{0, 1, 2, 3, 4}},
			ValueType:  ValueBool,
			SortOrder:  2,
		},
		{
			TemplateID: "admin-cleanup",
			Title:      "Email + admin cleanup",
			Group:      "Midday momentum",
			Meta:       "15 min - quick wins",
			Recurrence: Recurrence{Type: RecurWeekly, DaysOfWeek: []int{1, 3, 5}},
			ValueType:  ValueBool,
			SortOrder:  3,
		},
		{
			TemplateID: "log-weight",
			Title:      "Log weight",
			Group:      "Midday momentum",
			Meta:       "Morning weight (lbs)",
			Recurrence: Recurrence{Type: RecurWeekly, DaysOfWeek: []int{0, 2, 4}},
			ValueType:  ValueNumber,
			SortOrder:  4,
		},
		{
			TemplateID: "top-three",
			Title:      "Pick tomorrow's top 3",
			Group:      "Evening close",
			Meta:       "7 min - clarity",
			Recurrence: Recurrence{Type: RecurWeekly, DaysOfWeek: everyDay},
			ValueType:  ValueBool,
			SortOrder:  2,
		},
		{
			TemplateID: "tidy-desk",
			Title:      "Tidy desk + reset space",
			Group:      "Evening close",
			Meta:       "8 min - closure",
			Recurrence: Recurrence{Type: RecurWeekly, DaysOfWeek: everyDay},
			ValueType:  ValueBool,
			SortOrder:  3,
		},
	}
}

// SeedTasks returns demo tasks for a fresh profile. Interval recurrences
// are anchored to the given base date, so the one-off and week-long
// examples land in the caller's present.
func SeedTasks(profileID string, base time.Time) []Task {
	todayKey := dateutil.ToKey(base)
	nextWeekKey := dateutil.ToKey(dateutil.AddDays(base, 7))

	var tasks []Task
	for _, tpl := range SeedTemplates() {
		tasks = append(tasks, TaskFromTemplate(&tpl, profileID, base))
	}
	tasks = append(tasks,
		Task{
			TaskID:       "walk",
			ProfileID:    profileID,
			Title:        "Walk outside",
			Group:        "Evening close",
			Meta:         "20 min - reset",
			Recurrence:   Recurrence{Type: RecurInterval, StartDate: todayKey, EndDate: nextWeekKey},
			ValueType:    ValueBool,
			DefaultValue: false,
			SortOrder:    1,
			Active:       true,
			CreatedAt:    base,
			UpdatedAt:    base,
		},
		Task{
			TaskID:       "one-off-call",
			ProfileID:    profileID,
			Title:        "Call pharmacy",
			Group:        "Evening close",
			Meta:         "Single day task",
			Recurrence:   Recurrence{Type: RecurInterval, StartDate: todayKey, EndDate: todayKey},
			ValueType:    ValueBool,
			DefaultValue: false,
			SortOrder:    4,
			Active:       true,
			CreatedAt:    base,
			UpdatedAt:    base,
		},
	)
	return tasks
}

// TaskFromTemplate instantiates a template as a task for a profile. The
// template id doubles as the task id for seeded tasks; tracker-created
// instances replace it with a generated id.
func TaskFromTemplate(tpl *Template, profileID string, now time.Time) Task {
	vt := NormalizeValueType(tpl.ValueType)
	value := tpl.DefaultValue
	if value == nil && vt != ValueNumber {
		value = DefaultValue(vt)
	}
	return Task{
		TaskID:       tpl.TemplateID,
		ProfileID:    profileID,
		Title:        tpl.Title,
		Group:        tpl.Group,
		Meta:         tpl.Meta,
		Recurrence:   tpl.Recurrence,
		ValueType:    vt,
		DefaultValue: value,
		SortOrder:    tpl.SortOrder,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
