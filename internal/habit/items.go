package habit

import (
	"sort"
	"strings"
	"time"
)

// DailyItem is one task's record within one daily entry. Display fields
// are a snapshot of the task at materialization or sync time, not a live
// reference.
type DailyItem struct {
	TaskID      string     `json:"taskId"`
	Title       string     `json:"title"`
	Group       string     `json:"group"`
	Meta        string     `json:"meta"`
	ValueType   ValueType  `json:"valueType"`
	Value       any        `json:"value"`
	CompletedAt *time.Time `json:"completedAt"`
	SortOrder   int        `json:"sortOrder"`
}

// DailyEntry is the materialized checklist for one profile and one
// calendar date. Items are ordered by sort order, then insertion.
type DailyEntry struct {
	ProfileID string      `json:"profileId"`
	DateKey   string      `json:"dateKey"`
	Date      time.Time   `json:"date"`
	Items     []DailyItem `json:"items"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// ItemGroup is a display bucket of items sharing a group title.
type ItemGroup struct {
	Title string      `json:"title"`
	Items []DailyItem `json:"tasks"`
}

// DefaultGroup is the display bucket for items whose task has none.
const DefaultGroup = "General"

// BuildDailyItems materializes the checklist items for one date from a
// set of task definitions: active tasks that occur on the date, sorted
// by sort order (stable, so callers control tie order), each snapshotted
// with its default value. This is the sole constructor of daily items.
func BuildDailyItems(tasks []Task, dateKey string, weekday int, now time.Time) []DailyItem {
	var due []Task
	for _, t := range tasks {
		if !t.Active {
			continue
		}
		if OccursOn(&t, dateKey, weekday) {
			due = append(due, t)
		}
	}
	sort.SliceStable(due, func(i, j int) bool { return due[i].SortOrder < due[j].SortOrder })

	items := make([]DailyItem, 0, len(due))
	for _, t := range due {
		items = append(items, NewItemFromTask(&t, now))
	}
	return items
}

// NewItemFromTask snapshots a single task into a daily item.
func NewItemFromTask(t *Task, now time.Time) DailyItem {
	vt := NormalizeValueType(t.ValueType)
	value := t.DefaultValue
	if value == nil && vt != ValueNumber {
		value = DefaultValue(vt)
	}
	item := DailyItem{
		TaskID:    t.TaskID,
		Title:     t.Title,
		Group:     GroupOrDefault(t.Group),
		Meta:      t.Meta,
		ValueType: vt,
		Value:     value,
		SortOrder: t.SortOrder,
	}
	if vt == ValueBool && value == true {
		done := now
		item.CompletedAt = &done
	}
	return item
}

// IsItemComplete reports whether a recorded value counts as done:
// bool means true, number means any recorded value (zero included),
// string means non-blank after trimming. Unknown types never count.
func IsItemComplete(item *DailyItem) bool {
	switch item.ValueType {
	case ValueBool:
		v, ok := item.Value.(bool)
		return ok && v
	case ValueNumber:
		return item.Value != nil && item.Value != ""
	case ValueString:
		s, ok := item.Value.(string)
		return ok && strings.TrimSpace(s) != ""
	}
	return false
}

// CountComplete returns how many items pass IsItemComplete.
func CountComplete(items []DailyItem) int {
	n := 0
	for i := range items {
		if IsItemComplete(&items[i]) {
			n++
		}
	}
	return n
}

// GroupItems buckets items by group title, preserving item order and
// first-seen group order.
func GroupItems(items []DailyItem) []ItemGroup {
	var groups []ItemGroup
	index := make(map[string]int)
	for _, item := range items {
		title := GroupOrDefault(item.Group)
		i, ok := index[title]
		if !ok {
			i = len(groups)
			index[title] = i
			groups = append(groups, ItemGroup{Title: title})
		}
		groups[i].Items = append(groups[i].Items, item)
	}
	return groups
}

// GroupOrDefault substitutes DefaultGroup for an empty group title.
func GroupOrDefault(group string) string {
	if group == "" {
		return DefaultGroup
	}
	return group
}
