// Package tracker keeps daily checklist entries in step with task
// definitions. Entries are sticky: they materialize once on first
// access and afterwards change only through incremental per-item
// patches, so values a user already recorded are never regenerated
// away.
package tracker

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/radumihail/orbit/internal/dateutil"
	"github.com/radumihail/orbit/internal/habit"
	"github.com/radumihail/orbit/internal/store"
)

type Tracker struct {
	store *store.Store
	log   *log.Logger
	now   func() time.Time
}

func New(s *store.Store, logger *log.Logger) *Tracker {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Tracker{store: s, log: logger, now: time.Now}
}

// GetOrCreateDailyEntry returns the persisted entry for a date, creating
// it from the profile's active tasks on first access. An entry that
// already exists is returned as-is, never re-materialized. Two racing
// creates for a never-seen date both come back with the single entry
// that won the insert.
func (tr *Tracker) GetOrCreateDailyEntry(profileID, dateKey string, date time.Time) (*habit.DailyEntry, error) {
	profileID = habit.NormalizeProfileID(profileID)

	entry, err := tr.store.GetDailyEntry(profileID, dateKey)
	if err != nil {
		return nil, err
	}
	if entry != nil {
		return entry, nil
	}

	tasks, err := tr.store.ListTasks(profileID, true)
	if err != nil {
		return nil, err
	}
	now := tr.now()
	weekday := dateutil.WeekdayMondayZero(date)
	entry = &habit.DailyEntry{
		ProfileID: profileID,
		DateKey:   dateKey,
		Date:      date,
		Items:     habit.BuildDailyItems(tasks, dateKey, weekday, now),
		CreatedAt: now,
		UpdatedAt: now,
	}

	inserted, err := tr.store.InsertDailyEntry(entry)
	if err != nil {
		return nil, err
	}
	if !inserted {
		// Lost a create race; the existing entry is the truth.
		existing, err := tr.store.GetDailyEntry(profileID, dateKey)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			return nil, fmt.Errorf("entry %s/%s vanished after conflicting insert", profileID, dateKey)
		}
		return existing, nil
	}

	tr.log.Debug("materialized daily entry", "profile", profileID, "date", dateKey, "items", len(entry.Items))
	return entry, nil
}

// SyncTaskForDate reconciles one task against one date's entry after the
// task was created or edited. It only ever touches the given date.
//
// The patch rules: an item whose task no longer occurs is removed; a
// newly occurring task gets a fresh item; an existing item has its
// display fields overwritten from the task while the recorded value is
// preserved, unless the value type changed, in which case the value
// resets to the type default and the completion timestamp clears.
func (tr *Tracker) SyncTaskForDate(task *habit.Task, date time.Time) error {
	profileID := habit.NormalizeProfileID(task.ProfileID)
	dateKey := dateutil.ToKey(date)
	weekday := dateutil.WeekdayMondayZero(date)
	occursToday := habit.OccursOn(task, dateKey, weekday)
	now := tr.now()

	entry, err := tr.store.GetDailyEntry(profileID, dateKey)
	if err != nil {
		return err
	}
	if entry == nil {
		if !occursToday {
			return nil
		}
		// Creating the entry reads current tasks, so it already
		// includes this one.
		_, err := tr.GetOrCreateDailyEntry(profileID, dateKey, date)
		return err
	}

	var existing *habit.DailyItem
	for i := range entry.Items {
		if entry.Items[i].TaskID == task.TaskID {
			existing = &entry.Items[i]
			break
		}
	}

	if !occursToday {
		if existing == nil {
			return nil
		}
		if _, err := tr.store.RemoveDailyItem(profileID, dateKey, task.TaskID, now); err != nil {
			return err
		}
		tr.log.Debug("removed stale item", "profile", profileID, "date", dateKey, "task", task.TaskID)
		return nil
	}

	if existing == nil {
		item := habit.NewItemFromTask(task, now)
		if err := tr.store.InsertDailyItem(profileID, dateKey, &item, now); err != nil {
			return err
		}
		tr.log.Debug("inserted item", "profile", profileID, "date", dateKey, "task", task.TaskID)
		return nil
	}

	patched := *existing
	patched.Title = task.Title
	patched.Group = habit.GroupOrDefault(task.Group)
	patched.Meta = task.Meta
	patched.SortOrder = task.SortOrder

	nextType := habit.NormalizeValueType(task.ValueType)
	if patched.ValueType != nextType {
		// A type change invalidates the recorded value; label-only
		// edits leave it untouched.
		patched.Value = habit.DefaultValue(nextType)
	}
	patched.ValueType = nextType
	patched.CompletedAt = nil
	if nextType == habit.ValueBool && patched.Value == true {
		done := now
		patched.CompletedAt = &done
	}

	if err := tr.store.UpdateDailyItem(profileID, dateKey, &patched, now); err != nil {
		return err
	}
	tr.log.Debug("patched item", "profile", profileID, "date", dateKey, "task", task.TaskID)
	return nil
}

// UpdateItemValue records a value for one item of an existing entry.
// Both the entry and the item must already exist; the caller creates
// the entry via GetOrCreateDailyEntry first.
func (tr *Tracker) UpdateItemValue(profileID, dateKey, taskID string, value any) (*habit.DailyItem, error) {
	profileID = habit.NormalizeProfileID(profileID)

	entry, err := tr.store.GetDailyEntry(profileID, dateKey)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, fmt.Errorf("entry %s: %w", dateKey, habit.ErrNotFound)
	}

	var item *habit.DailyItem
	for i := range entry.Items {
		if entry.Items[i].TaskID == taskID {
			item = &entry.Items[i]
			break
		}
	}
	if item == nil {
		return nil, fmt.Errorf("item %s/%s: %w", dateKey, taskID, habit.ErrNotFound)
	}

	now := tr.now()
	item.Value = value
	item.CompletedAt = nil
	if item.ValueType == habit.ValueBool && value == true {
		done := now
		item.CompletedAt = &done
	}

	if err := tr.store.UpdateDailyItem(profileID, dateKey, item, now); err != nil {
		return nil, err
	}
	return item, nil
}
