package store

import (
	"errors"
	"testing"
	"time"

	"github.com/radumihail/orbit/internal/habit"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleTask(profileID, taskID string) *habit.Task {
	now := time.Now()
	return &habit.Task{
		TaskID:       taskID,
		ProfileID:    profileID,
		Title:        "Stretch",
		Group:        "Morning",
		Meta:         "10 min",
		Recurrence:   habit.Recurrence{Type: habit.RecurWeekly, DaysOfWeek: []int{0, 2, 4}},
		ValueType:    habit.ValueBool,
		DefaultValue: false,
		SortOrder:    3,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func sampleEntry(profileID, dateKey string, items ...habit.DailyItem) *habit.DailyEntry {
	now := time.Now()
	date, _ := time.Parse("2006-01-02", dateKey)
	return &habit.DailyEntry{
		ProfileID: profileID,
		DateKey:   dateKey,
		Date:      date,
		Items:     items,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func boolItem(taskID string, value bool) habit.DailyItem {
	return habit.DailyItem{
		TaskID:    taskID,
		Title:     taskID,
		Group:     "General",
		ValueType: habit.ValueBool,
		Value:     value,
		SortOrder: 1,
	}
}

// ============================================================
// Store initialization
// ============================================================

func TestNewMemory(t *testing.T) {
	s, err := NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	var version int
	s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if version != 1 {
		t.Fatalf("expected user_version 1, got %d", version)
	}
}

func TestNewWithPath(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/sub/orbit.db"
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	s.Close()

	// Reopen against the same file; migration must be a no-op.
	s2, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	s2.Close()
}

func TestMigrationIdempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.migrate(); err != nil {
		t.Fatalf("second migration failed: %v", err)
	}
}

func TestDefaultProfileSeeded(t *testing.T) {
	s := newTestStore(t)
	p, err := s.GetProfile("default")
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "Default" {
		t.Fatalf("unexpected default profile: %+v", p)
	}
}

// ============================================================
// Tasks
// ============================================================

func TestInsertAndGetTask(t *testing.T) {
	s := newTestStore(t)
	task := sampleTask("default", "stretch-1")
	if err := s.InsertTask(task); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetTask("default", "stretch-1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "Stretch" || got.Group != "Morning" || got.Meta != "10 min" {
		t.Fatalf("unexpected task: %+v", got)
	}
	if got.Recurrence.Type != habit.RecurWeekly {
		t.Fatalf("recurrence type lost: %+v", got.Recurrence)
	}
	if len(got.Recurrence.DaysOfWeek) != 3 || got.Recurrence.DaysOfWeek[1] != 2 {
		t.Fatalf("days of week lost: %v", got.Recurrence.DaysOfWeek)
	}
	if got.DefaultValue != false {
		t.Fatalf("default value lost: %v", got.DefaultValue)
	}
	if !got.Active {
		t.Fatal("active flag lost")
	}
}

func TestGetTaskNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetTask("default", "missing")
	if !errors.Is(err, habit.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetTaskWrongProfile(t *testing.T) {
	s := newTestStore(t)
	if err := s.InsertTask(sampleTask("alice", "t1")); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetTask("bob", "t1"); !errors.Is(err, habit.ErrNotFound) {
		t.Fatalf("profiles should be isolated, got %v", err)
	}
}

func TestEmptyProfileMatchesDefault(t *testing.T) {
	s := newTestStore(t)
	task := sampleTask("", "t1")
	if err := s.InsertTask(task); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetTask("default", "t1")
	if err != nil {
		t.Fatal(err)
	}
	if got.ProfileID != "default" {
		t.Fatalf("empty profile should be written as default, got %q", got.ProfileID)
	}
}

func TestListTasksActiveOnly(t *testing.T) {
	s := newTestStore(t)
	active := sampleTask("default", "a")
	inactive := sampleTask("default", "b")
	inactive.Active = false
	s.InsertTask(active)
	s.InsertTask(inactive)

	tasks, err := s.ListTasks("default", true)
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 1 || tasks[0].TaskID != "a" {
		t.Fatalf("expected only active task, got %+v", tasks)
	}

	tasks, _ = s.ListTasks("default", false)
	if len(tasks) != 2 {
		t.Fatalf("expected both tasks, got %d", len(tasks))
	}
}

func TestListTasksSorted(t *testing.T) {
	s := newTestStore(t)
	second := sampleTask("default", "second")
	second.SortOrder = 2
	first := sampleTask("default", "first")
	first.SortOrder = 1
	s.InsertTask(second)
	s.InsertTask(first)

	tasks, err := s.ListTasks("default", false)
	if err != nil {
		t.Fatal(err)
	}
	if tasks[0].TaskID != "first" || tasks[1].TaskID != "second" {
		t.Fatalf("expected sort by sort_order: %s, %s", tasks[0].TaskID, tasks[1].TaskID)
	}
}

func TestUpdateTask(t *testing.T) {
	s := newTestStore(t)
	task := sampleTask("default", "t1")
	s.InsertTask(task)

	task.Title = "Long stretch"
	task.ValueType = habit.ValueNumber
	task.DefaultValue = nil
	task.Recurrence = habit.Recurrence{Type: habit.RecurInterval, StartDate: "2024-03-01"}
	if err := s.UpdateTask(task); err != nil {
		t.Fatal(err)
	}

	got, _ := s.GetTask("default", "t1")
	if got.Title != "Long stretch" || got.ValueType != habit.ValueNumber {
		t.Fatalf("update failed: %+v", got)
	}
	if got.DefaultValue != nil {
		t.Fatalf("default value should be nil, got %v", got.DefaultValue)
	}
	if got.Recurrence.Type != habit.RecurInterval || got.Recurrence.StartDate != "2024-03-01" {
		t.Fatalf("recurrence not replaced: %+v", got.Recurrence)
	}
}

func TestUpdateTaskNotFound(t *testing.T) {
	s := newTestStore(t)
	task := sampleTask("default", "ghost")
	if err := s.UpdateTask(task); !errors.Is(err, habit.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteTask(t *testing.T) {
	s := newTestStore(t)
	s.InsertTask(sampleTask("default", "t1"))
	if err := s.DeleteTask("default", "t1"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetTask("default", "t1"); !errors.Is(err, habit.ErrNotFound) {
		t.Fatal("task should be gone")
	}
	if err := s.DeleteTask("default", "t1"); !errors.Is(err, habit.ErrNotFound) {
		t.Fatalf("double delete should report not found, got %v", err)
	}
}

func TestNextSortOrder(t *testing.T) {
	s := newTestStore(t)
	if n, _ := s.NextSortOrder("default", "Morning"); n != 1 {
		t.Fatalf("empty group should start at 1, got %d", n)
	}
	task := sampleTask("default", "t1")
	task.SortOrder = 5
	s.InsertTask(task)
	if n, _ := s.NextSortOrder("default", "Morning"); n != 6 {
		t.Fatalf("expected 6, got %d", n)
	}
	if n, _ := s.NextSortOrder("default", "Evening"); n != 1 {
		t.Fatalf("other group should start at 1, got %d", n)
	}
}

func TestTaskProgressRoundTrip(t *testing.T) {
	s := newTestStore(t)
	task := sampleTask("default", "t1")
	task.Progress = &habit.Progress{Enabled: true, Target: 5, Period: "weekly"}
	s.InsertTask(task)

	got, _ := s.GetTask("default", "t1")
	if got.Progress == nil || !got.Progress.Enabled || got.Progress.Target != 5 || got.Progress.Period != "weekly" {
		t.Fatalf("progress lost: %+v", got.Progress)
	}
}

// ============================================================
// Daily entries and items
// ============================================================

func TestInsertAndGetDailyEntry(t *testing.T) {
	s := newTestStore(t)
	entry := sampleEntry("default", "2024-03-01", boolItem("t1", false), boolItem("t2", true))
	inserted, err := s.InsertDailyEntry(entry)
	if err != nil {
		t.Fatal(err)
	}
	if !inserted {
		t.Fatal("first insert should win")
	}

	got, err := s.GetDailyEntry("default", "2024-03-01")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil {
		t.Fatal("entry should exist")
	}
	if len(got.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(got.Items))
	}
	if got.Items[0].Value != false || got.Items[1].Value != true {
		t.Fatalf("values lost: %+v", got.Items)
	}
}

func TestGetDailyEntryAbsent(t *testing.T) {
	s := newTestStore(t)
	got, err := s.GetDailyEntry("default", "2024-03-01")
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Fatal("absent entry should be nil, not an error")
	}
}

func TestInsertDailyEntryConflict(t *testing.T) {
	s := newTestStore(t)
	first := sampleEntry("default", "2024-03-01", boolItem("t1", false))
	second := sampleEntry("default", "2024-03-01", boolItem("t2", false))

	if inserted, _ := s.InsertDailyEntry(first); !inserted {
		t.Fatal("first insert should win")
	}
	inserted, err := s.InsertDailyEntry(second)
	if err != nil {
		t.Fatal(err)
	}
	if inserted {
		t.Fatal("conflicting insert should report false")
	}

	// The losing insert must not have written its items.
	got, _ := s.GetDailyEntry("default", "2024-03-01")
	if len(got.Items) != 1 || got.Items[0].TaskID != "t1" {
		t.Fatalf("conflict leaked items: %+v", got.Items)
	}
}

func TestDailyEntryProfileIsolation(t *testing.T) {
	s := newTestStore(t)
	s.InsertDailyEntry(sampleEntry("alice", "2024-03-01", boolItem("t1", false)))

	got, err := s.GetDailyEntry("bob", "2024-03-01")
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Fatal("profiles should not share entries")
	}
}

func TestListDailyEntriesRange(t *testing.T) {
	s := newTestStore(t)
	s.InsertDailyEntry(sampleEntry("default", "2024-03-01", boolItem("t1", true)))
	s.InsertDailyEntry(sampleEntry("default", "2024-03-05", boolItem("t1", false)))
	s.InsertDailyEntry(sampleEntry("default", "2024-04-01", boolItem("t1", false)))

	entries, err := s.ListDailyEntries("default", "2024-03-01", "2024-03-31")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries in March, got %d", len(entries))
	}
	if entries[0].DateKey != "2024-03-01" || entries[1].DateKey != "2024-03-05" {
		t.Fatalf("expected chronological order: %s, %s", entries[0].DateKey, entries[1].DateKey)
	}
	if len(entries[0].Items) != 1 {
		t.Fatalf("items not attached: %+v", entries[0])
	}
}

func TestInsertDailyItem(t *testing.T) {
	s := newTestStore(t)
	s.InsertDailyEntry(sampleEntry("default", "2024-03-01"))

	item := boolItem("t1", false)
	if err := s.InsertDailyItem("default", "2024-03-01", &item, time.Now()); err != nil {
		t.Fatal(err)
	}
	got, _ := s.GetDailyEntry("default", "2024-03-01")
	if len(got.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(got.Items))
	}
}

func TestUpdateDailyItem(t *testing.T) {
	s := newTestStore(t)
	s.InsertDailyEntry(sampleEntry("default", "2024-03-01", boolItem("t1", false)))

	now := time.Now()
	item := boolItem("t1", true)
	item.Title = "Renamed"
	item.CompletedAt = &now
	if err := s.UpdateDailyItem("default", "2024-03-01", &item, now); err != nil {
		t.Fatal(err)
	}

	got, _ := s.GetDailyEntry("default", "2024-03-01")
	if got.Items[0].Title != "Renamed" || got.Items[0].Value != true {
		t.Fatalf("update failed: %+v", got.Items[0])
	}
	if got.Items[0].CompletedAt == nil {
		t.Fatal("completedAt lost")
	}
}

func TestUpdateDailyItemNotFound(t *testing.T) {
	s := newTestStore(t)
	s.InsertDailyEntry(sampleEntry("default", "2024-03-01"))
	item := boolItem("ghost", false)
	err := s.UpdateDailyItem("default", "2024-03-01", &item, time.Now())
	if !errors.Is(err, habit.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRemoveDailyItem(t *testing.T) {
	s := newTestStore(t)
	s.InsertDailyEntry(sampleEntry("default", "2024-03-01", boolItem("t1", false)))

	removed, err := s.RemoveDailyItem("default", "2024-03-01", "t1", time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if !removed {
		t.Fatal("expected removal")
	}
	got, _ := s.GetDailyEntry("default", "2024-03-01")
	if len(got.Items) != 0 {
		t.Fatalf("item still present: %+v", got.Items)
	}

	removed, err = s.RemoveDailyItem("default", "2024-03-01", "t1", time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if removed {
		t.Fatal("second removal should be a no-op")
	}
}

func TestRemoveItemSinceScoped(t *testing.T) {
	s := newTestStore(t)
	s.InsertDailyEntry(sampleEntry("default", "2024-01-01", boolItem("t1", true), boolItem("t2", false)))
	s.InsertDailyEntry(sampleEntry("default", "2024-06-01", boolItem("t1", false)))

	if err := s.RemoveItemSince("default", "t1", "2024-03-01", time.Now()); err != nil {
		t.Fatal(err)
	}

	past, _ := s.GetDailyEntry("default", "2024-01-01")
	if len(past.Items) != 2 {
		t.Fatalf("past entry should keep its items: %+v", past.Items)
	}
	future, _ := s.GetDailyEntry("default", "2024-06-01")
	if len(future.Items) != 0 {
		t.Fatalf("future item should be pulled: %+v", future.Items)
	}
}

func TestRemoveItemSinceAllHistory(t *testing.T) {
	s := newTestStore(t)
	s.InsertDailyEntry(sampleEntry("default", "2024-01-01", boolItem("t1", true)))
	s.InsertDailyEntry(sampleEntry("default", "2024-06-01", boolItem("t1", false)))

	if err := s.RemoveItemSince("default", "t1", "", time.Now()); err != nil {
		t.Fatal(err)
	}

	for _, key := range []string{"2024-01-01", "2024-06-01"} {
		entry, _ := s.GetDailyEntry("default", key)
		if entry == nil {
			t.Fatalf("entry %s should survive the purge", key)
		}
		if len(entry.Items) != 0 {
			t.Fatalf("entry %s should lose the item: %+v", key, entry.Items)
		}
	}
}

func TestItemValueRoundTrip(t *testing.T) {
	s := newTestStore(t)
	items := []habit.DailyItem{
		{TaskID: "b", ValueType: habit.ValueBool, Value: true, SortOrder: 1},
		{TaskID: "n", ValueType: habit.ValueNumber, Value: float64(182.5), SortOrder: 2},
		{TaskID: "nn", ValueType: habit.ValueNumber, Value: nil, SortOrder: 3},
		{TaskID: "s", ValueType: habit.ValueString, Value: "went well", SortOrder: 4},
	}
	s.InsertDailyEntry(sampleEntry("default", "2024-03-01", items...))

	got, _ := s.GetDailyEntry("default", "2024-03-01")
	if got.Items[0].Value != true {
		t.Fatalf("bool value lost: %v", got.Items[0].Value)
	}
	if got.Items[1].Value != float64(182.5) {
		t.Fatalf("number value lost: %v", got.Items[1].Value)
	}
	if got.Items[2].Value != nil {
		t.Fatalf("nil value lost: %v", got.Items[2].Value)
	}
	if got.Items[3].Value != "went well" {
		t.Fatalf("string value lost: %v", got.Items[3].Value)
	}
}

// ============================================================
// Templates
// ============================================================

func TestEnsureTemplatesIdempotent(t *testing.T) {
	s := newTestStore(t)
	catalog := habit.SeedTemplates()
	if err := s.EnsureTemplates(catalog); err != nil {
		t.Fatal(err)
	}
	if err := s.EnsureTemplates(catalog); err != nil {
		t.Fatal(err)
	}

	templates, err := s.ListTemplates()
	if err != nil {
		t.Fatal(err)
	}
	if len(templates) != len(catalog) {
		t.Fatalf("expected %d templates, got %d", len(catalog), len(templates))
	}
}

func TestGetTemplate(t *testing.T) {
	s := newTestStore(t)
	s.EnsureTemplates(habit.SeedTemplates())

	tpl, err := s.GetTemplate("stretch")
	if err != nil {
		t.Fatal(err)
	}
	if tpl.Title != "10-minute stretch" || tpl.Recurrence.Type != habit.RecurWeekly {
		t.Fatalf("unexpected template: %+v", tpl)
	}

	if _, err := s.GetTemplate("missing"); !errors.Is(err, habit.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// ============================================================
// Profiles
// ============================================================

func TestInsertAndListProfiles(t *testing.T) {
	s := newTestStore(t)
	now := time.Now()
	p := &habit.Profile{ProfileID: "alice-1234", Name: "Alice", CreatedAt: now, UpdatedAt: now}
	if err := s.InsertProfile(p); err != nil {
		t.Fatal(err)
	}

	profiles, err := s.ListProfiles()
	if err != nil {
		t.Fatal(err)
	}
	// The default profile is seeded by the migration.
	if len(profiles) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(profiles))
	}
}

func TestInsertProfileDuplicate(t *testing.T) {
	s := newTestStore(t)
	now := time.Now()
	p := &habit.Profile{ProfileID: "alice", Name: "Alice", CreatedAt: now, UpdatedAt: now}
	if err := s.InsertProfile(p); err != nil {
		t.Fatal(err)
	}
	if err := s.InsertProfile(p); err == nil {
		t.Fatal("expected error for duplicate profile id")
	}
}
