package tracker

import (
	"fmt"
	"strings"

	"github.com/radumihail/orbit/internal/dateutil"
	"github.com/radumihail/orbit/internal/habit"
)

// TaskInput carries the mutable fields of a task definition for create
// and edit. Nil pointers mean "use the default" on create and "keep the
// computed default" semantics do not apply on edit: edits always send
// the full definition, mirroring the settings form.
type TaskInput struct {
	Title        string           `json:"title"`
	Group        string           `json:"group"`
	Meta         string           `json:"meta"`
	Recurrence   habit.Recurrence `json:"recurrence"`
	ValueType    habit.ValueType  `json:"valueType"`
	DefaultValue any              `json:"defaultValue"`
	SortOrder    *int             `json:"sortOrder"`
	Active       *bool            `json:"active"`
	Progress     *habit.Progress  `json:"progress"`
}

// CreateTask validates the input, persists a new definition and syncs
// today's entry so a task due today shows up immediately.
func (tr *Tracker) CreateTask(profileID string, input TaskInput) (*habit.Task, error) {
	profileID = habit.NormalizeProfileID(profileID)

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", habit.ErrInvalid)
	}
	recurrence, err := habit.ParseRecurrence(input.Recurrence)
	if err != nil {
		return nil, err
	}

	group := habit.GroupOrDefault(strings.TrimSpace(input.Group))
	valueType := habit.NormalizeValueType(input.ValueType)
	defaultValue := input.DefaultValue
	if defaultValue == nil && valueType != habit.ValueNumber {
		defaultValue = habit.DefaultValue(valueType)
	}

	sortOrder := 0
	if input.SortOrder != nil {
		sortOrder = *input.SortOrder
	} else {
		sortOrder, err = tr.store.NextSortOrder(profileID, group)
		if err != nil {
			return nil, err
		}
	}

	now := tr.now()
	task := &habit.Task{
		TaskID:       habit.NewTaskID(title),
		ProfileID:    profileID,
		Title:        title,
		Group:        group,
		Meta:         strings.TrimSpace(input.Meta),
		Recurrence:   recurrence,
		ValueType:    valueType,
		DefaultValue: defaultValue,
		SortOrder:    sortOrder,
		Active:       input.Active == nil || *input.Active,
		Progress:     input.Progress,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := tr.store.InsertTask(task); err != nil {
		return nil, err
	}
	tr.log.Info("created task", "profile", profileID, "task", task.TaskID)

	if err := tr.SyncTaskForDate(task, now); err != nil {
		return nil, err
	}
	return task, nil
}

// UpdateTask replaces a definition's mutable fields and syncs today's
// entry. The task id and creation time never change. Days the task was
// already materialized on are left alone; only today is repaired.
func (tr *Tracker) UpdateTask(profileID, taskID string, input TaskInput) (*habit.Task, error) {
	profileID = habit.NormalizeProfileID(profileID)

	task, err := tr.store.GetTask(profileID, taskID)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", habit.ErrInvalid)
	}
	recurrence, err := habit.ParseRecurrence(input.Recurrence)
	if err != nil {
		return nil, err
	}

	task.Title = title
	task.Group = habit.GroupOrDefault(strings.TrimSpace(input.Group))
	task.Meta = strings.TrimSpace(input.Meta)
	task.Recurrence = recurrence
	task.ValueType = habit.NormalizeValueType(input.ValueType)
	if input.DefaultValue != nil {
		task.DefaultValue = input.DefaultValue
	} else if task.ValueType == habit.ValueNumber {
		task.DefaultValue = nil
	} else if task.DefaultValue == nil {
		task.DefaultValue = habit.DefaultValue(task.ValueType)
	}
	if input.SortOrder != nil {
		task.SortOrder = *input.SortOrder
	}
	if input.Active != nil {
		task.Active = *input.Active
	}
	task.Progress = input.Progress
	task.UpdatedAt = tr.now()

	if err := tr.store.UpdateTask(task); err != nil {
		return nil, err
	}
	tr.log.Info("updated task", "profile", profileID, "task", taskID)

	if err := tr.SyncTaskForDate(task, tr.now()); err != nil {
		return nil, err
	}
	return task, nil
}

// DeleteTask removes a definition and pulls its items out of daily
// entries. Without deleteHistory only today and future entries are
// touched, so past records stay intact; with it the whole history is
// purged. Entries themselves are never deleted.
func (tr *Tracker) DeleteTask(profileID, taskID string, deleteHistory bool) error {
	profileID = habit.NormalizeProfileID(profileID)

	if err := tr.store.DeleteTask(profileID, taskID); err != nil {
		return err
	}

	fromKey := dateutil.ToKey(tr.now())
	if deleteHistory {
		fromKey = ""
	}
	if err := tr.store.RemoveItemSince(profileID, taskID, fromKey, tr.now()); err != nil {
		return err
	}
	tr.log.Info("deleted task", "profile", profileID, "task", taskID, "history", deleteHistory)
	return nil
}

func (tr *Tracker) GetTask(profileID, taskID string) (*habit.Task, error) {
	return tr.store.GetTask(profileID, taskID)
}

func (tr *Tracker) ListTasks(profileID string) ([]habit.Task, error) {
	return tr.store.ListTasks(profileID, false)
}

// ListTemplates returns the read-only starter catalog.
func (tr *Tracker) ListTemplates() ([]habit.Template, error) {
	return tr.store.ListTemplates()
}

// InstantiateTemplate creates a task for a profile from a catalog
// template, with a freshly generated id and the usual create-time sync.
func (tr *Tracker) InstantiateTemplate(profileID, templateID string) (*habit.Task, error) {
	tpl, err := tr.store.GetTemplate(templateID)
	if err != nil {
		return nil, err
	}
	sortOrder := tpl.SortOrder
	return tr.CreateTask(profileID, TaskInput{
		Title:        tpl.Title,
		Group:        tpl.Group,
		Meta:         tpl.Meta,
		Recurrence:   tpl.Recurrence,
		ValueType:    tpl.ValueType,
		DefaultValue: tpl.DefaultValue,
		SortOrder:    &sortOrder,
	})
}

// ListProfiles returns every profile in the deployment.
func (tr *Tracker) ListProfiles() ([]habit.Profile, error) {
	return tr.store.ListProfiles()
}

// CreateProfile registers a new isolated profile.
func (tr *Tracker) CreateProfile(name string) (*habit.Profile, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: profile name is required", habit.ErrInvalid)
	}
	now := tr.now()
	p := &habit.Profile{
		ProfileID: habit.NewProfileID(name),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tr.store.InsertProfile(p); err != nil {
		return nil, err
	}
	tr.log.Info("created profile", "profile", p.ProfileID)
	return p, nil
}

// EnsureSeedData loads the template catalog and, when the default
// profile has no tasks yet, a set of demo tasks anchored to today.
func (tr *Tracker) EnsureSeedData(seedTasks bool) error {
	if err := tr.store.EnsureTemplates(habit.SeedTemplates()); err != nil {
		return err
	}
	if !seedTasks {
		return nil
	}
	n, err := tr.store.CountTasks(habit.DefaultProfileID)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	for _, task := range habit.SeedTasks(habit.DefaultProfileID, tr.now()) {
		t := task
		if err := tr.store.InsertTask(&t); err != nil {
			return err
		}
	}
	tr.log.Info("seeded demo tasks", "profile", habit.DefaultProfileID)
	return nil
}
