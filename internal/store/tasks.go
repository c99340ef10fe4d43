package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/radumihail/orbit/internal/habit"
)

const taskColumns = `profile_id, task_id, title, task_group, meta,
	recurrence_type, days_of_week, start_date, end_date,
	value_type, default_value, sort_order, active,
	progress_enabled, progress_target, progress_period,
	created_at, updated_at`

func (s *Store) InsertTask(t *habit.Task) error {
	days, err := encodeDays(t.Recurrence.DaysOfWeek)
	if err != nil {
		return err
	}
	defaultValue, err := encodeValue(t.DefaultValue)
	if err != nil {
		return err
	}
	var progressEnabled int
	var progressTarget float64
	var progressPeriod string
	if t.Progress != nil {
		if t.Progress.Enabled {
			progressEnabled = 1
		}
		progressTarget = t.Progress.Target
		progressPeriod = t.Progress.Period
	}
	active := 0
	if t.Active {
		active = 1
	}

	_, err = s.db.Exec(
		`INSERT INTO tasks (`+taskColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		habit.NormalizeProfileID(t.ProfileID), t.TaskID, t.Title, t.Group, t.Meta,
		string(t.Recurrence.Type), days, t.Recurrence.StartDate, t.Recurrence.EndDate,
		string(t.ValueType), defaultValue, t.SortOrder, active,
		progressEnabled, progressTarget, progressPeriod,
		formatTime(t.CreatedAt), formatTime(t.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert task %s: %w", t.TaskID, err)
	}
	return nil
}

func (s *Store) GetTask(profileID, taskID string) (*habit.Task, error) {
	row := s.db.QueryRow(
		`SELECT `+taskColumns+` FROM tasks WHERE profile_id = ? AND task_id = ?`,
		habit.NormalizeProfileID(profileID), taskID,
	)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("task %s: %w", taskID, habit.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get task %s: %w", taskID, err)
	}
	return t, nil
}

// ListTasks returns a profile's tasks sorted by group, sort order and
// title. With activeOnly set, inactive definitions are skipped.
func (s *Store) ListTasks(profileID string, activeOnly bool) ([]habit.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE profile_id = ?`
	if activeOnly {
		query += ` AND active = 1`
	}
	query += ` ORDER BY task_group, sort_order, title`

	rows, err := s.db.Query(query, habit.NormalizeProfileID(profileID))
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []habit.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func (s *Store) UpdateTask(t *habit.Task) error {
	days, err := encodeDays(t.Recurrence.DaysOfWeek)
	if err != nil {
		return err
	}
	defaultValue, err := encodeValue(t.DefaultValue)
	if err != nil {
		return err
	}
	var progressEnabled int
	var progressTarget float64
	var progressPeriod string
	if t.Progress != nil {
		if t.Progress.Enabled {
			progressEnabled = 1
		}
		progressTarget = t.Progress.Target
		progressPeriod = t.Progress.Period
	}
	active := 0
	if t.Active {
		active = 1
	}

	res, err := s.db.Exec(
		`UPDATE tasks SET title = ?, task_group = ?, meta = ?,
			recurrence_type = ?, days_of_week = ?, start_date = ?, end_date = ?,
			value_type = ?, default_value = ?, sort_order = ?, active = ?,
			progress_enabled = ?, progress_target = ?, progress_period = ?,
			updated_at = ?
		 WHERE profile_id = ? AND task_id = ?`,
		t.Title, t.Group, t.Meta,
		string(t.Recurrence.Type), days, t.Recurrence.StartDate, t.Recurrence.EndDate,
		string(t.ValueType), defaultValue, t.SortOrder, active,
		progressEnabled, progressTarget, progressPeriod,
		formatTime(t.UpdatedAt),
		habit.NormalizeProfileID(t.ProfileID), t.TaskID,
	)
	if err != nil {
		return fmt.Errorf("update task %s: %w", t.TaskID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("task %s: %w", t.TaskID, habit.ErrNotFound)
	}
	return nil
}

func (s *Store) DeleteTask(profileID, taskID string) error {
	res, err := s.db.Exec(
		`DELETE FROM tasks WHERE profile_id = ? AND task_id = ?`,
		habit.NormalizeProfileID(profileID), taskID,
	)
	if err != nil {
		return fmt.Errorf("delete task %s: %w", taskID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("task %s: %w", taskID, habit.ErrNotFound)
	}
	return nil
}

// NextSortOrder returns one past the highest sort order in a group, or 1
// for an empty group.
func (s *Store) NextSortOrder(profileID, group string) (int, error) {
	var max sql.NullInt64
	err := s.db.QueryRow(
		`SELECT MAX(sort_order) FROM tasks WHERE profile_id = ? AND task_group = ?`,
		habit.NormalizeProfileID(profileID), group,
	).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("next sort order: %w", err)
	}
	if !max.Valid {
		return 1, nil
	}
	return int(max.Int64) + 1, nil
}

func (s *Store) CountTasks(profileID string) (int, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM tasks WHERE profile_id = ?`,
		habit.NormalizeProfileID(profileID),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*habit.Task, error) {
	t := &habit.Task{}
	var days, defaultValue, recurrenceType, valueType, createdAt, updatedAt string
	var active, progressEnabled int
	var progressTarget float64
	var progressPeriod string

	err := row.Scan(
		&t.ProfileID, &t.TaskID, &t.Title, &t.Group, &t.Meta,
		&recurrenceType, &days, &t.Recurrence.StartDate, &t.Recurrence.EndDate,
		&valueType, &defaultValue, &t.SortOrder, &active,
		&progressEnabled, &progressTarget, &progressPeriod,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Recurrence.Type = habit.RecurrenceType(recurrenceType)
	t.Recurrence.DaysOfWeek, err = decodeDays(days)
	if err != nil {
		return nil, err
	}
	t.ValueType = habit.ValueType(valueType)
	t.DefaultValue, err = decodeValue(defaultValue)
	if err != nil {
		return nil, err
	}
	t.Active = active == 1
	if progressEnabled == 1 || progressPeriod != "" {
		t.Progress = &habit.Progress{
			Enabled: progressEnabled == 1,
			Target:  progressTarget,
			Period:  progressPeriod,
		}
	}
	t.CreatedAt = parseTime(createdAt)
	t.UpdatedAt = parseTime(updatedAt)
	return t, nil
}
