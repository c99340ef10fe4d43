package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/radumihail/orbit/internal/habit"
)

const itemColumns = `task_id, title, task_group, meta, value_type, value, completed_at, sort_order`

// GetDailyEntry loads one entry with its items, ordered by sort order.
// Returns nil without error when no entry exists for the date.
func (s *Store) GetDailyEntry(profileID, dateKey string) (*habit.DailyEntry, error) {
	profileID = habit.NormalizeProfileID(profileID)
	e := &habit.DailyEntry{ProfileID: profileID, DateKey: dateKey}
	var date, createdAt, updatedAt string

	err := s.db.QueryRow(
		`SELECT date, created_at, updated_at FROM daily_entries
		 WHERE profile_id = ? AND date_key = ?`,
		profileID, dateKey,
	).Scan(&date, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get entry %s: %w", dateKey, err)
	}
	e.Date = parseTime(date)
	e.CreatedAt = parseTime(createdAt)
	e.UpdatedAt = parseTime(updatedAt)

	rows, err := s.db.Query(
		`SELECT `+itemColumns+` FROM daily_items
		 WHERE profile_id = ? AND date_key = ?
		 ORDER BY sort_order, task_id`,
		profileID, dateKey,
	)
	if err != nil {
		return nil, fmt.Errorf("get entry items %s: %w", dateKey, err)
	}
	defer rows.Close()

	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		e.Items = append(e.Items, *item)
	}
	return e, rows.Err()
}

// InsertDailyEntry persists a freshly materialized entry with its items.
// A concurrent insert for the same (profile, date) wins silently: the
// method reports false and writes nothing, and the caller re-reads.
func (s *Store) InsertDailyEntry(e *habit.DailyEntry) (bool, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return false, fmt.Errorf("begin insert entry: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`INSERT INTO daily_entries (profile_id, date_key, date, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (profile_id, date_key) DO NOTHING`,
		habit.NormalizeProfileID(e.ProfileID), e.DateKey, formatTime(e.Date),
		formatTime(e.CreatedAt), formatTime(e.UpdatedAt),
	)
	if err != nil {
		return false, fmt.Errorf("insert entry %s: %w", e.DateKey, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return false, nil
	}

	for i := range e.Items {
		if err := insertItemTx(tx, e.ProfileID, e.DateKey, &e.Items[i]); err != nil {
			return false, err
		}
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit insert entry: %w", err)
	}
	return true, nil
}

// ListDailyEntries loads all entries in [fromKey, toKey] with their
// items, ordered by date key.
func (s *Store) ListDailyEntries(profileID, fromKey, toKey string) ([]habit.DailyEntry, error) {
	profileID = habit.NormalizeProfileID(profileID)

	rows, err := s.db.Query(
		`SELECT date_key, date, created_at, updated_at FROM daily_entries
		 WHERE profile_id = ? AND date_key >= ? AND date_key <= ?
		 ORDER BY date_key`,
		profileID, fromKey, toKey,
	)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var entries []habit.DailyEntry
	index := make(map[string]int)
	for rows.Next() {
		var e habit.DailyEntry
		var date, createdAt, updatedAt string
		if err := rows.Scan(&e.DateKey, &date, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		e.ProfileID = profileID
		e.Date = parseTime(date)
		e.CreatedAt = parseTime(createdAt)
		e.UpdatedAt = parseTime(updatedAt)
		index[e.DateKey] = len(entries)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	itemRows, err := s.db.Query(
		`SELECT date_key, `+itemColumns+` FROM daily_items
		 WHERE profile_id = ? AND date_key >= ? AND date_key <= ?
		 ORDER BY date_key, sort_order, task_id`,
		profileID, fromKey, toKey,
	)
	if err != nil {
		return nil, fmt.Errorf("list entry items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var dateKey string
		item, err := scanItemWithKey(itemRows, &dateKey)
		if err != nil {
			return nil, err
		}
		if i, ok := index[dateKey]; ok {
			entries[i].Items = append(entries[i].Items, *item)
		}
	}
	return entries, itemRows.Err()
}

// InsertDailyItem adds one task's item to an existing entry.
func (s *Store) InsertDailyItem(profileID, dateKey string, item *habit.DailyItem, now time.Time) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin insert item: %w", err)
	}
	defer tx.Rollback()

	if err := insertItemTx(tx, profileID, dateKey, item); err != nil {
		return err
	}
	if err := touchEntryTx(tx, profileID, dateKey, now); err != nil {
		return err
	}
	return tx.Commit()
}

// UpdateDailyItem overwrites an item's snapshot fields, value and
// completion timestamp.
func (s *Store) UpdateDailyItem(profileID, dateKey string, item *habit.DailyItem, now time.Time) error {
	value, err := encodeValue(item.Value)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin update item: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`UPDATE daily_items SET title = ?, task_group = ?, meta = ?,
			value_type = ?, value = ?, completed_at = ?, sort_order = ?
		 WHERE profile_id = ? AND date_key = ? AND task_id = ?`,
		item.Title, item.Group, item.Meta,
		string(item.ValueType), value, completedAtColumn(item.CompletedAt), item.SortOrder,
		habit.NormalizeProfileID(profileID), dateKey, item.TaskID,
	)
	if err != nil {
		return fmt.Errorf("update item %s/%s: %w", dateKey, item.TaskID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("item %s/%s: %w", dateKey, item.TaskID, habit.ErrNotFound)
	}
	if err := touchEntryTx(tx, profileID, dateKey, now); err != nil {
		return err
	}
	return tx.Commit()
}

// RemoveDailyItem deletes one task's item from one entry. Reports
// whether an item was actually removed.
func (s *Store) RemoveDailyItem(profileID, dateKey, taskID string, now time.Time) (bool, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return false, fmt.Errorf("begin remove item: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`DELETE FROM daily_items WHERE profile_id = ? AND date_key = ? AND task_id = ?`,
		habit.NormalizeProfileID(profileID), dateKey, taskID,
	)
	if err != nil {
		return false, fmt.Errorf("remove item %s/%s: %w", dateKey, taskID, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return false, nil
	}
	if err := touchEntryTx(tx, profileID, dateKey, now); err != nil {
		return false, err
	}
	return true, tx.Commit()
}

// RemoveItemSince pulls one task's items from every entry with
// date_key >= fromKey. An empty fromKey pulls across all history.
// Entries themselves are never deleted.
func (s *Store) RemoveItemSince(profileID, taskID, fromKey string, now time.Time) error {
	profileID = habit.NormalizeProfileID(profileID)

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin remove items: %w", err)
	}
	defer tx.Rollback()

	// Touch affected entries before their items disappear.
	touch := `UPDATE daily_entries SET updated_at = ?
		 WHERE profile_id = ? AND date_key IN (
			SELECT date_key FROM daily_items WHERE profile_id = ? AND task_id = ?`
	del := `DELETE FROM daily_items WHERE profile_id = ? AND task_id = ?`
	touchArgs := []any{formatTime(now), profileID, profileID, taskID}
	delArgs := []any{profileID, taskID}
	if fromKey != "" {
		touch += ` AND date_key >= ?`
		del += ` AND date_key >= ?`
		touchArgs = append(touchArgs, fromKey)
		delArgs = append(delArgs, fromKey)
	}
	touch += `)`

	if _, err := tx.Exec(touch, touchArgs...); err != nil {
		return fmt.Errorf("touch entries for task %s: %w", taskID, err)
	}
	if _, err := tx.Exec(del, delArgs...); err != nil {
		return fmt.Errorf("remove items for task %s: %w", taskID, err)
	}
	return tx.Commit()
}

func insertItemTx(tx *sql.Tx, profileID, dateKey string, item *habit.DailyItem) error {
	value, err := encodeValue(item.Value)
	if err != nil {
		return err
	}
	_, err = tx.Exec(
		`INSERT INTO daily_items (profile_id, date_key, `+itemColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (profile_id, date_key, task_id) DO NOTHING`,
		habit.NormalizeProfileID(profileID), dateKey,
		item.TaskID, item.Title, item.Group, item.Meta,
		string(item.ValueType), value, completedAtColumn(item.CompletedAt), item.SortOrder,
	)
	if err != nil {
		return fmt.Errorf("insert item %s/%s: %w", dateKey, item.TaskID, err)
	}
	return nil
}

func touchEntryTx(tx *sql.Tx, profileID, dateKey string, now time.Time) error {
	_, err := tx.Exec(
		`UPDATE daily_entries SET updated_at = ? WHERE profile_id = ? AND date_key = ?`,
		formatTime(now), habit.NormalizeProfileID(profileID), dateKey,
	)
	if err != nil {
		return fmt.Errorf("touch entry %s: %w", dateKey, err)
	}
	return nil
}

func completedAtColumn(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func scanItem(row rowScanner) (*habit.DailyItem, error) {
	return scanItemInto(row, nil)
}

func scanItemWithKey(row rowScanner, dateKey *string) (*habit.DailyItem, error) {
	return scanItemInto(row, dateKey)
}

func scanItemInto(row rowScanner, dateKey *string) (*habit.DailyItem, error) {
	item := &habit.DailyItem{}
	var valueType, value string
	var completedAt sql.NullString

	dest := []any{}
	if dateKey != nil {
		dest = append(dest, dateKey)
	}
	dest = append(dest,
		&item.TaskID, &item.Title, &item.Group, &item.Meta,
		&valueType, &value, &completedAt, &item.SortOrder,
	)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	item.ValueType = habit.ValueType(valueType)
	v, err := decodeValue(value)
	if err != nil {
		return nil, err
	}
	item.Value = v
	if completedAt.Valid {
		t := parseTime(completedAt.String)
		item.CompletedAt = &t
	}
	return item, nil
}
