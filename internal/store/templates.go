package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/radumihail/orbit/internal/habit"
)

const templateColumns = `template_id, title, task_group, meta,
	recurrence_type, days_of_week, start_date, end_date,
	value_type, default_value, sort_order`

// EnsureTemplates seeds the read-only catalog. Existing rows are left
// untouched so the catalog survives restarts unchanged.
func (s *Store) EnsureTemplates(templates []habit.Template) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin seed templates: %w", err)
	}
	defer tx.Rollback()

	for _, tpl := range templates {
		days, err := encodeDays(tpl.Recurrence.DaysOfWeek)
		if err != nil {
			return err
		}
		defaultValue, err := encodeValue(tpl.DefaultValue)
		if err != nil {
			return err
		}
		_, err = tx.Exec(
			`INSERT INTO templates (`+templateColumns+`)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT (template_id) DO NOTHING`,
			tpl.TemplateID, tpl.Title, tpl.Group, tpl.Meta,
			string(tpl.Recurrence.Type), days, tpl.Recurrence.StartDate, tpl.Recurrence.EndDate,
			string(tpl.ValueType), defaultValue, tpl.SortOrder,
		)
		if err != nil {
			return fmt.Errorf("seed template %s: %w", tpl.TemplateID, err)
		}
	}
	return tx.Commit()
}

// ListTemplates returns the catalog sorted by group then title.
func (s *Store) ListTemplates() ([]habit.Template, error) {
	rows, err := s.db.Query(
		`SELECT ` + templateColumns + ` FROM templates ORDER BY task_group, title`,
	)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var templates []habit.Template
	for rows.Next() {
		tpl, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, *tpl)
	}
	return templates, rows.Err()
}

func (s *Store) GetTemplate(templateID string) (*habit.Template, error) {
	row := s.db.QueryRow(
		`SELECT `+templateColumns+` FROM templates WHERE template_id = ?`, templateID,
	)
	tpl, err := scanTemplate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("template %s: %w", templateID, habit.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get template %s: %w", templateID, err)
	}
	return tpl, nil
}

func scanTemplate(row rowScanner) (*habit.Template, error) {
	tpl := &habit.Template{}
	var days, defaultValue, recurrenceType, valueType string

	err := row.Scan(
		&tpl.TemplateID, &tpl.Title, &tpl.Group, &tpl.Meta,
		&recurrenceType, &days, &tpl.Recurrence.StartDate, &tpl.Recurrence.EndDate,
		&valueType, &defaultValue, &tpl.SortOrder,
	)
	if err != nil {
		return nil, err
	}

	tpl.Recurrence.Type = habit.RecurrenceType(recurrenceType)
	tpl.Recurrence.DaysOfWeek, err = decodeDays(days)
	if err != nil {
		return nil, err
	}
	tpl.ValueType = habit.ValueType(valueType)
	tpl.DefaultValue, err = decodeValue(defaultValue)
	if err != nil {
		return nil, err
	}
	return tpl, nil
}
