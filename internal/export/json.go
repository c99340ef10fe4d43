// Package export renders daily checklist history as JSON or CSV for
// backup and spreadsheet use.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/radumihail/orbit/internal/habit"
)

type jsonExport struct {
	ExportedAt string    `json:"exported_at"`
	ProfileID  string    `json:"profile_id"`
	Count      int       `json:"count"`
	Days       []jsonDay `json:"days"`
}

type jsonDay struct {
	DateKey        string     `json:"date_key"`
	Date           string     `json:"date"`
	TotalTasks     int        `json:"total_tasks"`
	CompletedTasks int        `json:"completed_tasks"`
	Items          []jsonItem `json:"items"`
}

type jsonItem struct {
	TaskID      string `json:"task_id"`
	Title       string `json:"title"`
	Group       string `json:"group"`
	ValueType   string `json:"value_type"`
	Value       any    `json:"value"`
	Completed   bool   `json:"completed"`
	CompletedAt string `json:"completed_at,omitempty"`
}

// WriteJSON writes a profile's entries as an indented JSON document.
func WriteJSON(w io.Writer, profileID string, entries []habit.DailyEntry) error {
	doc := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		ProfileID:  profileID,
		Count:      len(entries),
	}

	for _, e := range entries {
		day := jsonDay{
			DateKey:        e.DateKey,
			Date:           e.Date.Format(time.RFC3339),
			TotalTasks:     len(e.Items),
			CompletedTasks: habit.CountComplete(e.Items),
		}
		for i := range e.Items {
			item := e.Items[i]
			completedAt := ""
			if item.CompletedAt != nil {
				completedAt = item.CompletedAt.UTC().Format(time.RFC3339)
			}
			day.Items = append(day.Items, jsonItem{
				TaskID:      item.TaskID,
				Title:       item.Title,
				Group:       item.Group,
				ValueType:   string(item.ValueType),
				Value:       item.Value,
				Completed:   habit.IsItemComplete(&item),
				CompletedAt: completedAt,
			})
		}
		doc.Days = append(doc.Days, day)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	return nil
}
