package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/radumihail/orbit/internal/habit"
)

// WriteCSV writes one row per daily item across the given entries.
func WriteCSV(w io.Writer, entries []habit.DailyEntry) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	// Header
	if err := cw.Write([]string{"Date", "Group", "Task", "Type", "Value", "Completed", "Completed At"}); err != nil {
		return err
	}

	for _, e := range entries {
		for i := range e.Items {
			item := e.Items[i]
			completedAt := ""
			if item.CompletedAt != nil {
				completedAt = item.CompletedAt.UTC().Format(time.RFC3339)
			}
			row := []string{
				e.DateKey,
				item.Group,
				item.Title,
				string(item.ValueType),
				formatValue(item.Value),
				fmt.Sprintf("%t", habit.IsItemComplete(&item)),
				completedAt,
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}

	return cw.Error()
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return fmt.Sprintf("%t", val)
	case float64:
		return fmt.Sprintf("%g", val)
	}
	return fmt.Sprintf("%v", v)
}
