package habit

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/radumihail/orbit/internal/dateutil"
)

// ValueType is the immutable category of what a completion record stores.
type ValueType string

const (
	ValueBool   ValueType = "bool"
	ValueNumber ValueType = "number"
	ValueString ValueType = "string"
)

// NormalizeValueType coerces unknown types to bool.
func NormalizeValueType(vt ValueType) ValueType {
	switch vt {
	case ValueNumber, ValueString:
		return vt
	}
	return ValueBool
}

// DefaultValue returns the zero value recorded for freshly materialized
// items of the given type: false, nil and "" respectively.
func DefaultValue(vt ValueType) any {
	switch vt {
	case ValueNumber:
		return nil
	case ValueString:
		return ""
	}
	return false
}

// RecurrenceType selects which recurrence variant a task uses.
type RecurrenceType string

const (
	// RecurWeekly repeats on a fixed set of Monday-zero weekdays.
	RecurWeekly RecurrenceType = "weekly"
	// RecurInterval occurs every day of a bounded or open date range.
	RecurInterval RecurrenceType = "interval"
)

// Recurrence is a tagged variant: exactly one of the weekly or interval
// shapes is populated, selected by Type.
type Recurrence struct {
	Type       RecurrenceType `json:"type"`
	DaysOfWeek []int          `json:"daysOfWeek,omitempty"` // Monday=0 .. Sunday=6
	StartDate  string         `json:"startDate,omitempty"`  // date key
	EndDate    string         `json:"endDate,omitempty"`    // date key, "" = unbounded
}

// Progress is an optional per-task target. The core stores it verbatim
// and never evaluates it.
type Progress struct {
	Enabled bool    `json:"enabled"`
	Target  float64 `json:"target"`
	Period  string  `json:"period"` // daily, weekly, monthly, yearly
}

// Task is a recurring or bounded-interval checklist definition.
type Task struct {
	TaskID       string     `json:"taskId"`
	ProfileID    string     `json:"profileId"`
	Title        string     `json:"title"`
	Group        string     `json:"group"`
	Meta         string     `json:"meta"`
	Recurrence   Recurrence `json:"recurrence"`
	ValueType    ValueType  `json:"valueType"`
	DefaultValue any        `json:"defaultValue"`
	SortOrder    int        `json:"sortOrder"`
	Active       bool       `json:"active"`
	Progress     *Progress  `json:"progress,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// Template is a read-only catalog variant of Task used to instantiate
// new tasks without retyping recurrence rules.
type Template struct {
	TemplateID   string     `json:"templateId"`
	Title        string     `json:"title"`
	Group        string     `json:"group"`
	Meta         string     `json:"meta"`
	Recurrence   Recurrence `json:"recurrence"`
	ValueType    ValueType  `json:"valueType"`
	DefaultValue any        `json:"defaultValue"`
	SortOrder    int        `json:"sortOrder"`
}

// Profile is the isolation boundary between independent users of one
// deployment.
type Profile struct {
	ProfileID string    `json:"profileId"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ParseRecurrence validates a recurrence payload. Weekly rules need at
// least one valid day; interval rules need a parseable start date and an
// end date, if given, on or after it. Days are deduplicated and sorted.
func ParseRecurrence(r Recurrence) (Recurrence, error) {
	switch r.Type {
	case RecurWeekly:
		seen := make(map[int]bool)
		var days []int
		for _, d := range r.DaysOfWeek {
			if d < 0 || d > 6 || seen[d] {
				continue
			}
			seen[d] = true
			days = append(days, d)
		}
		if len(days) == 0 {
			return Recurrence{}, fmt.Errorf("%w: weekly tasks require at least one day of week", ErrInvalid)
		}
		sort.Ints(days)
		return Recurrence{Type: RecurWeekly, DaysOfWeek: days}, nil

	case RecurInterval:
		start, err := dateutil.FromKey(r.StartDate)
		if err != nil {
			return Recurrence{}, fmt.Errorf("%w: interval tasks require a valid start date", ErrInvalid)
		}
		out := Recurrence{Type: RecurInterval, StartDate: dateutil.ToKey(start)}
		if r.EndDate != "" {
			end, err := dateutil.FromKey(r.EndDate)
			if err != nil {
				return Recurrence{}, fmt.Errorf("%w: interval end date is invalid", ErrInvalid)
			}
			if dateutil.ToKey(end) < out.StartDate {
				return Recurrence{}, fmt.Errorf("%w: interval end date cannot be before start date", ErrInvalid)
			}
			out.EndDate = dateutil.ToKey(end)
		}
		return out, nil
	}
	return Recurrence{}, fmt.Errorf("%w: recurrence type must be weekly or interval", ErrInvalid)
}

// OccursOn reports whether a task is due on the given date. Weekday is
// the Monday-zero weekday of the date the key encodes. Unknown
// recurrence shapes fail closed.
func OccursOn(task *Task, dateKey string, weekday int) bool {
	switch task.Recurrence.Type {
	case RecurWeekly:
		for _, d := range task.Recurrence.DaysOfWeek {
			if d == weekday {
				return true
			}
		}
		return false
	case RecurInterval:
		if task.Recurrence.StartDate == "" {
			return false
		}
		if dateKey < task.Recurrence.StartDate {
			return false
		}
		if task.Recurrence.EndDate != "" && dateKey > task.Recurrence.EndDate {
			return false
		}
		return true
	}
	return false
}

// Slugify lowercases a title and collapses everything else into hyphens.
func Slugify(value string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(strings.TrimSpace(value)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		return "task"
	}
	return slug
}

// NewTaskID builds a stable id from the title slug plus a uuid fragment
// for uniqueness.
func NewTaskID(title string) string {
	return fmt.Sprintf("%s-%s", Slugify(title), uuid.NewString()[:8])
}

// NewProfileID builds a profile id the same way.
func NewProfileID(name string) string {
	slug := Slugify(name)
	if slug == "task" {
		slug = "profile"
	}
	return fmt.Sprintf("%s-%s", slug, uuid.NewString()[:8])
}
