package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/radumihail/orbit/internal/dateutil"
	"github.com/radumihail/orbit/internal/export"
	"github.com/radumihail/orbit/internal/habit"
	"github.com/radumihail/orbit/internal/tracker"
)

// profileID selects the caller's profile from the query string or the
// X-Profile-Id header, defaulting to the default profile.
func profileID(c *gin.Context) string {
	id := c.Query("profileId")
	if id == "" {
		id = c.GetHeader("X-Profile-Id")
	}
	return habit.NormalizeProfileID(id)
}

// refDate parses the optional date query parameter, defaulting to today.
func refDate(c *gin.Context) (time.Time, error) {
	raw := c.Query("date")
	if raw == "" {
		return time.Now(), nil
	}
	date, err := dateutil.FromKey(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date format", habit.ErrInvalid)
	}
	return date, nil
}

func (s *Server) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, habit.ErrInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, habit.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		s.log.Error("request failed", "path", c.FullPath(), "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// dailyResponse mirrors the checklist page payload: the entry's items
// bucketed by group.
type dailyResponse struct {
	Date    time.Time         `json:"date"`
	DateKey string            `json:"dateKey"`
	Groups  []habit.ItemGroup `json:"groups"`
}

func (s *Server) handleDaily(c *gin.Context) {
	date, err := refDate(c)
	if err != nil {
		s.respondError(c, err)
		return
	}

	entry, err := s.tracker.GetOrCreateDailyEntry(profileID(c), dateutil.ToKey(date), date)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dailyResponse{
		Date:    entry.Date,
		DateKey: entry.DateKey,
		Groups:  habit.GroupItems(entry.Items),
	})
}

func (s *Server) handleItemValue(c *gin.Context) {
	dateKey := c.Param("dateKey")
	taskID := c.Param("taskId")
	date, err := dateutil.FromKey(dateKey)
	if err != nil {
		s.respondError(c, fmt.Errorf("%w: invalid date key", habit.ErrInvalid))
		return
	}

	var payload map[string]json.RawMessage
	if err := c.ShouldBindJSON(&payload); err != nil {
		s.respondError(c, fmt.Errorf("%w: invalid request body", habit.ErrInvalid))
		return
	}
	raw, ok := payload["value"]
	if !ok {
		s.respondError(c, fmt.Errorf("%w: missing value", habit.ErrInvalid))
		return
	}
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		s.respondError(c, fmt.Errorf("%w: invalid value", habit.ErrInvalid))
		return
	}

	// The entry materializes on first touch; the item itself must
	// already be part of it.
	pid := profileID(c)
	if _, err := s.tracker.GetOrCreateDailyEntry(pid, dateKey, date); err != nil {
		s.respondError(c, err)
		return
	}
	item, err := s.tracker.UpdateItemValue(pid, dateKey, taskID, value)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "item": item})
}

func (s *Server) handleWeekly(c *gin.Context) {
	date, err := refDate(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	view, err := s.tracker.Week(profileID(c), date)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) handleMonthly(c *gin.Context) {
	date, err := refDate(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	view, err := s.tracker.Month(profileID(c), date)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) handleYearly(c *gin.Context) {
	date, err := refDate(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	view, err := s.tracker.Year(profileID(c), date)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) handleListTasks(c *gin.Context) {
	tasks, err := s.tracker.ListTasks(profileID(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

func (s *Server) handleCreateTask(c *gin.Context) {
	var input tracker.TaskInput
	if err := c.ShouldBindJSON(&input); err != nil {
		s.respondError(c, fmt.Errorf("%w: invalid request body", habit.ErrInvalid))
		return
	}
	task, err := s.tracker.CreateTask(profileID(c), input)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "task": task})
}

func (s *Server) handleUpdateTask(c *gin.Context) {
	var input tracker.TaskInput
	if err := c.ShouldBindJSON(&input); err != nil {
		s.respondError(c, fmt.Errorf("%w: invalid request body", habit.ErrInvalid))
		return
	}
	task, err := s.tracker.UpdateTask(profileID(c), c.Param("taskId"), input)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "task": task})
}

func (s *Server) handleDeleteTask(c *gin.Context) {
	deleteHistory := c.Query("deleteHistory") == "true"
	if err := s.tracker.DeleteTask(profileID(c), c.Param("taskId"), deleteHistory); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) handleListTemplates(c *gin.Context) {
	templates, err := s.tracker.ListTemplates()
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"templates": templates})
}

func (s *Server) handleInstantiateTemplate(c *gin.Context) {
	task, err := s.tracker.InstantiateTemplate(profileID(c), c.Param("templateId"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "task": task})
}

func (s *Server) handleListProfiles(c *gin.Context) {
	profiles, err := s.tracker.ListProfiles()
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profiles": profiles})
}

func (s *Server) handleCreateProfile(c *gin.Context) {
	var payload struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		s.respondError(c, fmt.Errorf("%w: invalid request body", habit.ErrInvalid))
		return
	}
	profile, err := s.tracker.CreateProfile(payload.Name)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "profile": profile})
}

func (s *Server) handleExportEntries(c *gin.Context) {
	fromKey := c.Query("from")
	toKey := c.Query("to")
	for _, key := range []string{fromKey, toKey} {
		if key == "" {
			continue
		}
		if _, err := dateutil.FromKey(key); err != nil {
			s.respondError(c, fmt.Errorf("%w: invalid date range", habit.ErrInvalid))
			return
		}
	}

	pid := profileID(c)
	entries, err := s.tracker.History(pid, fromKey, toKey)
	if err != nil {
		s.respondError(c, err)
		return
	}

	switch c.DefaultQuery("format", "json") {
	case "json":
		c.Header("Content-Type", "application/json")
		c.Header("Content-Disposition", `attachment; filename="orbit-entries.json"`)
		if err := export.WriteJSON(c.Writer, pid, entries); err != nil {
			s.log.Error("export failed", "err", err)
		}
	case "csv":
		c.Header("Content-Type", "text/csv")
		c.Header("Content-Disposition", `attachment; filename="orbit-entries.csv"`)
		if err := export.WriteCSV(c.Writer, entries); err != nil {
			s.log.Error("export failed", "err", err)
		}
	default:
		s.respondError(c, fmt.Errorf("%w: format must be json or csv", habit.ErrInvalid))
	}
}
