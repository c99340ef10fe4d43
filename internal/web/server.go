// Package web exposes the tracker over an HTTP JSON API.
package web

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/radumihail/orbit/internal/tracker"
)

// Server wires the tracker into a gin router.
type Server struct {
	tracker *tracker.Tracker
	log     *log.Logger
	router  *gin.Engine
}

// NewServer builds the router with all API routes registered.
func NewServer(tr *tracker.Tracker, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	router := gin.Default()

	s := &Server{
		tracker: tr,
		log:     logger,
		router:  router,
	}

	api := router.Group("/api")
	{
		api.GET("/daily", s.handleDaily)
		api.PATCH("/daily/:dateKey/:taskId", s.handleItemValue)

		api.GET("/weekly", s.handleWeekly)
		api.GET("/monthly", s.handleMonthly)
		api.GET("/yearly", s.handleYearly)

		api.GET("/tasks", s.handleListTasks)
		api.POST("/tasks", s.handleCreateTask)
		api.PATCH("/tasks/:taskId", s.handleUpdateTask)
		api.DELETE("/tasks/:taskId", s.handleDeleteTask)

		api.GET("/templates", s.handleListTemplates)
		api.POST("/templates/:templateId/instantiate", s.handleInstantiateTemplate)

		api.GET("/profiles", s.handleListProfiles)
		api.POST("/profiles", s.handleCreateProfile)

		api.GET("/export/entries", s.handleExportEntries)
	}

	return s
}

// Run starts the HTTP server.
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}
