package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ExportRequest is the body of a log export
type ExportRequest struct {
	Path string `json:"path" binding:"required"`
}

// ListServices returns the configured services ordered by name
func (h *Handlers) ListServices(c *gin.Context) {
	c.JSON(http.StatusOK, h.Services.Services())
}

// StatusAll returns the reconciled status of every service
func (h *Handlers) StatusAll(c *gin.Context) {
	c.JSON(http.StatusOK, h.Services.StatusAll())
}

// Status returns the reconciled status of one service
func (h *Handlers) Status(c *gin.Context) {
	status, err := h.Services.Status(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// Start launches a service
func (h *Handlers) Start(c *gin.Context) {
	status, err := h.Services.Start(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// Stop terminates a service
func (h *Handlers) Stop(c *gin.Context) {
	status, err := h.Services.Stop(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// Restart stops then starts a service
func (h *Handlers) Restart(c *gin.Context) {
	status, err := h.Services.Restart(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// Logs returns the most recent entries, optionally limited by ?limit=N
func (h *Handlers) Logs(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			badRequest(c, "limit must be a positive integer")
			return
		}
		limit = n
	}

	entries, err := h.Services.Logs(c.Param("id"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// ClearLogs empties a service's log buffer
func (h *Handlers) ClearLogs(c *gin.Context) {
	cleared, err := h.Services.ClearLogs(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cleared": cleared})
}

// ExportLogs writes a service's log buffer to a file
func (h *Handlers) ExportLogs(c *gin.Context) {
	var req ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "path is required")
		return
	}

	written, err := h.Services.ExportLogs(c.Param("id"), req.Path)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"exported": true, "path": written})
}
