package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/controlroom/internal/shared/types"
)

// RunCommand spawns an ad-hoc command and returns its run id
func (h *Handlers) RunCommand(c *gin.Context) {
	var req types.RunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid run request")
		return
	}

	started, err := h.Runs.Execute(req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, started)
}

// ListRuns returns the active runs
func (h *Handlers) ListRuns(c *gin.Context) {
	c.JSON(http.StatusOK, h.Runs.List())
}

// CancelRun terminates a run. Unknown runs report cancelled=false.
func (h *Handlers) CancelRun(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"cancelled": h.Runs.Cancel(c.Param("id"))})
}
