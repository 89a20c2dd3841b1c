package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetConfig returns the active control room configuration
func (h *Handlers) GetConfig(c *gin.Context) {
	c.JSON(http.StatusOK, h.Config.Current())
}

// ReloadConfig re-reads the configuration file and applies it
func (h *Handlers) ReloadConfig(c *gin.Context) {
	cfg, err := h.Config.Apply()
	if err != nil {
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Kind: kindInvalidConfig})
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// ListWorkspaces returns the configured workspaces
func (h *Handlers) ListWorkspaces(c *gin.Context) {
	c.JSON(http.StatusOK, h.Workspaces.List())
}
