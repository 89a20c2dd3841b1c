package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/controlroom/internal/domain/process"
	"github.com/GriffinCanCode/controlroom/internal/shared/types"
)

// Services is the service lifecycle surface
type Services interface {
	Services() []types.ServiceDefinition
	Start(id string) (types.ServiceStatus, error)
	Stop(ctx context.Context, id string) (types.ServiceStatus, error)
	Restart(ctx context.Context, id string) (types.ServiceStatus, error)
	Status(id string) (types.ServiceStatus, error)
	StatusAll() []types.ServiceStatus
	Logs(id string, limit int) ([]types.LogEntry, error)
	ClearLogs(id string) (bool, error)
	ExportLogs(id, path string) (string, error)
}

// Runs is the ad-hoc command surface
type Runs interface {
	Execute(req types.RunRequest) (types.RunStarted, error)
	Cancel(runID string) bool
	List() []types.RunInfo
}

// ConfigSource serves and reapplies the control room configuration
type ConfigSource interface {
	Current() types.ControlRoomConfig
	Apply() (types.ControlRoomConfig, error)
}

// Workspaces lists configured workspaces
type Workspaces interface {
	List() []types.Workspace
}

// Counter reports a number of live things, such as connected observers
type Counter interface {
	Count() int
}

// Deps are the collaborators behind the handlers
type Deps struct {
	Services   Services
	Runs       Runs
	Config     ConfigSource
	Workspaces Workspaces
	Observers  Counter
	Version    string
}

// Handlers contains all HTTP handlers
type Handlers struct {
	Deps
}

// NewHandlers creates a new handler set
func NewHandlers(deps Deps) *Handlers {
	return &Handlers{Deps: deps}
}

// Register mounts every route on r
func (h *Handlers) Register(r gin.IRouter) {
	r.GET("/", h.Root)
	r.GET("/health", h.Health)

	r.GET("/services", h.ListServices)
	r.GET("/services/status", h.StatusAll)
	r.GET("/services/:id/status", h.Status)
	r.POST("/services/:id/start", h.Start)
	r.POST("/services/:id/stop", h.Stop)
	r.POST("/services/:id/restart", h.Restart)
	r.GET("/services/:id/logs", h.Logs)
	r.DELETE("/services/:id/logs", h.ClearLogs)
	r.POST("/services/:id/logs/export", h.ExportLogs)

	r.GET("/runs", h.ListRuns)
	r.POST("/runs", h.RunCommand)
	r.DELETE("/runs/:id", h.CancelRun)

	r.GET("/config", h.GetConfig)
	r.POST("/config/reload", h.ReloadConfig)
	r.GET("/workspaces", h.ListWorkspaces)
}

// Root identifies the server
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "controlroom",
		"version": h.Version,
	})
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	running := 0
	for _, s := range h.Services.StatusAll() {
		if s.State == types.ServiceRunning {
			running++
		}
	}

	observers := 0
	if h.Observers != nil {
		observers = h.Observers.Count()
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"services":  gin.H{"configured": len(h.Services.Services()), "running": running},
		"runs":      gin.H{"active": len(h.Runs.List())},
		"observers": observers,
	})
}

// errorResponse is the body of every failed request
type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

const (
	kindInvalidRequest = "invalid_request"
	kindInvalidConfig  = "invalid_config"
)

var errInvalidRequest = errors.New("invalid request")

func statusFor(kind process.Kind) int {
	switch kind {
	case process.KindNotFound:
		return http.StatusNotFound
	case process.KindInvalidCommand:
		return http.StatusBadRequest
	case process.KindSpawnFailed:
		return http.StatusBadGateway
	case process.KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err with the status implied by its kind
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	kind := process.KindOf(err)
	if kind == "" {
		kind = process.KindIO
	}
	c.AbortWithStatusJSON(statusFor(kind), errorResponse{Error: err.Error(), Kind: string(kind)})
}

// badRequest rejects malformed input
func badRequest(c *gin.Context, msg string) {
	_ = c.Error(errInvalidRequest)
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: msg, Kind: kindInvalidRequest})
}
