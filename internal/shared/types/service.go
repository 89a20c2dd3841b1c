package types

import (
	"sort"
	"strings"
)

// ServiceState represents a service lifecycle state
type ServiceState string

const (
	ServiceStopped  ServiceState = "stopped"
	ServiceStarting ServiceState = "starting"
	ServiceRunning  ServiceState = "running"
	ServiceStopping ServiceState = "stopping"
	ServiceError    ServiceState = "error"
)

// ServiceDefinition is a named long-running service from configuration
type ServiceDefinition struct {
	ID      string       `json:"id" yaml:"id" toml:"id"`
	Name    string       `json:"name" yaml:"name" toml:"name"`
	Tier    string       `json:"tier,omitempty" yaml:"tier,omitempty" toml:"tier,omitempty"`
	Cwd     string       `json:"cwd,omitempty" yaml:"cwd,omitempty" toml:"cwd,omitempty"`
	Start   CommandSpec  `json:"start" yaml:"start" toml:"start"`
	Stop    *CommandSpec `json:"stop,omitempty" yaml:"stop,omitempty" toml:"stop,omitempty"`
	Restart *CommandSpec `json:"restart,omitempty" yaml:"restart,omitempty" toml:"restart,omitempty"`
}

// DisplayName returns the name, falling back to the id
func (d ServiceDefinition) DisplayName() string {
	if d.Name != "" {
		return d.Name
	}
	return d.ID
}

// SortDefinitions orders defs by case-insensitive display name, then id
func SortDefinitions(defs []ServiceDefinition) {
	sort.SliceStable(defs, func(i, j int) bool {
		a, b := strings.ToLower(defs[i].DisplayName()), strings.ToLower(defs[j].DisplayName())
		if a != b {
			return a < b
		}
		return defs[i].ID < defs[j].ID
	})
}

// ServiceStatus is a lifecycle snapshot of one service
type ServiceStatus struct {
	ServiceID     string       `json:"serviceId"`
	State         ServiceState `json:"state"`
	PID           *int         `json:"pid"`
	UptimeSec     *int64       `json:"uptimeSec"`
	LastError     *string      `json:"lastError"`
	CorrelationID *string      `json:"correlationId,omitempty"`
}

// StoppedStatus returns the initial status of a service
func StoppedStatus(serviceID string) ServiceStatus {
	return ServiceStatus{
		ServiceID: serviceID,
		State:     ServiceStopped,
	}
}
