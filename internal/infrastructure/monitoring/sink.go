package monitoring

import (
	"github.com/GriffinCanCode/controlroom/internal/domain/events"
	"github.com/GriffinCanCode/controlroom/internal/shared/types"
)

// Emit updates metrics from a control room event
func (m *Metrics) Emit(e events.Event) {
	switch p := e.Payload.(type) {
	case types.ServiceStatus:
		m.ServiceTransitions.WithLabelValues(p.ServiceID, string(p.State)).Inc()
		up := 0.0
		if p.State == types.ServiceRunning {
			up = 1
		}
		m.ServiceUp.WithLabelValues(p.ServiceID).Set(up)

	case types.LogEntry:
		m.LogLines.WithLabelValues(p.ServiceID, p.Stream, string(p.Level)).Inc()

	case types.RunOutput:
		m.RunOutputLines.WithLabelValues(p.Stream).Inc()

	case types.RunExit:
		outcome := "failure"
		switch {
		case p.Signal != nil:
			outcome = "signaled"
		case p.Code != nil && *p.Code == 0:
			outcome = "success"
		}
		m.RunExits.WithLabelValues(outcome).Inc()

	case types.BackendError:
		m.BackendErrors.WithLabelValues(p.Scope).Inc()
		m.mu.Lock()
		m.snapshot.BackendErrors++
		m.mu.Unlock()
	}
}
