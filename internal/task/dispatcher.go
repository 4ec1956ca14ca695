package task

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/mattjoyce/taskgate/internal/log"
)

// Dispatcher is the single entry point invoked by the transport hosts. It is
// stateless across tasks; the registry it holds is read-only after startup,
// so concurrent Dispatch calls are safe.
type Dispatcher struct {
	registry *Registry
	logger   *slog.Logger
}

// NewDispatcher creates a Dispatcher over an already-populated registry.
func NewDispatcher(registry *Registry) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		logger:   log.WithComponent("dispatch"),
	}
}

// Dispatch validates the task envelope, resolves the handler, and runs it to
// completion. Envelope violations (nil task, missing id, missing or unknown
// action) return an error for the host to surface as a transport-level
// failure; all operational outcomes come back inside the Result.
func (d *Dispatcher) Dispatch(ctx context.Context, t *Task) (Result, error) {
	if t == nil {
		return Result{}, ErrMissingTask
	}
	if t.ID == "" {
		return Result{}, ErrMissingID
	}

	handler, err := d.registry.Resolve(t.Action)
	if err != nil {
		return Result{}, err
	}

	taskLogger := d.logger.With(
		"invocation_id", uuid.NewString(),
		"task_id", t.ID,
		"action", t.Action,
	)
	taskLogger.Info("executing task")

	result := handler(ctx, *t)

	if result.Success {
		taskLogger.Info("task succeeded")
	} else {
		taskLogger.Warn("task failed",
			"error_type", result.Error.Type,
			"error_message", result.Error.Message,
		)
	}
	return result, nil
}
