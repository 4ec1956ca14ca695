package task

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// Envelope and registry faults. These are protocol violations by the caller,
// not operational task failures, and are surfaced to the transport host as
// errors rather than structured Results.
var (
	ErrMissingTask     = errors.New("task must be specified")
	ErrMissingID       = errors.New("task id must be specified")
	ErrMissingAction   = errors.New("task action must be specified")
	ErrUnknownAction   = errors.New("no handler registered for action")
	ErrDuplicateAction = errors.New("action already registered")
)

// Handler performs one action's side effect and produces a Result. Handlers
// receive the task by value and are responsible for all operational
// validation; they never return errors past the dispatcher boundary.
type Handler func(ctx context.Context, t Task) Result

// Registry holds the authoritative action→handler binding table. It is
// populated once before the first task is served and treated as read-only
// for the rest of the process lifetime.
type Registry struct {
	handlers map[string]Handler
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[string]Handler),
	}
}

// Register binds action to handler. Registering the same action twice is a
// startup-time programming error and fails with ErrDuplicateAction.
func (r *Registry) Register(action string, handler Handler) error {
	if action == "" {
		return ErrMissingAction
	}
	if handler == nil {
		return fmt.Errorf("handler for %q must not be nil", action)
	}
	if _, exists := r.handlers[action]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateAction, action)
	}
	r.handlers[action] = handler
	return nil
}

// Resolve returns the handler bound to action. Pure lookup, no side effects.
func (r *Registry) Resolve(action string) (Handler, error) {
	if action == "" {
		return nil, ErrMissingAction
	}
	handler, ok := r.handlers[action]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
	return handler, nil
}

// Actions returns the registered action names in sorted order.
func (r *Registry) Actions() []string {
	actions := make([]string, 0, len(r.handlers))
	for action := range r.handlers {
		actions = append(actions, action)
	}
	sort.Strings(actions)
	return actions
}

// NewDefaultRegistry builds the registry served for the process lifetime:
// the three file actions plus command/run bound to the given allow-list.
func NewDefaultRegistry(allowedCommands []string) (*Registry, error) {
	registry := NewRegistry()
	runner := NewCommandRunner(allowedCommands)

	bindings := []struct {
		action  string
		handler Handler
	}{
		{ActionFileCreate, FileCreate},
		{ActionFileEdit, FileEdit},
		{ActionFileDelete, FileDelete},
		{ActionCommandRun, runner.Handle},
	}
	for _, b := range bindings {
		if err := registry.Register(b.action, b.handler); err != nil {
			return nil, err
		}
	}
	return registry, nil
}
