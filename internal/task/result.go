package task

// Success builds the canonical success envelope for a task.
func Success(t Task) Result {
	return Result{
		ID:      t.ID,
		Action:  t.Action,
		Success: true,
	}
}

// Failure builds the canonical error envelope for a task. The id and action
// are copied verbatim, so a zero Task yields a Result with both omitted.
func Failure(t Task, kind, message string) Result {
	return Result{
		ID:     t.ID,
		Action: t.Action,
		Error: &ErrorInfo{
			Type:    kind,
			Message: message,
		},
	}
}
