// Package task implements the task-dispatch core: envelope types, the
// action registry, the per-action handlers, and the dispatcher.
//
// A task is a single unit of work: an action name plus action-specific
// parameters. The dispatcher validates the envelope, resolves the handler
// from the registry, and runs it synchronously to completion. Handlers own
// all operational validation and always answer with a structured Result;
// envelope violations (missing task, missing id, unknown action) are
// protocol errors and surface as Go errors to the transport host instead.
//
// Supported actions:
//   - file/create: create a new file or directory (never overwrites)
//   - file/edit: fully replace the content of an existing file
//   - file/delete: remove a file, or a directory recursively
//   - command/run: run one allow-listed executable synchronously
//
// Error handling:
//   - argument: the caller supplied an invalid, missing, or conflicting field
//   - execution: the operation itself failed (I/O error, non-zero exit, spawn failure)
//
// The registry is populated once at startup and is read-only afterward, so
// concurrent dispatches share it without synchronization.
package task
