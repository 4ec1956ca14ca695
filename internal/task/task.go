package task

// Action names routable through the registry.
const (
	ActionFileCreate = "file/create"
	ActionFileEdit   = "file/edit"
	ActionFileDelete = "file/delete"
	ActionCommandRun = "command/run"
)

// Error kinds surfaced in structured Results.
const (
	KindArgument  = "argument"
	KindExecution = "execution"
)

// DefaultEncoding is the text encoding used when Content.Encoding is empty.
const DefaultEncoding = "utf-8"

// Task is the input envelope for a single unit of work. The id is an opaque
// caller-supplied correlation value and is echoed back unmodified in the
// Result. Handlers read from a Task but never mutate it.
type Task struct {
	ID     string `json:"id"`
	Action string `json:"action"`

	// Path is the filesystem target for file actions, and the optional
	// working directory for command/run.
	Path    string   `json:"path,omitempty"`
	Content *Content `json:"content,omitempty"`

	// command/run fields.
	Command     string            `json:"command,omitempty"`
	Arguments   []string          `json:"arguments,omitempty"`
	Environment map[string]string `json:"environment,omitempty"`
}

// Content is the string payload written by file tasks.
type Content struct {
	Value string `json:"value"`
	// Encoding is a text encoding name (e.g. "utf-8", "latin1").
	// Empty means utf-8.
	Encoding string `json:"encoding,omitempty"`
}

// Result is the output envelope. Exactly one of Success=true or Error holds.
// ID and Action always equal the originating task's, so callers can correlate
// even on failure.
type Result struct {
	ID      string     `json:"id,omitempty"`
	Action  string     `json:"action,omitempty"`
	Success bool       `json:"success"`
	Error   *ErrorInfo `json:"error,omitempty"`
}

// ErrorInfo carries the error kind and human-readable detail for a failed task.
type ErrorInfo struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
