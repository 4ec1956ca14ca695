package task

import (
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
)

// FileCreate creates a new file or directory at the task path. It never
// overwrites: an existing entry of either kind is an argument error. With no
// content the path becomes an empty directory; with content it becomes a file
// holding the encoded value. The immediate parent must already exist.
func FileCreate(_ context.Context, t Task) Result {
	if t.Path == "" {
		return Failure(t, KindArgument, "`path` must be specified")
	}

	if _, err := os.Stat(t.Path); err == nil {
		return Failure(t, KindArgument,
			fmt.Sprintf("a file or directory at path %q already exists", t.Path))
	} else if !os.IsNotExist(err) {
		return Failure(t, KindExecution, fmt.Sprintf("stat %q: %v", t.Path, err))
	}

	if t.Content == nil {
		if err := os.Mkdir(t.Path, 0755); err != nil {
			return Failure(t, KindExecution, fmt.Sprintf("create directory %q: %v", t.Path, err))
		}
		return Success(t)
	}

	data, err := encodeContent(t.Content)
	if err != nil {
		return Failure(t, KindArgument, err.Error())
	}
	if err := os.WriteFile(t.Path, data, 0644); err != nil {
		return Failure(t, KindExecution, fmt.Sprintf("write file %q: %v", t.Path, err))
	}
	return Success(t)
}

// FileEdit fully replaces the content of an existing file at the task path.
// Directories cannot be edited, and content is always required here, which
// distinguishes edit from create.
func FileEdit(_ context.Context, t Task) Result {
	if t.Path == "" {
		return Failure(t, KindArgument, "`path` must be specified")
	}

	info, err := os.Stat(t.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return Failure(t, KindArgument,
				fmt.Sprintf("a file or directory at path %q does not exist", t.Path))
		}
		return Failure(t, KindExecution, fmt.Sprintf("stat %q: %v", t.Path, err))
	}
	if info.IsDir() {
		return Failure(t, KindArgument,
			fmt.Sprintf("path %q is a directory and cannot be edited", t.Path))
	}

	if t.Content == nil {
		return Failure(t, KindArgument, "`content` must exist for file editing")
	}

	data, err := encodeContent(t.Content)
	if err != nil {
		return Failure(t, KindArgument, err.Error())
	}
	if err := os.WriteFile(t.Path, data, 0644); err != nil {
		return Failure(t, KindExecution, fmt.Sprintf("write file %q: %v", t.Path, err))
	}
	return Success(t)
}

// FileDelete removes the file or directory at the task path. Directories are
// removed recursively. Deletion is immediate; there is no dry-run.
func FileDelete(_ context.Context, t Task) Result {
	if t.Path == "" {
		return Failure(t, KindArgument, "`path` must be specified")
	}

	info, err := os.Stat(t.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return Failure(t, KindArgument,
				fmt.Sprintf("a file or directory at path %q does not exist", t.Path))
		}
		return Failure(t, KindExecution, fmt.Sprintf("stat %q: %v", t.Path, err))
	}

	if info.IsDir() {
		err = os.RemoveAll(t.Path)
	} else {
		err = os.Remove(t.Path)
	}
	if err != nil {
		return Failure(t, KindExecution, fmt.Sprintf("delete %q: %v", t.Path, err))
	}
	return Success(t)
}

// encodeContent converts the content value to bytes in the requested
// encoding. Empty or "utf-8" passes the value through unchanged; anything
// else is resolved by name through the IANA/WHATWG index.
func encodeContent(c *Content) ([]byte, error) {
	name := c.Encoding
	if name == "" || strings.EqualFold(name, DefaultEncoding) || strings.EqualFold(name, "utf8") {
		return []byte(c.Value), nil
	}

	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unknown content encoding %q", name)
	}
	data, err := enc.NewEncoder().Bytes([]byte(c.Value))
	if err != nil {
		return nil, fmt.Errorf("encode content as %q: %v", name, err)
	}
	return data, nil
}
