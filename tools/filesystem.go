package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/m4xw311/nexus/errors"
)

// ReadFileTool reads a file inside the sandbox.
type ReadFileTool struct {
	sandbox *Sandbox
}

func (t *ReadFileTool) Name() string { return "read_file" }
func (t *ReadFileTool) Description() string {
	return "Reads the entire content of a file inside the sandbox. Args: path (string)."
}

func (t *ReadFileTool) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	path, ok := args["path"].(string)
	if !ok {
		return "", errors.E(errors.KindScopeViolation, "missing or invalid 'path' argument")
	}

	abs, err := t.sandbox.Resolve(path)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.E(errors.KindNotFound, "file not found: %s", path)
		}
		return "", errors.WrapKind(err, errors.KindIO, "failed to stat '%s'", path)
	}
	if info.IsDir() {
		return "", errors.E(errors.KindIO, "path is a directory, not a file: %s", path)
	}

	content, err := os.ReadFile(abs)
	if err != nil {
		return "", errors.WrapKind(err, errors.KindIO, "failed to read file '%s'", path)
	}
	return string(content), nil
}

// WriteFileTool writes a file inside the sandbox, creating parent
// directories as needed.
type WriteFileTool struct {
	sandbox *Sandbox
}

func (t *WriteFileTool) Name() string { return "write_file" }
func (t *WriteFileTool) Description() string {
	return "Writes content to a file inside the sandbox, replacing it entirely. Parent directories are created. Args: path (string), content (string)."
}

func (t *WriteFileTool) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	path, pathOk := args["path"].(string)
	if !pathOk {
		return "", errors.E(errors.KindScopeViolation, "missing or invalid 'path' argument")
	}
	// A nil content writes an empty file; anything else must be a string.
	content := ""
	if raw, present := args["content"]; present && raw != nil {
		s, ok := raw.(string)
		if !ok {
			return "", errors.E(errors.KindIO, "'content' argument must be a string")
		}
		content = s
	}

	abs, err := t.sandbox.ResolveForWrite(path)
	if err != nil {
		return "", err
	}

	if dir := filepath.Dir(abs); dir != abs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", errors.WrapKind(err, errors.KindIO, "failed to create parent directories for '%s'", path)
		}
	}

	if err := os.WriteFile(abs, []byte(content), 0644); err != nil {
		return "", errors.WrapKind(err, errors.KindIO, "failed to write to file '%s'", path)
	}
	return fmt.Sprintf("Successfully wrote %d bytes to %s", len(content), path), nil
}

// ListDirTool lists directory entries inside the sandbox. Entries are sorted
// by name; directories carry a trailing separator so the model can tell them
// from files.
type ListDirTool struct {
	sandbox *Sandbox
}

func (t *ListDirTool) Name() string { return "list_dir" }
func (t *ListDirTool) Description() string {
	return "Lists the entries of a directory inside the sandbox. Directories end with '/'. Args: path (string)."
}

func (t *ListDirTool) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	path, ok := args["path"].(string)
	if !ok {
		return "", errors.E(errors.KindScopeViolation, "missing or invalid 'path' argument")
	}

	abs, err := t.sandbox.Resolve(path)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.E(errors.KindNotFound, "directory not found: %s", path)
		}
		return "", errors.WrapKind(err, errors.KindIO, "failed to stat '%s'", path)
	}
	if !info.IsDir() {
		return "", errors.E(errors.KindNotADirectory, "path is not a directory: %s", path)
	}

	dirEntries, err := os.ReadDir(abs)
	if err != nil {
		return "", errors.WrapKind(err, errors.KindIO, "failed to list directory '%s'", path)
	}

	names := make([]string, 0, len(dirEntries))
	for _, entry := range dirEntries {
		name := entry.Name()
		if entry.IsDir() {
			name += "/"
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, "\n"), nil
}
