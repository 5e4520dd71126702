// Package workspace implements the WorkspaceSink contract (spec.md §6) over
// the local filesystem: FILE directives from a persona response land here.
// Grounded on _examples/jack-phare-goat/pkg/tools/filewrite.go's
// create-parent-dirs-then-write shape, inverted for relative, root-anchored
// paths instead of the teacher's absolute-path requirement.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrPathEscapesRoot is returned when a requested path's cleaned form would
// resolve outside the configured root, e.g. via "../" segments.
var ErrPathEscapesRoot = errors.New("path escapes workspace root")

// Sink is the WorkspaceSink contract: Write persists content at a
// root-relative path, creating parent directories on demand.
type Sink interface {
	Write(ctx context.Context, relativePath string, content string) error
}

// FileSink is the reference WorkspaceSink, anchored at Root.
type FileSink struct {
	Root string
}

// NewFileSink builds a FileSink anchored at root. root is made absolute at
// construction time so later escape checks are stable regardless of the
// process's working directory.
func NewFileSink(root string) (*FileSink, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("workspace: resolve root: %w", err)
	}
	return &FileSink{Root: abs}, nil
}

// Write cleans relativePath, strips any leading slash, rejects any path
// whose cleaned form escapes Root, creates parent directories, and writes
// content to the resulting file, overwriting it if present.
func (s *FileSink) Write(ctx context.Context, relativePath string, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cleaned := filepath.Clean("/" + strings.TrimLeft(relativePath, "/"))
	target := filepath.Join(s.Root, cleaned)

	rel, err := filepath.Rel(s.Root, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("%w: %s", ErrPathEscapesRoot, relativePath)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("workspace: create parent directories: %w", err)
	}
	if err := os.WriteFile(target, []byte(content), 0o644); err != nil {
		return fmt.Errorf("workspace: write file: %w", err)
	}
	return nil
}
