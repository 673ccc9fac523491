// Package command runs external tools for extractors that shell out
// (poppler and tesseract).
package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// Runner executes external commands. Tests substitute a fake.
type Runner interface {
	// Run executes name with args and returns its standard output.
	Run(ctx context.Context, name string, args ...string) ([]byte, error)

	// LookPath reports where name is installed.
	LookPath(name string) (string, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run executes the command. Standard error is folded into the returned error.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("%s failed: %w: %s", name, err, msg)
		}
		return nil, fmt.Errorf("%s failed: %w", name, err)
	}
	return out, nil
}

// LookPath wraps exec.LookPath.
func (ExecRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// Require checks that every tool is installed. The error wraps
// domain.ErrToolNotFound and carries install instructions.
func Require(runner Runner, instructions string, tools ...string) error {
	var missing []string
	for _, tool := range tools {
		if _, err := runner.LookPath(tool); err != nil {
			missing = append(missing, tool)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &ToolError{Tools: missing, Instructions: instructions}
}

// ToolError reports missing external tools.
type ToolError struct {
	Tools        []string
	Instructions string
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("%s not found in PATH\n%s", strings.Join(e.Tools, ", "), e.Instructions)
}

// Is reports whether target is domain.ErrToolNotFound.
func (e *ToolError) Is(target error) bool {
	return target == domain.ErrToolNotFound
}

// Workspace is a scratch directory for one extraction.
type Workspace struct {
	Dir string
}

// NewWorkspace creates a private temp directory.
func NewWorkspace(prefix string) (*Workspace, error) {
	dir, err := os.MkdirTemp("", prefix)
	if err != nil {
		return nil, fmt.Errorf("creating workspace: %w", err)
	}
	return &Workspace{Dir: dir}, nil
}

// WriteFile stores content under a unique name with the given extension
// and returns its path.
func (w *Workspace) WriteFile(content []byte, ext string) (string, error) {
	path := filepath.Join(w.Dir, uuid.NewString()+ext)
	if err := os.WriteFile(path, content, 0600); err != nil {
		return "", fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return path, nil
}

// Path joins name onto the workspace directory.
func (w *Workspace) Path(name string) string {
	return filepath.Join(w.Dir, name)
}

// Close removes the workspace and everything in it.
func (w *Workspace) Close() error {
	if w == nil || w.Dir == "" {
		return errors.New("workspace not initialised")
	}
	return os.RemoveAll(w.Dir)
}
