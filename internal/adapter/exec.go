package adapter

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// CommandRunner defines an interface for running external programs to enable mocking
//
//go:generate mockgen -source=exec.go -destination=../mocks/exec.go -package=mocks -mock_names=CommandRunner=MockCommandRunner
type CommandRunner interface {
	// Run executes name with args and returns stdout. The process is killed when ctx is done.
	Run(ctx context.Context, name string, args []string) ([]byte, error)
}

// RealCommandRunner implements CommandRunner using os/exec
type RealCommandRunner struct{}

// NewCommandRunner creates a new real command runner
func NewCommandRunner() CommandRunner {
	return &RealCommandRunner{}
}

func (r *RealCommandRunner) Run(ctx context.Context, name string, args []string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec,G204
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s failed: %w: %s", name, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}
