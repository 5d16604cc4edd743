// internal/vcs/exec.go
package vcs

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"

	custom_errors "gibwerk/internal/errors"
	"gibwerk/internal/model"
)

// ExecReader runs read-only commands through the git binary.
type ExecReader struct {
	binary string
	logger *slog.Logger
}

// NewExecReader creates a reader that spawns the git found on PATH.
func NewExecReader(logger *slog.Logger) *ExecReader {
	return &ExecReader{binary: "git", logger: logger}
}

// ReadLog returns the maxCount most recent commits, newest first. Diffs are not populated.
func (r *ExecReader) ReadLog(ctx context.Context, repoPath string, maxCount int) ([]model.Commit, error) {
	out, err := r.run(ctx, repoPath, "log", "--pretty=format:"+logFormat, "-n", strconv.Itoa(maxCount))
	if err != nil {
		return nil, err
	}
	return parseLog(out), nil
}

// ReadDiff returns the unified diff of a single commit.
func (r *ExecReader) ReadDiff(ctx context.Context, repoPath, commitHash string) (string, error) {
	out, err := r.run(ctx, repoPath, "show", "--format=", commitHash)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// ReadStatus returns the output of git status.
func (r *ExecReader) ReadStatus(ctx context.Context, repoPath string) (string, error) {
	out, err := r.run(ctx, repoPath, "status")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// run executes git against repoPath and returns the complete stdout.
func (r *ExecReader) run(ctx context.Context, repoPath string, args ...string) (string, error) {
	fullArgs := append([]string{"-C", repoPath}, args...)
	command := r.binary + " " + args[0]

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.binary, fullArgs...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.logger.Debug("Running git command", "command", command, "path", repoPath)
	if err := cmd.Run(); err != nil {
		procErr := &custom_errors.ProcessError{
			Command: command,
			Stderr:  strings.TrimSpace(stderr.String()),
			Err:     err,
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			procErr.ExitCode = exitErr.ExitCode()
		}
		r.logger.Error("Git command failed", "command", command, "path", repoPath, "error", procErr)
		return "", procErr
	}

	return stdout.String(), nil
}
