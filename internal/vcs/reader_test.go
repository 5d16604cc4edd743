// internal/vcs/reader_test.go
package vcs

import (
	"context"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	custom_errors "gibwerk/internal/errors"
)

type fixtureCommit struct {
	file    string
	content string
	message string
	when    time.Time
}

// newFixtureRepo builds a repository on disk and returns its path with the
// commit hashes in creation order.
func newFixtureRepo(t *testing.T, commits []fixtureCommit) (string, []string) {
	t.Helper()
	dir := t.TempDir()

	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)

	var hashes []string
	for _, c := range commits {
		require.NoError(t, os.WriteFile(filepath.Join(dir, c.file), []byte(c.content), 0o644))
		_, err := wt.Add(c.file)
		require.NoError(t, err)
		hash, err := wt.Commit(c.message, &git.CommitOptions{
			Author: &object.Signature{Name: "Ada Lovelace", Email: "ada@example.com", When: c.when},
		})
		require.NoError(t, err)
		hashes = append(hashes, hash.String())
	}
	return dir, hashes
}

func defaultFixture() []fixtureCommit {
	return []fixtureCommit{
		{file: "main.go", content: "package main\n", message: "chore: init", when: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)},
		{file: "main.go", content: "package main\n\nfunc main() {}\n", message: "feat: add main\n\nEntry point for the service.", when: time.Date(2024, 1, 2, 10, 30, 0, 0, time.UTC)},
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestParseLog(t *testing.T) {
	output := "h1\nAda\n1704189000\nfeat: add main\nEntry point.\nMore detail.\n\n---\n" +
		"h2\nBob\n1704099600\nchore: init\n\n---"

	commits := parseLog(output)

	require.Len(t, commits, 2)
	assert.Equal(t, "h1", commits[0].Hash)
	assert.Equal(t, "Ada", commits[0].Author)
	assert.Equal(t, time.Unix(1704189000, 0).UTC(), commits[0].Date)
	assert.Equal(t, "feat: add main", commits[0].Message)
	require.NotNil(t, commits[0].Summary)
	assert.Equal(t, "Entry point.\nMore detail.", *commits[0].Summary)

	assert.Equal(t, "h2", commits[1].Hash)
	assert.Nil(t, commits[1].Summary)
	assert.Nil(t, commits[1].Diff)
}

func TestParseLog_SkipsMalformedRecords(t *testing.T) {
	commits := parseLog("h1\nAda\nnot-a-timestamp\nsubject\n---\n\n---\n")
	assert.Empty(t, commits)
}

func TestRepositoryLabel(t *testing.T) {
	assert.Equal(t, "repo", RepositoryLabel("/home/ada/src/repo", "Gibwerk"))
	assert.Equal(t, "repo", RepositoryLabel("/home/ada/src/repo/", "Gibwerk"))
	assert.Equal(t, "Gibwerk", RepositoryLabel("", "Gibwerk"))
	assert.Equal(t, "Gibwerk", RepositoryLabel("/", "Gibwerk"))
}

func TestGoGitReader(t *testing.T) {
	dir, hashes := newFixtureRepo(t, defaultFixture())
	reader := NewGoGitReader(testLogger())
	ctx := context.Background()

	commits, err := reader.ReadLog(ctx, dir, 10)
	require.NoError(t, err)
	require.Len(t, commits, 2)
	assert.Equal(t, hashes[1], commits[0].Hash, "newest commit first")
	assert.Equal(t, hashes[0], commits[1].Hash)
	assert.Equal(t, "feat: add main", commits[0].Message)
	require.NotNil(t, commits[0].Summary)
	assert.Equal(t, "Entry point for the service.", *commits[0].Summary)
	assert.Equal(t, "Ada Lovelace", commits[0].Author)

	limited, err := reader.ReadLog(ctx, dir, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	diff, err := reader.ReadDiff(ctx, dir, hashes[1])
	require.NoError(t, err)
	assert.Contains(t, diff, "+func main() {}")

	rootDiff, err := reader.ReadDiff(ctx, dir, hashes[0])
	require.NoError(t, err)
	assert.Contains(t, rootDiff, "+package main")

	_, err = reader.ReadStatus(ctx, dir)
	require.NoError(t, err)
}

func TestGoGitReader_NotARepository(t *testing.T) {
	reader := NewGoGitReader(testLogger())

	_, err := reader.ReadLog(context.Background(), t.TempDir(), 10)

	var procErr *custom_errors.ProcessError
	require.ErrorAs(t, err, &procErr)
}

func TestExecReader(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}
	dir, hashes := newFixtureRepo(t, defaultFixture())
	reader := NewExecReader(testLogger())
	ctx := context.Background()

	commits, err := reader.ReadLog(ctx, dir, 10)
	require.NoError(t, err)
	require.Len(t, commits, 2)
	assert.Equal(t, hashes[1], commits[0].Hash)
	assert.Equal(t, hashes[0], commits[1].Hash)
	assert.Equal(t, "Ada Lovelace", commits[0].Author)
	assert.Equal(t, time.Date(2024, 1, 2, 10, 30, 0, 0, time.UTC), commits[0].Date)
	assert.Equal(t, "feat: add main", commits[0].Message)
	require.NotNil(t, commits[0].Summary)
	assert.Equal(t, "Entry point for the service.", *commits[0].Summary)

	diff, err := reader.ReadDiff(ctx, dir, hashes[1])
	require.NoError(t, err)
	assert.Contains(t, diff, "diff --git a/main.go b/main.go")
	assert.Contains(t, diff, "+func main() {}")

	status, err := reader.ReadStatus(ctx, dir)
	require.NoError(t, err)
	assert.NotEmpty(t, status)
}

func TestExecReader_Failures(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}
	ctx := context.Background()

	t.Run("non-zero exit", func(t *testing.T) {
		reader := NewExecReader(testLogger())
		_, err := reader.ReadStatus(ctx, t.TempDir())

		var procErr *custom_errors.ProcessError
		require.ErrorAs(t, err, &procErr)
		assert.NotZero(t, procErr.ExitCode)
		assert.Equal(t, "git status", procErr.Command)
	})

	t.Run("cannot spawn", func(t *testing.T) {
		reader := &ExecReader{binary: "git-binary-that-does-not-exist", logger: testLogger()}
		_, err := reader.ReadLog(ctx, t.TempDir(), 10)

		var procErr *custom_errors.ProcessError
		require.ErrorAs(t, err, &procErr)
		assert.Zero(t, procErr.ExitCode)
		assert.Error(t, procErr.Err)
	})
}
