// internal/vcs/gogit.go
package vcs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"

	custom_errors "gibwerk/internal/errors"
	"gibwerk/internal/model"
)

// GoGitReader reads repositories in-process with go-git, for hosts without a git binary.
// Status output follows go-git's short format rather than the git porcelain text.
type GoGitReader struct {
	logger *slog.Logger
}

func NewGoGitReader(logger *slog.Logger) *GoGitReader {
	return &GoGitReader{logger: logger}
}

func (r *GoGitReader) ReadLog(ctx context.Context, repoPath string, maxCount int) ([]model.Commit, error) {
	repo, err := r.open(repoPath, "log")
	if err != nil {
		return nil, err
	}

	head, err := repo.Head()
	if err != nil {
		return nil, processError("log", err)
	}

	iter, err := repo.Log(&git.LogOptions{From: head.Hash()})
	if err != nil {
		return nil, processError("log", err)
	}
	defer iter.Close()

	commits := make([]model.Commit, 0, maxCount)
	err = iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if len(commits) >= maxCount {
			return storer.ErrStop
		}
		subject, body := model.SplitMessage(c.Message)
		commit := model.Commit{
			Hash:    c.Hash.String(),
			Author:  c.Author.Name,
			Date:    c.Author.When.UTC(),
			Message: subject,
		}
		if body != "" {
			commit.Summary = model.StringPtr(body)
		}
		commits = append(commits, commit)
		return nil
	})
	if err != nil && !errors.Is(err, storer.ErrStop) {
		return nil, processError("log", err)
	}

	return commits, nil
}

func (r *GoGitReader) ReadDiff(ctx context.Context, repoPath, commitHash string) (string, error) {
	repo, err := r.open(repoPath, "show")
	if err != nil {
		return "", err
	}

	commit, err := repo.CommitObject(plumbing.NewHash(commitHash))
	if err != nil {
		return "", processError("show", fmt.Errorf("commit %s: %w", commitHash, err))
	}

	tree, err := commit.Tree()
	if err != nil {
		return "", processError("show", err)
	}

	// Root commits are diffed against the empty tree.
	var parentTree *object.Tree
	if commit.NumParents() > 0 {
		parent, err := commit.Parent(0)
		if err != nil {
			return "", processError("show", err)
		}
		if parentTree, err = parent.Tree(); err != nil {
			return "", processError("show", err)
		}
	}

	changes, err := object.DiffTree(parentTree, tree)
	if err != nil {
		return "", processError("show", err)
	}
	patch, err := changes.PatchContext(ctx)
	if err != nil {
		return "", processError("show", err)
	}

	return strings.TrimSpace(patch.String()), nil
}

func (r *GoGitReader) ReadStatus(ctx context.Context, repoPath string) (string, error) {
	repo, err := r.open(repoPath, "status")
	if err != nil {
		return "", err
	}

	wt, err := repo.Worktree()
	if err != nil {
		return "", processError("status", err)
	}
	status, err := wt.Status()
	if err != nil {
		return "", processError("status", err)
	}

	return strings.TrimSpace(status.String()), nil
}

func (r *GoGitReader) open(repoPath, op string) (*git.Repository, error) {
	repo, err := git.PlainOpenWithOptions(repoPath, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		r.logger.Error("Failed to open repository", "path", repoPath, "error", err)
		return nil, processError(op, fmt.Errorf("open %s: %w", repoPath, err))
	}
	return repo, nil
}

func processError(op string, err error) error {
	return &custom_errors.ProcessError{Command: "go-git " + op, Err: err}
}
