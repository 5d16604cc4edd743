// internal/syncer/syncer.go
package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"gibwerk/internal/database"
	custom_errors "gibwerk/internal/errors"
	"gibwerk/internal/llm"
	"gibwerk/internal/lock"
	"gibwerk/internal/model"
	"gibwerk/internal/prompts"
	"gibwerk/internal/vcs"
)

const (
	// Number of local diffs read in parallel
	defaultDiffConcurrency = 5
	defaultLogMaxCount     = 10
	defaultRepositoryLabel = "Gibwerk"
)

// Reader reads commits from a local checkout.
type Reader interface {
	ReadLog(ctx context.Context, repoPath string, maxCount int) ([]model.Commit, error)
	ReadDiff(ctx context.Context, repoPath, commitHash string) (string, error)
	ReadStatus(ctx context.Context, repoPath string) (string, error)
}

// RemoteClient reads repositories and commits from a hosting provider.
type RemoteClient interface {
	ListRepositories(ctx context.Context, token string) ([]string, error)
	ListCommits(ctx context.Context, token, repoFullName string) ([]model.Commit, error)
}

// Options tunes a Service. Zero values select the defaults.
type Options struct {
	LogMaxCount            int
	DiffConcurrency        int
	DefaultRepositoryLabel string
}

// DailySummaryResult is the text of a daily summary.
type DailySummaryResult struct {
	Text string `json:"text"`
}

// Service syncs commits into the store and generates their summaries.
type Service struct {
	store  database.Store
	reader Reader
	remote RemoteClient
	llm    llm.Client
	locker lock.Locker
	logger *slog.Logger
	opts   Options
	now    func() time.Time
}

// NewService creates a new Service instance.
func NewService(store database.Store, reader Reader, remote RemoteClient, llmClient llm.Client, locker lock.Locker, logger *slog.Logger, opts Options) *Service {
	if opts.LogMaxCount <= 0 {
		opts.LogMaxCount = defaultLogMaxCount
	}
	if opts.DiffConcurrency <= 0 {
		opts.DiffConcurrency = defaultDiffConcurrency
	}
	if opts.DefaultRepositoryLabel == "" {
		opts.DefaultRepositoryLabel = defaultRepositoryLabel
	}
	return &Service{
		store:  store,
		reader: reader,
		remote: remote,
		llm:    llmClient,
		locker: locker,
		logger: logger,
		opts:   opts,
		now:    time.Now,
	}
}

// SyncCommits reads the most recent commits of the checkout at repoPath,
// attaches their diffs and upserts them. Commits come back in log order with
// ids assigned.
func (s *Service) SyncCommits(ctx context.Context, repoPath string) ([]model.Commit, error) {
	logger := s.logger.With("repo_path", repoPath)
	logger.Info("Syncing local repository")

	commits, err := s.reader.ReadLog(ctx, repoPath, s.opts.LogMaxCount)
	if err != nil {
		return nil, err
	}
	label := vcs.RepositoryLabel(repoPath, s.opts.DefaultRepositoryLabel)
	logger = logger.With("repository", label)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.DiffConcurrency)
	for i := range commits {
		commits[i].Repository = label
		g.Go(func() error {
			diff, err := s.reader.ReadDiff(gctx, repoPath, commits[i].Hash)
			if err != nil {
				return err
			}
			commits[i].Diff = model.StringPtr(diff)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stored, err := s.storeCommits(ctx, commits)
	if err != nil {
		return nil, err
	}
	logger.Info("Successfully stored commits", "count", len(stored))
	return stored, nil
}

// RepoStatus returns the working tree status of the checkout at repoPath.
func (s *Service) RepoStatus(ctx context.Context, repoPath string) (string, error) {
	return s.reader.ReadStatus(ctx, repoPath)
}

// ListRepositories returns the full names of the token owner's repositories.
func (s *Service) ListRepositories(ctx context.Context, token string) ([]string, error) {
	return s.remote.ListRepositories(ctx, token)
}

// SyncRemoteCommits fetches the latest commits of repoFullName and upserts them.
func (s *Service) SyncRemoteCommits(ctx context.Context, token, repoFullName string) ([]model.Commit, error) {
	logger := s.logger.With("repository", repoFullName)
	logger.Info("Syncing remote repository")

	commits, err := s.remote.ListCommits(ctx, token, repoFullName)
	if err != nil {
		return nil, err
	}
	stored, err := s.storeCommits(ctx, commits)
	if err != nil {
		return nil, err
	}
	logger.Info("Successfully stored commits", "count", len(stored))
	return stored, nil
}

// storeCommits upserts commits in one transaction, keyed by hash and repository.
func (s *Service) storeCommits(ctx context.Context, commits []model.Commit) ([]model.Commit, error) {
	stored := make([]model.Commit, 0, len(commits))
	if len(commits) == 0 {
		return stored, nil
	}
	err := s.store.ExecTx(ctx, func(q database.Querier) error {
		for _, c := range commits {
			row, err := q.UpsertCommit(ctx, toUpsertCommitParams(c))
			if err != nil {
				return fmt.Errorf("upsert commit %s: %w", c.Hash, err)
			}
			stored = append(stored, toModelCommit(row))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}

// GenerateCommitSummary asks the model to summarize one stored commit and
// persists the result. repoContext, when set, names the project in the prompt.
func (s *Service) GenerateCommitSummary(ctx context.Context, commitID int64, repoContext string) (model.Commit, error) {
	row, err := s.store.GetCommitByID(ctx, commitID)
	if database.IsNoRows(err) {
		return model.Commit{}, &custom_errors.NotFoundError{Resource: "Commit", ID: commitID}
	}
	if err != nil {
		return model.Commit{}, fmt.Errorf("load commit %d: %w", commitID, err)
	}
	commit := toModelCommit(row)
	if commit.Diff == nil || *commit.Diff == "" {
		return model.Commit{}, &custom_errors.PreconditionError{
			Message: fmt.Sprintf("No diff information available for commit %s", commit.Hash),
		}
	}

	repoName := repoContext
	if repoName == "" {
		repoName = commit.Repository
	}
	if repoName == "" {
		repoName = s.opts.DefaultRepositoryLabel
	}

	logger := s.logger.With("commit", commit.Hash, "repository", repoName)
	logger.Info("Generating commit summary")

	raw := s.llm.Generate(ctx, prompts.CommitSummary(repoName, commit))
	text := llm.ExtractText(raw, llm.FallbackCommitSummary)

	updated, err := s.store.UpdateCommitGeneratedSummary(ctx, database.UpdateCommitGeneratedSummaryParams{
		ID:               commit.ID,
		GeneratedSummary: toText(&text),
	})
	if err != nil {
		return model.Commit{}, fmt.Errorf("store summary for commit %d: %w", commitID, err)
	}
	return toModelCommit(updated), nil
}

// GenerateDailySummary returns the narrative for all commits of repoFullName
// on date (YYYY-MM-DD, UTC). A cached summary is returned as is unless force
// is set. Generation is serialized per day and repository.
func (s *Service) GenerateDailySummary(ctx context.Context, date, repoFullName string, force bool) (DailySummaryResult, error) {
	day, err := parseDay(date)
	if err != nil {
		return DailySummaryResult{}, err
	}
	start, end := model.DayBounds(day)
	logger := s.logger.With("date", date, "repository", repoFullName)

	unlock, err := s.locker.Lock(ctx, start.Format(model.DateLayout)+"|"+repoFullName)
	if err != nil {
		return DailySummaryResult{}, fmt.Errorf("lock daily summary: %w", err)
	}
	defer unlock()

	if !force {
		cached, err := s.cachedSummary(ctx, start, repoFullName)
		if err != nil {
			return DailySummaryResult{}, err
		}
		if cached != nil {
			logger.Debug("Returning cached daily summary")
			return *cached, nil
		}
	}

	rows, err := s.store.ListCommitsInRange(ctx, database.ListCommitsInRangeParams{
		Repository: repoFullName,
		StartDate:  toTimestamptz(start),
		EndDate:    toTimestamptz(end),
	})
	if err != nil {
		return DailySummaryResult{}, fmt.Errorf("list commits: %w", err)
	}
	if len(rows) == 0 {
		logger.Info("No commits found for day")
		return DailySummaryResult{
			Text: fmt.Sprintf("No commits found for %s in repository %s", date, repoFullName),
		}, nil
	}

	commits := make([]model.Commit, len(rows))
	for i, row := range rows {
		commits[i] = toModelCommit(row)
	}

	logger.Info("Generating daily summary", "commits", len(commits), "force", force)
	prompt := prompts.DailySummary(date, repoFullName, prompts.CommitDigest(commits, ChangedLines), DayMetrics(commits))
	text := llm.ExtractText(s.llm.Generate(ctx, prompt), llm.FallbackDailySummary)

	if _, err := s.store.UpsertDailySummary(ctx, database.UpsertDailySummaryParams{
		Day:        toDate(start),
		Repository: repoFullName,
		Summary:    text,
		CreatedAt:  toTimestamptz(s.now().UTC()),
	}); err != nil {
		return DailySummaryResult{}, fmt.Errorf("store daily summary: %w", err)
	}
	return DailySummaryResult{Text: text}, nil
}

// GetDailySummary returns the cached summary for date and repoFullName, or
// nil when none has been generated.
func (s *Service) GetDailySummary(ctx context.Context, date, repoFullName string) (*DailySummaryResult, error) {
	day, err := parseDay(date)
	if err != nil {
		return nil, err
	}
	start, _ := model.DayBounds(day)
	return s.cachedSummary(ctx, start, repoFullName)
}

// Generate sends prompt to the model and returns its raw response.
func (s *Service) Generate(ctx context.Context, prompt string) llm.RawResponse {
	return s.llm.Generate(ctx, prompt)
}

func (s *Service) cachedSummary(ctx context.Context, day time.Time, repoFullName string) (*DailySummaryResult, error) {
	row, err := s.store.GetDailySummary(ctx, database.GetDailySummaryParams{
		Day:        toDate(day),
		Repository: repoFullName,
	})
	if database.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load daily summary: %w", err)
	}
	return &DailySummaryResult{Text: row.Summary}, nil
}

func parseDay(date string) (time.Time, error) {
	day, err := time.Parse(model.DateLayout, date)
	if err != nil {
		return time.Time{}, &custom_errors.ValidationError{
			Field:   "date",
			Message: fmt.Sprintf("%q is not a YYYY-MM-DD date", date),
		}
	}
	return day, nil
}
