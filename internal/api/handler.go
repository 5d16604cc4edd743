// internal/api/handler.go
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"gibwerk/internal/llm"
	"gibwerk/internal/model"
	"gibwerk/internal/notion"
	"gibwerk/internal/syncer"
)

// Summary generation can take as long as the LLM timeout.
const requestTimeout = 90 * time.Second

// Service is the commit sync and summary core the routes call into.
type Service interface {
	SyncCommits(ctx context.Context, repoPath string) ([]model.Commit, error)
	RepoStatus(ctx context.Context, repoPath string) (string, error)
	ListRepositories(ctx context.Context, token string) ([]string, error)
	SyncRemoteCommits(ctx context.Context, token, repoFullName string) ([]model.Commit, error)
	GenerateCommitSummary(ctx context.Context, commitID int64, repoContext string) (model.Commit, error)
	GenerateDailySummary(ctx context.Context, date, repoFullName string, force bool) (syncer.DailySummaryResult, error)
	GetDailySummary(ctx context.Context, date, repoFullName string) (*syncer.DailySummaryResult, error)
	Generate(ctx context.Context, prompt string) llm.RawResponse
}

// NotionSink stores daily summaries in Notion.
type NotionSink interface {
	SyncDailySummary(ctx context.Context, date, repoFullName, summary string) (*notion.SyncResult, error)
	DatabaseSchema(ctx context.Context) (*notion.Schema, error)
}

// TokenService issues and validates session tokens.
type TokenService interface {
	TokenParser
	Issue(githubToken string) (string, error)
}

// Handler is the container for API dependencies.
type Handler struct {
	svc    Service
	notion NotionSink
	tokens TokenService
	logger *slog.Logger
}

// NewRouter creates and configures a new chi router with all API routes.
func NewRouter(svc Service, notionSink NotionSink, tokens TokenService, logger *slog.Logger) http.Handler {
	h := &Handler{
		svc:    svc,
		notion: notionSink,
		tokens: tokens,
		logger: logger,
	}

	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger) // Chi's default logger
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/health", h.healthCheck)
	r.Post("/auth/exchange-token", h.exchangeToken)

	r.Route("/v1", func(r chi.Router) {
		r.Use(h.requireAuth)

		r.Route("/git", func(r chi.Router) {
			r.Post("/sync-commits", h.syncCommits)
			r.Get("/repo-status", h.repoStatus)
			r.Get("/user-repos", h.userRepos)
			r.Post("/github-commits", h.githubCommits)
			r.Post("/generate-commit-summary", h.generateCommitSummary)
			r.Post("/generate-daily-summary", h.generateDailySummary)
			r.Get("/daily-summary", h.getDailySummary)
		})
		r.Post("/llm/generate", h.generate)
		r.Route("/notion", func(r chi.Router) {
			r.Post("/sync-daily-summary", h.notionSyncDailySummary)
			r.Get("/database-schema", h.notionDatabaseSchema)
		})
	})

	return r
}

// healthCheck is a simple health endpoint.
func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// POST /auth/exchange-token
func (h *Handler) exchangeToken(w http.ResponseWriter, r *http.Request) {
	var req exchangeTokenRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	accessToken, err := h.tokens.Issue(req.Token)
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"accessToken": accessToken})
}

// POST /v1/git/sync-commits
func (h *Handler) syncCommits(w http.ResponseWriter, r *http.Request) {
	var req syncCommitsRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	commits, err := h.svc.SyncCommits(r.Context(), req.RepoPath)
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, commits)
}

// GET /v1/git/repo-status?repoPath=
func (h *Handler) repoStatus(w http.ResponseWriter, r *http.Request) {
	req := syncCommitsRequest{RepoPath: r.URL.Query().Get("repoPath")}
	if err := validate(req); err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	status, err := h.svc.RepoStatus(r.Context(), req.RepoPath)
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(status))
}

// GET /v1/git/user-repos
func (h *Handler) userRepos(w http.ResponseWriter, r *http.Request) {
	repos, err := h.svc.ListRepositories(r.Context(), githubToken(r.Context()))
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, repos)
}

// POST /v1/git/github-commits
func (h *Handler) githubCommits(w http.ResponseWriter, r *http.Request) {
	var req githubCommitsRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	commits, err := h.svc.SyncRemoteCommits(r.Context(), githubToken(r.Context()), req.Repo)
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, commits)
}

// POST /v1/git/generate-commit-summary
func (h *Handler) generateCommitSummary(w http.ResponseWriter, r *http.Request) {
	var req commitSummaryRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	commit, err := h.svc.GenerateCommitSummary(r.Context(), req.CommitID, req.RepoContext)
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, commit)
}

// POST /v1/git/generate-daily-summary
func (h *Handler) generateDailySummary(w http.ResponseWriter, r *http.Request) {
	var req dailySummaryRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	res, err := h.svc.GenerateDailySummary(r.Context(), req.Date, req.RepoFullName, req.Force)
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, res)
}

// GET /v1/git/daily-summary?date=&repoFullName=
func (h *Handler) getDailySummary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := dailySummaryRequest{Date: q.Get("date"), RepoFullName: q.Get("repoFullName")}
	if err := validate(req); err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	res, err := h.svc.GetDailySummary(r.Context(), req.Date, req.RepoFullName)
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	if res == nil {
		respondWithJSON(w, http.StatusOK, map[string]bool{"exists": false})
		return
	}
	respondWithJSON(w, http.StatusOK, res)
}

// POST /v1/llm/generate
func (h *Handler) generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, h.svc.Generate(r.Context(), req.Prompt))
}

// POST /v1/notion/sync-daily-summary
func (h *Handler) notionSyncDailySummary(w http.ResponseWriter, r *http.Request) {
	var req notionSyncRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	res, err := h.notion.SyncDailySummary(r.Context(), req.Date, req.RepoFullName, req.Summary)
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, res)
}

// GET /v1/notion/database-schema
func (h *Handler) notionDatabaseSchema(w http.ResponseWriter, r *http.Request) {
	schema, err := h.notion.DatabaseSchema(r.Context())
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, schema)
}
