// internal/api/handler_test.go
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gibwerk/internal/auth"
	custom_errors "gibwerk/internal/errors"
	"gibwerk/internal/llm"
	"gibwerk/internal/model"
	"gibwerk/internal/notion"
	"gibwerk/internal/syncer"
)

// MockService is a mock of the Service interface.
type MockService struct {
	mock.Mock
}

func (m *MockService) SyncCommits(ctx context.Context, repoPath string) ([]model.Commit, error) {
	args := m.Called(ctx, repoPath)
	return args.Get(0).([]model.Commit), args.Error(1)
}
func (m *MockService) RepoStatus(ctx context.Context, repoPath string) (string, error) {
	args := m.Called(ctx, repoPath)
	return args.String(0), args.Error(1)
}
func (m *MockService) ListRepositories(ctx context.Context, token string) ([]string, error) {
	args := m.Called(ctx, token)
	return args.Get(0).([]string), args.Error(1)
}
func (m *MockService) SyncRemoteCommits(ctx context.Context, token, repoFullName string) ([]model.Commit, error) {
	args := m.Called(ctx, token, repoFullName)
	return args.Get(0).([]model.Commit), args.Error(1)
}
func (m *MockService) GenerateCommitSummary(ctx context.Context, commitID int64, repoContext string) (model.Commit, error) {
	args := m.Called(ctx, commitID, repoContext)
	return args.Get(0).(model.Commit), args.Error(1)
}
func (m *MockService) GenerateDailySummary(ctx context.Context, date, repoFullName string, force bool) (syncer.DailySummaryResult, error) {
	args := m.Called(ctx, date, repoFullName, force)
	return args.Get(0).(syncer.DailySummaryResult), args.Error(1)
}
func (m *MockService) GetDailySummary(ctx context.Context, date, repoFullName string) (*syncer.DailySummaryResult, error) {
	args := m.Called(ctx, date, repoFullName)
	return args.Get(0).(*syncer.DailySummaryResult), args.Error(1)
}
func (m *MockService) Generate(ctx context.Context, prompt string) llm.RawResponse {
	args := m.Called(ctx, prompt)
	return args.Get(0)
}

// MockNotion is a mock of the NotionSink interface.
type MockNotion struct {
	mock.Mock
}

func (m *MockNotion) SyncDailySummary(ctx context.Context, date, repoFullName, summary string) (*notion.SyncResult, error) {
	args := m.Called(ctx, date, repoFullName, summary)
	return args.Get(0).(*notion.SyncResult), args.Error(1)
}
func (m *MockNotion) DatabaseSchema(ctx context.Context) (*notion.Schema, error) {
	args := m.Called(ctx)
	return args.Get(0).(*notion.Schema), args.Error(1)
}

type testServer struct {
	svc     *MockService
	notion  *MockNotion
	handler http.Handler
	jwt     string
}

func newTestServer(t *testing.T) *testServer {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	tokens := auth.NewTokenIssuer("test-secret", time.Hour)
	jwt, err := tokens.Issue("gho_token")
	require.NoError(t, err)

	svc := new(MockService)
	notionSink := new(MockNotion)
	return &testServer{
		svc:     svc,
		notion:  notionSink,
		handler: NewRouter(svc, notionSink, tokens, logger),
		jwt:     jwt,
	}
}

func (ts *testServer) do(method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+ts.jwt)
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", decodeBody(t, rr)["status"])
}

func TestExchangeToken(t *testing.T) {
	ts := newTestServer(t)
	ts.svc.On("ListRepositories", mock.Anything, "gho_fresh").Return([]string{"ada/calendar"}, nil)

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/auth/exchange-token", strings.NewReader(`{"token":"gho_fresh"}`)))
	require.Equal(t, http.StatusOK, rr.Code)
	accessToken, _ := decodeBody(t, rr)["accessToken"].(string)
	require.NotEmpty(t, accessToken)

	ts.jwt = accessToken
	rr = ts.do(http.MethodGet, "/v1/git/user-repos", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `["ada/calendar"]`, rr.Body.String())
}

func TestExchangeToken_MissingToken(t *testing.T) {
	ts := newTestServer(t)
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/auth/exchange-token", strings.NewReader(`{}`)))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRequireAuth(t *testing.T) {
	ts := newTestServer(t)

	cases := map[string]string{
		"missing header": "",
		"wrong scheme":   "Basic abc",
		"bad token":      "Bearer not-a-jwt",
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/git/user-repos", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rr := httptest.NewRecorder()
			ts.handler.ServeHTTP(rr, req)

			assert.Equal(t, http.StatusUnauthorized, rr.Code)
			assert.NotEmpty(t, decodeBody(t, rr)["error"])
		})
	}
	ts.svc.AssertNotCalled(t, "ListRepositories", mock.Anything, mock.Anything)
}

func TestSyncCommits(t *testing.T) {
	ts := newTestServer(t)
	commits := []model.Commit{{ID: 1, Hash: "h1", Date: time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC), Repository: "calendar", Diff: model.StringPtr("+x")}}
	ts.svc.On("SyncCommits", mock.Anything, "/src/calendar").Return(commits, nil)

	rr := ts.do(http.MethodPost, "/v1/git/sync-commits", `{"repoPath":"/src/calendar"}`)

	require.Equal(t, http.StatusOK, rr.Code)
	var got []model.Commit
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, commits, got)
}

func TestSyncCommits_ProcessError(t *testing.T) {
	ts := newTestServer(t)
	ts.svc.On("SyncCommits", mock.Anything, "/nope").Return([]model.Commit(nil),
		&custom_errors.ProcessError{Command: "git log", ExitCode: 128, Stderr: "fatal: not a git repository"})

	rr := ts.do(http.MethodPost, "/v1/git/sync-commits", `{"repoPath":"/nope"}`)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, decodeBody(t, rr)["error"], "not a git repository")
}

func TestRepoStatus(t *testing.T) {
	ts := newTestServer(t)
	ts.svc.On("RepoStatus", mock.Anything, "/src/calendar").Return("On branch main", nil)

	rr := ts.do(http.MethodGet, "/v1/git/repo-status?repoPath=/src/calendar", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "On branch main", rr.Body.String())
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/plain")

	rr = ts.do(http.MethodGet, "/v1/git/repo-status", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGithubCommits(t *testing.T) {
	ts := newTestServer(t)
	ts.svc.On("SyncRemoteCommits", mock.Anything, "gho_token", "ada/calendar").Return([]model.Commit{{Hash: "a1"}}, nil)

	rr := ts.do(http.MethodPost, "/v1/git/github-commits", `{"repo":"ada/calendar"}`)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = ts.do(http.MethodPost, "/v1/git/github-commits", `{"repo":"calendar"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGithubCommits_UpstreamError(t *testing.T) {
	ts := newTestServer(t)
	ts.svc.On("SyncRemoteCommits", mock.Anything, "gho_token", "ada/gone").Return([]model.Commit(nil),
		&custom_errors.UpstreamError{Status: 404, Message: "Not Found"})

	rr := ts.do(http.MethodPost, "/v1/git/github-commits", `{"repo":"ada/gone"}`)

	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.Equal(t, "upstream API error: 404 Not Found", decodeBody(t, rr)["error"])
}

func TestGenerateCommitSummary(t *testing.T) {
	ts := newTestServer(t)
	ts.svc.On("GenerateCommitSummary", mock.Anything, int64(5), "calendar").
		Return(model.Commit{ID: 5, GeneratedSummary: model.StringPtr("### WHAT CHANGED")}, nil)

	rr := ts.do(http.MethodPost, "/v1/git/generate-commit-summary", `{"commitId":5,"repoContext":"calendar"}`)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "### WHAT CHANGED", decodeBody(t, rr)["generatedSummary"])
}

func TestGenerateCommitSummary_InvalidID(t *testing.T) {
	ts := newTestServer(t)

	for _, body := range []string{`{"commitId":0}`, `{"commitId":-3}`, `{"commitId":1.5}`, `{"commitId":"abc"}`, `{}`} {
		rr := ts.do(http.MethodPost, "/v1/git/generate-commit-summary", body)
		assert.Equal(t, http.StatusBadRequest, rr.Code, body)
	}
	ts.svc.AssertNotCalled(t, "GenerateCommitSummary", mock.Anything, mock.Anything, mock.Anything)
}

func TestGenerateCommitSummary_ErrorKinds(t *testing.T) {
	ts := newTestServer(t)
	ts.svc.On("GenerateCommitSummary", mock.Anything, int64(404), "").
		Return(model.Commit{}, &custom_errors.NotFoundError{Resource: "Commit", ID: int64(404)})
	ts.svc.On("GenerateCommitSummary", mock.Anything, int64(412), "").
		Return(model.Commit{}, &custom_errors.PreconditionError{Message: "No diff information available for commit abc"})

	rr := ts.do(http.MethodPost, "/v1/git/generate-commit-summary", `{"commitId":404}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = ts.do(http.MethodPost, "/v1/git/generate-commit-summary", `{"commitId":412}`)
	assert.Equal(t, http.StatusPreconditionFailed, rr.Code)
	assert.Equal(t, "No diff information available for commit abc", decodeBody(t, rr)["error"])
}

func TestGenerateDailySummary(t *testing.T) {
	ts := newTestServer(t)
	ts.svc.On("GenerateDailySummary", mock.Anything, "2024-01-02", "ada/calendar", true).
		Return(syncer.DailySummaryResult{Text: "## SUMMARY OF CHANGES"}, nil)

	rr := ts.do(http.MethodPost, "/v1/git/generate-daily-summary", `{"date":"2024-01-02","repoFullName":"ada/calendar","force":true}`)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"text":"## SUMMARY OF CHANGES"}`, rr.Body.String())
}

func TestGenerateDailySummary_Validation(t *testing.T) {
	ts := newTestServer(t)

	bodies := []string{
		`{"date":"2024-13-01","repoFullName":"ada/calendar"}`,
		`{"date":"02/01/2024","repoFullName":"ada/calendar"}`,
		`{"date":"2024-01-02","repoFullName":"calendar"}`,
		`{"date":"2024-01-02","repoFullName":"ada/cal/endar"}`,
		`{"repoFullName":"ada/calendar"}`,
		`not json`,
	}
	for _, body := range bodies {
		rr := ts.do(http.MethodPost, "/v1/git/generate-daily-summary", body)
		assert.Equal(t, http.StatusBadRequest, rr.Code, body)
	}
	ts.svc.AssertNotCalled(t, "GenerateDailySummary", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGetDailySummary(t *testing.T) {
	ts := newTestServer(t)
	ts.svc.On("GetDailySummary", mock.Anything, "2024-01-02", "ada/calendar").Return(&syncer.DailySummaryResult{Text: "cached"}, nil)
	ts.svc.On("GetDailySummary", mock.Anything, "2024-01-03", "ada/calendar").Return((*syncer.DailySummaryResult)(nil), nil)

	rr := ts.do(http.MethodGet, "/v1/git/daily-summary?date=2024-01-02&repoFullName=ada/calendar", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"text":"cached"}`, rr.Body.String())

	rr = ts.do(http.MethodGet, "/v1/git/daily-summary?date=2024-01-03&repoFullName=ada/calendar", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"exists":false}`, rr.Body.String())

	rr = ts.do(http.MethodGet, "/v1/git/daily-summary?date=yesterday&repoFullName=ada/calendar", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGenerate(t *testing.T) {
	ts := newTestServer(t)
	raw := map[string]any{"content": []any{map[string]any{"type": "text", "text": "hello"}}}
	ts.svc.On("Generate", mock.Anything, "say hi").Return(raw)

	rr := ts.do(http.MethodPost, "/v1/llm/generate", `{"prompt":"say hi"}`)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"content":[{"type":"text","text":"hello"}]}`, rr.Body.String())
}

func TestNotionRoutes(t *testing.T) {
	ts := newTestServer(t)
	ts.notion.On("SyncDailySummary", mock.Anything, "2024-01-02", "ada/calendar", "text").
		Return(&notion.SyncResult{Success: true, Action: "created", PageID: "p1"}, nil)
	ts.notion.On("DatabaseSchema", mock.Anything).
		Return((*notion.Schema)(nil), &custom_errors.ConfigError{Key: "NOTION_API_KEY", Message: "Notion integration is not configured"})

	rr := ts.do(http.MethodPost, "/v1/notion/sync-daily-summary", `{"date":"2024-01-02","repoFullName":"ada/calendar","summary":"text"}`)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "p1", decodeBody(t, rr)["pageId"])

	rr = ts.do(http.MethodGet, "/v1/notion/database-schema", "")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestUnexpectedErrorIsHidden(t *testing.T) {
	ts := newTestServer(t)
	ts.svc.On("ListRepositories", mock.Anything, "gho_token").Return([]string(nil), assert.AnError)

	rr := ts.do(http.MethodGet, "/v1/git/user-repos", "")

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "Internal server error", decodeBody(t, rr)["error"])
}
