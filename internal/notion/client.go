// internal/notion/client.go
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	custom_errors "gibwerk/internal/errors"
)

const (
	DefaultBaseURL = "https://api.notion.com/v1/"
	apiVersion     = "2022-06-28"

	// Notion rejects rich text items longer than this.
	maxTextLength = 2000

	dateProperty    = "Date of Commit"
	repoProperty    = "Repository"
	titleProperty   = "Name"
	summaryProperty = "Summary"
)

// SyncResult reports what SyncDailySummary did.
type SyncResult struct {
	Success bool   `json:"success"`
	Action  string `json:"action"` // "created" or "updated"
	PageID  string `json:"pageId"`
	Message string `json:"message"`
}

// Schema is the property layout of the summaries database.
type Schema struct {
	ID         string                     `json:"id"`
	Properties map[string]json.RawMessage `json:"properties"`
}

// Client writes daily summaries into a Notion database.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	databaseID string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates a Notion client. An empty apiKey or databaseID yields a
// client whose calls fail with a ConfigError.
func NewClient(httpClient *http.Client, baseURL, apiKey, databaseID string, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	logger = logger.With("component", "NotionClient")
	if apiKey == "" || databaseID == "" {
		logger.Warn("Notion integration is disabled", "api_key_set", apiKey != "", "database_id_set", databaseID != "")
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
		databaseID: databaseID,
		limiter:    rate.NewLimiter(rate.Limit(3), 3), // Notion allows ~3 requests per second
		logger:     logger,
	}
}

func (c *Client) configured() error {
	if c.apiKey == "" {
		return &custom_errors.ConfigError{Key: "NOTION_API_KEY", Message: "Notion integration is not configured"}
	}
	if c.databaseID == "" {
		return &custom_errors.ConfigError{Key: "NOTION_DATABASE_ID", Message: "Notion integration is not configured"}
	}
	return nil
}

// DatabaseSchema returns the properties of the configured database.
func (c *Client) DatabaseSchema(ctx context.Context) (*Schema, error) {
	if err := c.configured(); err != nil {
		return nil, err
	}
	var schema Schema
	if err := c.do(ctx, http.MethodGet, "databases/"+c.databaseID, nil, &schema); err != nil {
		return nil, fmt.Errorf("failed to get Notion database schema: %w", err)
	}
	return &schema, nil
}

// SyncDailySummary writes summary to the page for date and repoFullName,
// creating the page when none exists.
func (c *Client) SyncDailySummary(ctx context.Context, date, repoFullName, summary string) (*SyncResult, error) {
	if err := c.configured(); err != nil {
		return nil, err
	}
	logger := c.logger.With("date", date, "repository", repoFullName)

	pageID, err := c.findPage(ctx, date, repoFullName)
	if err != nil {
		return nil, fmt.Errorf("failed to sync with Notion: %w", err)
	}

	if pageID != "" {
		if err := c.updatePage(ctx, pageID, summary); err != nil {
			return nil, fmt.Errorf("failed to sync with Notion: %w", err)
		}
		logger.Info("Updated Notion page", "page_id", pageID)
		return &SyncResult{Success: true, Action: "updated", PageID: pageID, Message: "Summary updated in Notion"}, nil
	}

	pageID, err = c.createPage(ctx, date, repoFullName, summary)
	if err != nil {
		return nil, fmt.Errorf("failed to sync with Notion: %w", err)
	}
	logger.Info("Created Notion page", "page_id", pageID)
	return &SyncResult{Success: true, Action: "created", PageID: pageID, Message: "Summary created in Notion"}, nil
}

func (c *Client) findPage(ctx context.Context, date, repoFullName string) (string, error) {
	query := map[string]any{
		"filter": map[string]any{
			"and": []any{
				map[string]any{"property": dateProperty, "date": map[string]any{"equals": date}},
				map[string]any{"property": repoProperty, "rich_text": map[string]any{"equals": repoFullName}},
			},
		},
	}
	var resp struct {
		Results []struct {
			ID string `json:"id"`
		} `json:"results"`
	}
	if err := c.do(ctx, http.MethodPost, "databases/"+c.databaseID+"/query", query, &resp); err != nil {
		return "", err
	}
	if len(resp.Results) == 0 {
		return "", nil
	}
	return resp.Results[0].ID, nil
}

func (c *Client) createPage(ctx context.Context, date, repoFullName, summary string) (string, error) {
	page := map[string]any{
		"parent": map[string]any{"database_id": c.databaseID},
		"properties": map[string]any{
			dateProperty:    map[string]any{"date": map[string]any{"start": date}},
			repoProperty:    map[string]any{"rich_text": richText(repoFullName)},
			titleProperty:   map[string]any{"title": richText(fmt.Sprintf("Daily Summary for %s on %s", repoFullName, date))},
			summaryProperty: map[string]any{"rich_text": richText(Truncate(summary))},
		},
		"children": []any{paragraph(summary)},
	}
	var resp struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "pages", page, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

func (c *Client) updatePage(ctx context.Context, pageID, summary string) error {
	props := map[string]any{
		"properties": map[string]any{
			summaryProperty: map[string]any{"rich_text": richText(Truncate(summary))},
		},
	}
	if err := c.do(ctx, http.MethodPatch, "pages/"+pageID, props, nil); err != nil {
		return err
	}
	children := map[string]any{"children": []any{paragraph(summary)}}
	return c.do(ctx, http.MethodPatch, "blocks/"+pageID+"/children", children, nil)
}

// Truncate shortens s to the rich text limit, marking the cut with "...".
func Truncate(s string) string {
	r := []rune(s)
	if len(r) <= maxTextLength {
		return s
	}
	return string(r[:maxTextLength-3]) + "..."
}

func richText(s string) []any {
	return []any{map[string]any{"type": "text", "text": map[string]any{"content": s}}}
}

// paragraph carries the full summary, split into items Notion accepts.
func paragraph(s string) map[string]any {
	var items []any
	r := []rune(s)
	for len(r) > maxTextLength {
		items = append(items, richText(string(r[:maxTextLength]))[0])
		r = r[maxTextLength:]
	}
	items = append(items, richText(string(r))[0])
	return map[string]any{
		"object":    "block",
		"type":      "paragraph",
		"paragraph": map[string]any{"rich_text": items},
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Notion-Version", apiVersion)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &custom_errors.UpstreamError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return &custom_errors.UpstreamError{Status: resp.StatusCode, Message: apiErr.Message}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
