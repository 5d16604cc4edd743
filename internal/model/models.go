// internal/model/models.go
package model

import (
	"strings"
	"time"
)

// Commit represents one version-control changeset.
// Nil pointer fields are unset: a nil Diff was never fetched and a nil
// GeneratedSummary was never generated.
type Commit struct {
	ID               int64     `json:"id"`
	Hash             string    `json:"hash"`
	Author           string    `json:"author"`
	Date             time.Time `json:"date"`
	Message          string    `json:"message"`
	Summary          *string   `json:"summary"`
	Diff             *string   `json:"diff"`
	GeneratedSummary *string   `json:"generatedSummary"`
	Repository       string    `json:"repository"`
}

// DailySummary is the cached narrative for all commits of one repository on one day.
type DailySummary struct {
	ID         int64     `json:"id"`
	Date       time.Time `json:"date"`
	Repository string    `json:"repository"`
	Summary    string    `json:"summary"`
	CreatedAt  time.Time `json:"createdAt"`
}

// DateLayout is the calendar day format used on the wire.
const DateLayout = "2006-01-02"

// DayBounds returns the closed interval covering the UTC calendar day of t.
// Both the generate and read paths key daily summaries on start.
func DayBounds(t time.Time) (start, end time.Time) {
	u := t.UTC()
	start = time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	end = start.Add(24*time.Hour - time.Nanosecond)
	return start, end
}

// SplitMessage splits a full commit message into its subject line and the
// trimmed remainder.
func SplitMessage(full string) (subject, body string) {
	subject, body, _ = strings.Cut(full, "\n")
	return strings.TrimSpace(subject), strings.TrimSpace(body)
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}
