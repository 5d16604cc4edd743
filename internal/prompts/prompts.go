// internal/prompts/prompts.go
package prompts

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gibwerk/internal/model"
)

const unknownLines = "unknown"

// DigestEntry is the per-commit record embedded in the daily prompt.
type DigestEntry struct {
	Hash             string `json:"hash"`
	Author           string `json:"author"`
	Message          string `json:"message"`
	Summary          string `json:"summary"`
	GeneratedSummary string `json:"generatedSummary"`
	LinesChanged     any    `json:"linesChanged"` // int, or "unknown" without a diff
}

// Metrics are the day-level numbers handed to the model.
type Metrics struct {
	TotalCommits    int
	UniqueAuthors   int
	LinesChanged    int
	ComplexityScore int
}

// CommitDigest condenses commits for the daily prompt. changedLines counts the
// changed lines of a diff.
func CommitDigest(commits []model.Commit, changedLines func(diff string) int) []DigestEntry {
	digest := make([]DigestEntry, 0, len(commits))
	for _, c := range commits {
		entry := DigestEntry{
			Hash:         shortHash(c.Hash),
			Author:       c.Author,
			Message:      c.Message,
			LinesChanged: unknownLines,
		}
		if c.Summary != nil {
			entry.Summary = *c.Summary
		}
		if c.GeneratedSummary != nil {
			entry.GeneratedSummary = *c.GeneratedSummary
		}
		if c.Diff != nil {
			entry.LinesChanged = changedLines(*c.Diff)
		}
		digest = append(digest, entry)
	}
	return digest
}

// CommitSummary builds the prompt for a single commit. The commit must carry a diff.
func CommitSummary(repoName string, c model.Commit) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are summarizing a git commit for the %q project for a Product Manager or Lead Developer.\n\n", repoName)
	fmt.Fprintf(&b, "Commit message: %s\n", c.Message)
	fmt.Fprintf(&b, "Commit author: %s\n", c.Author)
	fmt.Fprintf(&b, "Commit date: %s\n\n", c.Date.UTC().Format(time.RFC3339))
	b.WriteString("Diff:\n")
	if c.Diff != nil {
		b.WriteString(*c.Diff)
	}
	b.WriteString("\n\n")
	b.WriteString(commitSections)
	b.WriteString("\n\n")
	b.WriteString(formattingRules)
	b.WriteString("\n\n")
	b.WriteString(commitStyle)
	b.WriteString("\n\n")
	b.WriteString(commitExample)
	b.WriteString("\n")
	return b.String()
}

// DailySummary builds the prompt for all commits of one repository on date.
func DailySummary(date, repo string, digest []DigestEntry, m Metrics) string {
	data, err := json.MarshalIndent(digest, "", "  ")
	if err != nil {
		data = []byte("[]")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are creating a daily summary of git activity for %s in repository %s for a Product Manager or Lead Developer.\n\n", date, repo)
	b.WriteString("Here are the commits from that day:\n\n")
	b.Write(data)
	b.WriteString("\n\nAdditional metrics:\n")
	fmt.Fprintf(&b, "- Total commits: %d\n", m.TotalCommits)
	fmt.Fprintf(&b, "- Unique contributors: %d\n", m.UniqueAuthors)
	fmt.Fprintf(&b, "- Estimated lines changed: %d\n", m.LinesChanged)
	fmt.Fprintf(&b, "- Complexity score: %d (higher means more complex changes)\n\n", m.ComplexityScore)
	b.WriteString(dailySections)
	b.WriteString("\n\n")
	b.WriteString(formattingRules)
	b.WriteString("\n10. For subsection titles, use ### (smaller headings)\n\n")
	b.WriteString(dailyExample)
	b.WriteString("\n")
	return b.String()
}

func shortHash(hash string) string {
	if len(hash) > 7 {
		return hash[:7]
	}
	return hash
}
