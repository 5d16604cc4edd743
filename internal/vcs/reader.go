// internal/vcs/reader.go
package vcs

import (
	"bufio"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gibwerk/internal/model"
)

// recordSeparator terminates each record in the log format. A commit body
// containing a line made of exactly this text splits that record in two.
const recordSeparator = "---"

// logFormat emits hash, author, epoch timestamp, subject and body, one per line.
const logFormat = "%H%n%an%n%at%n%s%n%b%n" + recordSeparator

// RepositoryLabel derives a repository label from the last segment of repoPath.
func RepositoryLabel(repoPath, fallback string) string {
	trimmed := strings.TrimRight(filepath.ToSlash(repoPath), "/")
	if trimmed == "" {
		return fallback
	}
	label := trimmed[strings.LastIndex(trimmed, "/")+1:]
	if label == "" || label == "." || label == ".." {
		return fallback
	}
	return label
}

// parseLog maps the output of `git log --pretty=format:<logFormat>` to commits,
// preserving the newest-first order of the log.
func parseLog(output string) []model.Commit {
	var (
		commits []model.Commit
		record  []string
	)

	flush := func() {
		if c, ok := parseRecord(record); ok {
			commits = append(commits, c)
		}
		record = record[:0]
	}

	scanner := bufio.NewScanner(strings.NewReader(output))
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == recordSeparator {
			flush()
			continue
		}
		record = append(record, line)
	}
	flush()

	return commits
}

func parseRecord(lines []string) (model.Commit, bool) {
	// Records after the first start with the blank line git emits between entries.
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	if len(lines) < 4 {
		return model.Commit{}, false
	}

	epoch, err := strconv.ParseInt(strings.TrimSpace(lines[2]), 10, 64)
	if err != nil {
		return model.Commit{}, false
	}

	c := model.Commit{
		Hash:    strings.TrimSpace(lines[0]),
		Author:  lines[1],
		Date:    time.Unix(epoch, 0).UTC(),
		Message: lines[3],
	}
	if body := strings.TrimSpace(strings.Join(lines[4:], "\n")); body != "" {
		c.Summary = model.StringPtr(body)
	}
	return c, true
}
