// internal/syncer/metrics.go
package syncer

import (
	"regexp"
	"strings"

	"gibwerk/internal/model"
	"gibwerk/internal/prompts"
)

// Changed declaration lines: JS/TS functions and arrow consts, classes,
// Python defs and Go funcs.
var declarationPattern = regexp.MustCompile(`(?m)^[+-]\s*(function|func\s|const\s+\w+\s+=\s+\(|class\s+\w+|def\s+\w+)`)

var fileHeaderPattern = regexp.MustCompile(`(?m)^diff --git`)

// ChangedLines counts lines of diff starting with '+' or '-'. File header
// lines (+++ / ---) are counted too.
func ChangedLines(diff string) int {
	n := 0
	for _, line := range strings.Split(diff, "\n") {
		if strings.HasPrefix(line, "+") || strings.HasPrefix(line, "-") {
			n++
		}
	}
	return n
}

// Complexity is a rough score: 2 per file touched plus 3 per changed declaration.
func Complexity(diff string) int {
	files := len(fileHeaderPattern.FindAllStringIndex(diff, -1))
	decls := len(declarationPattern.FindAllStringIndex(diff, -1))
	return files*2 + decls*3
}

// DayMetrics aggregates the metrics of one day's commits. Commits without a
// diff count toward totals and authors only.
func DayMetrics(commits []model.Commit) prompts.Metrics {
	authors := make(map[string]struct{}, len(commits))
	m := prompts.Metrics{TotalCommits: len(commits)}
	for _, c := range commits {
		authors[c.Author] = struct{}{}
		if c.Diff == nil {
			continue
		}
		m.LinesChanged += ChangedLines(*c.Diff)
		m.ComplexityScore += Complexity(*c.Diff)
	}
	m.UniqueAuthors = len(authors)
	return m
}
