package model

import (
	"fmt"
	"strings"
)

// Issue is a single finding reported by the review provider.
type Issue struct {
	Severity    Severity
	Title       string
	Description string
}

// ReviewResult is the structured review returned for one submitted snippet.
type ReviewResult struct {
	Summary        string
	Issues         []Issue
	RefactoredCode string
}

// HasRefactor reports whether the provider suggested replacement code.
func (r ReviewResult) HasRefactor() bool {
	return strings.TrimSpace(r.RefactoredCode) != ""
}

// Normalized returns a copy with every severity mapped to a known value and a
// non-nil Issues slice. Order is preserved.
func (r ReviewResult) Normalized() ReviewResult {
	issues := make([]Issue, 0, len(r.Issues))
	for _, is := range r.Issues {
		is.Severity = NormalizeSeverity(string(is.Severity))
		issues = append(issues, is)
	}
	r.Issues = issues
	return r
}

// Markdown renders the result in the plain-text form served to legacy clients.
func (r ReviewResult) Markdown() string {
	var b strings.Builder

	if s := strings.TrimSpace(r.Summary); s != "" {
		b.WriteString(s)
		b.WriteString("\n\n")
	}

	if len(r.Issues) > 0 {
		b.WriteString("## Issues\n\n")
		for _, is := range r.Issues {
			fmt.Fprintf(&b, "- **[%s] %s**", strings.ToUpper(string(NormalizeSeverity(string(is.Severity)))), is.Title)
			if d := strings.TrimSpace(is.Description); d != "" {
				b.WriteString(": ")
				b.WriteString(d)
			}
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}

	if r.HasRefactor() {
		b.WriteString("## Suggested Refactor\n\n```\n")
		b.WriteString(strings.TrimRight(r.RefactoredCode, "\n"))
		b.WriteString("\n```\n")
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}
