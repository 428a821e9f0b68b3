package openai

import (
	"strings"
)

const systemPrompt = `You are a senior software engineer performing a code review.

Review the code the user sends and respond with a single JSON object with these fields:
- "summary": a short markdown paragraph describing overall quality, style and performance.
- "issues": an ordered list of problems, most important first. Each issue has
  "severity" (one of "info", "warning", "critical"), a short "title" and a markdown "description"
  explaining the problem and how to fix it.
- "refactoredCode": an improved version of the complete code, or an empty string if no change is needed.

Use "critical" only for bugs, security holes and data loss; "warning" for likely defects,
performance problems and maintainability risks; "info" for style and minor suggestions.
Respond with the JSON object only.`

// buildUserPrompt wraps the submitted code in the review request sent to the model.
func buildUserPrompt(code string) string {
	var b strings.Builder
	b.Grow(len(code) + 64)
	b.WriteString("Review the following code.\n\n--- BEGIN CODE ---\n")
	b.WriteString(code)
	if !strings.HasSuffix(code, "\n") {
		b.WriteByte('\n')
	}
	b.WriteString("--- END CODE ---\n")
	return b.String()
}
