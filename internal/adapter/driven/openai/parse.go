package openai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"

	"github.com/ericfisherdev/aireviewer/internal/domain/model"
)

// reviewSchema describes the structured output requested from the model.
type reviewSchema struct {
	Summary        string        `json:"summary" jsonschema_description:"Short markdown overview of the code quality"`
	Issues         []issueSchema `json:"issues" jsonschema_description:"Problems found in the code ordered by importance"`
	RefactoredCode string        `json:"refactoredCode" jsonschema_description:"Improved version of the code or an empty string"`
}

type issueSchema struct {
	Severity    string `json:"severity" jsonschema:"enum=info,enum=warning,enum=critical"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// reviewPayload is the decoded model output. Pointer fields distinguish a
// missing value from an empty one.
type reviewPayload struct {
	Summary        *string        `json:"summary"`
	Issues         []issuePayload `json:"issues"`
	RefactoredCode *string        `json:"refactoredCode"`
}

type issuePayload struct {
	Severity    string  `json:"severity"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

func generateSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	return reflector.Reflect(&reviewSchema{})
}

// parseReview decodes the model's message content into a ReviewResult. Any
// deviation from the expected shape is reported as model.ErrMalformedReview.
func parseReview(content string) (model.ReviewResult, error) {
	content = stripCodeFence(strings.TrimSpace(content))
	if content == "" {
		return model.ReviewResult{}, fmt.Errorf("%w: empty response", model.ErrMalformedReview)
	}

	var p reviewPayload
	if err := json.Unmarshal([]byte(content), &p); err != nil {
		return model.ReviewResult{}, fmt.Errorf("%w: %w", model.ErrMalformedReview, err)
	}

	if p.Summary == nil {
		return model.ReviewResult{}, fmt.Errorf("%w: missing summary", model.ErrMalformedReview)
	}

	issues := make([]model.Issue, 0, len(p.Issues))
	for i, is := range p.Issues {
		if is.Title == nil || strings.TrimSpace(*is.Title) == "" {
			return model.ReviewResult{}, fmt.Errorf("%w: issue %d has no title", model.ErrMalformedReview, i)
		}
		description := ""
		if is.Description != nil {
			description = *is.Description
		}
		issues = append(issues, model.Issue{
			Severity:    model.NormalizeSeverity(is.Severity),
			Title:       *is.Title,
			Description: description,
		})
	}

	result := model.ReviewResult{
		Summary: *p.Summary,
		Issues:  issues,
	}
	if p.RefactoredCode != nil {
		result.RefactoredCode = *p.RefactoredCode
	}
	return result, nil
}

// stripCodeFence removes a surrounding markdown code fence, which some
// OpenAI-compatible servers add even when asked for bare JSON.
func stripCodeFence(content string) string {
	if !strings.HasPrefix(content, "```") {
		return content
	}
	lines := strings.Split(content, "\n")
	if len(lines) < 2 {
		return content
	}
	end := len(lines)
	if strings.TrimSpace(lines[end-1]) == "```" {
		end--
	}
	return strings.TrimSpace(strings.Join(lines[1:end], "\n"))
}
