package web

import (
	"strings"

	vm "github.com/ericfisherdev/aireviewer/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/aireviewer/internal/application"
	"github.com/ericfisherdev/aireviewer/internal/domain/model"
)

const (
	actionLabelIdle    = "Review Code"
	actionLabelLoading = "Reviewing..."
	copyLabel          = "Copy"
	copiedLabel        = "Copied!"

	// Elements static/app.js reads the copied text from.
	originalSource   = "#code"
	refactoredSource = "#refactored-source"
)

// toConsoleViewModel converts a console snapshot into the page view model.
func toConsoleViewModel(view application.ConsoleView) vm.ConsoleViewModel {
	label := actionLabelIdle
	if view.Loading() {
		label = actionLabelLoading
	}

	return vm.ConsoleViewModel{
		Code:         view.Code,
		Loading:      view.Loading(),
		ActionLabel:  label,
		CopyOriginal: toCopyButtonViewModel(model.CopyTargetOriginal, view.CopiedOriginal),
		Panel:        toReviewPanelViewModel(view),
	}
}

// toReviewPanelViewModel converts a console snapshot into the results pane
// view model. Issues keep the order the review returned them in.
func toReviewPanelViewModel(view application.ConsoleView) vm.ReviewPanelViewModel {
	panel := vm.ReviewPanelViewModel{
		Loading:   view.Loading(),
		HasOutput: view.HasOutput(),
		Advisory:  view.Advisory,
		Issues:    []vm.IssueViewModel{},
	}

	r := view.Result
	if r == nil {
		return panel
	}

	panel.HasResult = true
	panel.IsError = isFailedReview(*r)
	panel.Summary = r.Summary
	panel.SummaryHTML = RenderMarkdown(r.Summary)
	for _, is := range r.Issues {
		panel.Issues = append(panel.Issues, toIssueViewModel(is))
	}

	if r.HasRefactor() {
		panel.HasRefactor = true
		panel.RefactoredCode = r.RefactoredCode
		panel.RefactoredCodeHTML = HighlightCode(r.RefactoredCode)
		panel.CopyRefactored = toCopyButtonViewModel(model.CopyTargetRefactored, view.CopiedRefactored)
	}
	return panel
}

// toIssueViewModel converts a domain Issue to an IssueViewModel. Severities
// outside the known three render with the info treatment.
func toIssueViewModel(is model.Issue) vm.IssueViewModel {
	sev := model.NormalizeSeverity(string(is.Severity))
	return vm.IssueViewModel{
		Severity:        string(sev),
		SeverityLabel:   strings.ToUpper(string(sev)),
		SeverityClass:   "severity-" + string(sev),
		Title:           is.Title,
		Description:     is.Description,
		DescriptionHTML: RenderMarkdown(is.Description),
	}
}

func toCopyButtonViewModel(target model.CopyTarget, copied bool) vm.CopyButtonViewModel {
	label := copyLabel
	if copied {
		label = copiedLabel
	}
	source := originalSource
	if target == model.CopyTargetRefactored {
		source = refactoredSource
	}
	return vm.CopyButtonViewModel{
		Target: string(target),
		Label:  label,
		Copied: copied,
		Path:   "/app/copy/" + string(target),
		Source: source,
	}
}

func isFailedReview(r model.ReviewResult) bool {
	return r.Summary == application.ReviewErrorSummary &&
		len(r.Issues) == 1 &&
		r.Issues[0].Title == application.ReviewErrorTitle
}
