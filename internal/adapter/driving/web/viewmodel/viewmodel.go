// Package viewmodel defines presentation-ready structs for templ components.
// View models decouple template rendering from domain model types.
package viewmodel

// IssueViewModel holds presentation-ready data for a single issue card.
type IssueViewModel struct {
	Severity        string // info, warning or critical
	SeverityLabel   string // upper-cased badge text
	SeverityClass   string // severity-info, severity-warning or severity-critical
	Title           string
	Description     string
	DescriptionHTML string
}

// CopyButtonViewModel holds presentation data for one copy control.
type CopyButtonViewModel struct {
	Target string // original or refactored
	Label  string
	Copied bool
	Path   string // computed: /app/copy/{target}
	Source string // selector of the element holding the text to copy
}

// ReviewPanelViewModel holds everything the results pane renders.
type ReviewPanelViewModel struct {
	Loading     bool
	HasOutput   bool
	Advisory    string
	HasResult   bool
	IsError     bool
	Summary     string
	SummaryHTML string
	Issues      []IssueViewModel

	// Refactor panel; HasRefactor false means the panel is not rendered.
	HasRefactor        bool
	RefactoredCode     string
	RefactoredCodeHTML string // highlighted and line numbered
	CopyRefactored     CopyButtonViewModel
}

// ConsoleViewModel holds all data needed to render the console page.
type ConsoleViewModel struct {
	Code         string
	Loading      bool
	ActionLabel  string
	CopyOriginal CopyButtonViewModel
	Panel        ReviewPanelViewModel
}
