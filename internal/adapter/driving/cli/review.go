package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/aireviewer/internal/adapter/driven/gatewayclient"
	"github.com/ericfisherdev/aireviewer/internal/application"
	"github.com/ericfisherdev/aireviewer/internal/domain/model"
)

const defaultWidth = 100

func (a *app) reviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review [file]",
		Short: "Review a file, or stdin when no file (or -) is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.raw && a.asJSON {
				return fmt.Errorf("--raw and --json are mutually exclusive")
			}

			code, err := a.readCode(args)
			if err != nil {
				return err
			}
			a.runReview(cmd.Context(), code)
			return nil
		},
	}

	cmd.Flags().BoolVar(&a.raw, "raw", false, "Print the review as plain markdown")
	cmd.Flags().BoolVar(&a.asJSON, "json", false, "Print the structured review as JSON")
	cmd.Flags().IntVar(&a.width, "width", defaultWidth, "Word wrap width for rendered output")
	return cmd
}

func (a *app) readCode(args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		b, err := io.ReadAll(a.stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(b), nil
	}

	b, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", args[0], err)
	}
	return string(b), nil
}

// runReview drives a console through one review and prints what it settled
// on. A failed review still prints the console's synthesized error review.
func (a *app) runReview(ctx context.Context, code string) {
	gw := gatewayclient.NewClient(a.apiURL, &http.Client{Timeout: a.timeout})
	console := application.NewConsole(application.WithInitialCode(code))

	reviewErr := console.Review(ctx, gw)
	view := console.Snapshot()

	if view.Advisory != "" {
		fmt.Fprintln(a.stderr, view.Advisory)
		a.exitCode = ExitUsageError
		return
	}

	if reviewErr != nil {
		fmt.Fprintf(a.stderr, "Error: %v\n", reviewErr)
		a.exitCode = ExitReviewFailed
	}
	if view.Result == nil {
		return
	}

	if err := a.writeResult(*view.Result); err != nil {
		fmt.Fprintf(a.stderr, "Error writing output: %v\n", err)
		a.exitCode = ExitReviewFailed
	}
}

func (a *app) writeResult(r model.ReviewResult) error {
	switch {
	case a.asJSON:
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(toJSONReview(r))
	case a.raw:
		_, err := io.WriteString(a.stdout, r.Markdown())
		return err
	default:
		_, err := fmt.Fprintln(a.stdout, renderMarkdown(r.Markdown(), a.width))
		return err
	}
}

type jsonIssue struct {
	Severity    string `json:"severity"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type jsonReview struct {
	Summary        string      `json:"summary"`
	Issues         []jsonIssue `json:"issues"`
	RefactoredCode string      `json:"refactoredCode"`
}

func toJSONReview(r model.ReviewResult) jsonReview {
	issues := make([]jsonIssue, 0, len(r.Issues))
	for _, is := range r.Issues {
		issues = append(issues, jsonIssue{
			Severity:    string(is.Severity),
			Title:       is.Title,
			Description: is.Description,
		})
	}
	return jsonReview{
		Summary:        r.Summary,
		Issues:         issues,
		RefactoredCode: r.RefactoredCode,
	}
}
