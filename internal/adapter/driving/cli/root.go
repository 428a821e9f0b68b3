// Package cli implements reviewctl, the terminal client for the review
// gateway.
package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/aireviewer/internal/config"
)

const version = "0.1.0"

// Exit codes.
const (
	ExitSuccess      = 0
	ExitReviewFailed = 1
	ExitUsageError   = 2
)

const defaultTimeout = 2 * time.Minute

// app carries the streams and flag values for one invocation.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	apiURL  string
	timeout time.Duration
	raw     bool
	asJSON  bool
	width   int

	// exitCode is set by command handlers to control the process exit code.
	exitCode int
}

// Run executes reviewctl with the process arguments and returns an exit code.
// The gateway URL defaults to AIREVIEWER_API_URL.
func Run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitUsageError
	}
	return run(os.Args[1:], cfg.APIURL, os.Stdin, os.Stdout, os.Stderr)
}

func run(args []string, defaultAPIURL string, stdin io.Reader, stdout, stderr io.Writer) int {
	a := &app{
		stdin:    stdin,
		stdout:   stdout,
		stderr:   stderr,
		exitCode: ExitSuccess,
	}

	root := a.rootCmd(defaultAPIURL)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.Execute(); err != nil {
		// Cobra already prints the error
		return ExitUsageError
	}
	return a.exitCode
}

func (a *app) rootCmd(defaultAPIURL string) *cobra.Command {
	root := &cobra.Command{
		Use:           "reviewctl",
		Short:         "AI code review from the terminal",
		Long:          "reviewctl sends code to an AI Code Reviewer gateway and prints the review.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.PersistentFlags().StringVar(&a.apiURL, "api-url", defaultAPIURL, "Review gateway base URL")
	root.PersistentFlags().DurationVar(&a.timeout, "timeout", defaultTimeout, "Request timeout")

	root.AddCommand(a.reviewCmd())
	root.AddCommand(a.healthCmd())
	root.AddCommand(a.versionCmd())
	return root
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print reviewctl version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.stdout, "reviewctl version %s\n", version)
		},
	}
}
