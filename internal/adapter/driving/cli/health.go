package cli

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/aireviewer/internal/adapter/driven/gatewayclient"
)

func (a *app) healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the review gateway is running",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			gw := gatewayclient.NewClient(a.apiURL, &http.Client{Timeout: a.timeout})
			msg, err := gw.Health(cmd.Context())
			if err != nil {
				fmt.Fprintf(a.stderr, "Error: gateway at %s is not healthy: %v\n", a.apiURL, err)
				a.exitCode = ExitReviewFailed
				return
			}
			fmt.Fprintln(a.stdout, msg)
		},
	}
}
