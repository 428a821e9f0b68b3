// Reviewctl sends code to an AI Code Reviewer gateway and prints the review.
//
// Usage:
//
//	reviewctl review main.go          # review a file
//	cat main.go | reviewctl review    # review stdin
//	reviewctl review --json main.go   # structured output
//	reviewctl health                  # check the gateway is up
package main

import (
	"os"

	"github.com/ericfisherdev/aireviewer/internal/adapter/driving/cli"
)

func main() {
	os.Exit(cli.Run())
}
