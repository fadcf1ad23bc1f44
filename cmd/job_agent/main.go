// Package main is the job-autopilot command line: the HTTP API server and
// the manual job search commands.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "job_agent",
	Short:         "Job search autopilot",
	Long:          "job_agent collects Platsbanken and RSS listings, picks the next job to apply to, writes cover letters and files application drafts.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
