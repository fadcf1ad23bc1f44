package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-autopilot/internal/pipeline"
	"github.com/jonathan/job-autopilot/internal/selection"
)

var (
	enrichLimit     int
	checkLinksLimit int
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Fetch new listings from Platsbanken and the configured feeds",
	RunE: func(_ *cobra.Command, _ []string) error {
		return withApp(func(ctx context.Context, a *app) error {
			res, err := a.svc.Scrape(ctx)
			if err != nil {
				return err
			}
			a.printer.PrintScrape(res)
			return nil
		})
	},
}

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Look up contact emails for listings that have none",
	RunE: func(_ *cobra.Command, _ []string) error {
		return withApp(func(ctx context.Context, a *app) error {
			res, err := a.svc.Enrich(ctx, enrichLimit)
			if err != nil {
				return err
			}
			a.printer.PrintEnrich(res)
			return nil
		})
	},
}

var checkLinksCmd = &cobra.Command{
	Use:   "check-links",
	Short: "Mark listings whose ad page is gone as stale",
	RunE: func(_ *cobra.Command, _ []string) error {
		return withApp(func(ctx context.Context, a *app) error {
			res, err := a.svc.CheckLinks(ctx, checkLinksLimit)
			if err != nil {
				return err
			}
			a.printer.PrintLinkCheck(res.Checked, res.Stale)
			return nil
		})
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Scrape, show the counters and the next job",
	RunE: func(_ *cobra.Command, _ []string) error {
		return withApp(func(ctx context.Context, a *app) error {
			res, err := a.svc.Run(ctx, func(e pipeline.ProgressEvent) {
				fmt.Printf("[%s] %s\n", e.Step, e.Message)
			})
			if res != nil {
				printRun(a, res)
			}
			return err
		})
	},
}

func printRun(a *app, res *pipeline.RunResult) {
	if res.Scrape != nil {
		a.printer.PrintScrape(res.Scrape)
	}
	a.printer.PrintStats(res.Stats)
	if res.Stats != nil {
		a.printer.PrintJob(res.Next)
	}
}

func init() {
	enrichCmd.Flags().IntVar(&enrichLimit, "limit", selection.DefaultEnrichLimit, "Maximum listings to enrich")
	checkLinksCmd.Flags().IntVar(&checkLinksLimit, "limit", pipeline.DefaultLinkCheckLimit, "Maximum listings to check")

	rootCmd.AddCommand(scrapeCmd, enrichCmd, checkLinksCmd, runCmd)
}
