package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-autopilot/internal/pipeline"
)

var (
	letterJobID string
	draftJobID  string
	draftTo     string
	draftLetter string
)

var nextCmd = &cobra.Command{
	Use:   "next",
	Short: "Show the next job to apply to",
	RunE: func(_ *cobra.Command, _ []string) error {
		return withApp(func(ctx context.Context, a *app) error {
			job, err := a.svc.NextJob(ctx)
			if err != nil {
				return err
			}
			a.printer.PrintJob(job)
			return nil
		})
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show listing and application counters",
	RunE: func(_ *cobra.Command, _ []string) error {
		return withApp(func(ctx context.Context, a *app) error {
			stats, err := a.svc.Stats(ctx)
			if err != nil {
				return err
			}
			a.printer.PrintStats(stats)
			return nil
		})
	},
}

var letterCmd = &cobra.Command{
	Use:   "letter",
	Short: "Write a cover letter for a job",
	RunE: func(_ *cobra.Command, _ []string) error {
		return withApp(func(ctx context.Context, a *app) error {
			job, err := a.svc.GetJob(ctx, letterJobID)
			if err != nil {
				return err
			}
			res, err := a.svc.GenerateLetter(ctx, job.ID)
			if err != nil {
				return err
			}
			a.printer.PrintLetter(job, res.CoverLetter)
			return nil
		})
	},
}

var draftCmd = &cobra.Command{
	Use:   "draft",
	Short: "File an application draft for a job in the mailbox",
	Long:  `Compose the pitch email with the cover letter PDF and the matching CV attached, and save it in the Drafts mailbox. Without --to the listing's contact email is used.`,
	RunE: func(_ *cobra.Command, _ []string) error {
		return withApp(func(ctx context.Context, a *app) error {
			res, err := a.svc.CreateDraft(ctx, draftJobID, pipeline.DraftRequest{
				CoverLetter: draftLetter,
				ToEmail:     draftTo,
			})
			if res != nil {
				a.printer.PrintDraft(res)
			}
			if err != nil {
				return err
			}
			if res.NeedsEmail {
				return fmt.Errorf("job %s has no contact email, pass --to", draftJobID)
			}
			return nil
		})
	},
}

func init() {
	letterCmd.Flags().StringVar(&letterJobID, "job", "", "Job ID")
	_ = letterCmd.MarkFlagRequired("job")

	draftCmd.Flags().StringVar(&draftJobID, "job", "", "Job ID")
	draftCmd.Flags().StringVar(&draftTo, "to", "", "Recipient email (default: the listing's contact)")
	draftCmd.Flags().StringVar(&draftLetter, "letter", "", "Cover letter text (default: generated)")
	_ = draftCmd.MarkFlagRequired("job")

	rootCmd.AddCommand(nextCmd, statsCmd, letterCmd, draftCmd)
}
