package main

import (
	"fmt"
	"log/slog"
	"time"

	"cloud.google.com/go/civil"
	"github.com/spf13/cobra"
)

func recurringCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recurring",
		Short: "Manage recurring drafts",
	}
	cmd.AddCommand(recurringRunCmd())
	return cmd
}

func recurringRunCmd() *cobra.Command {
	var dateFlag string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Generate the drafts of every rule due on or before a date",
		RunE: func(cmd *cobra.Command, _ []string) error {
			target := civil.DateOf(time.Now())
			if dateFlag != "" {
				parsed, err := civil.ParseDate(dateFlag)
				if err != nil {
					return fmt.Errorf("invalid --date %q: %w", dateFlag, err)
				}
				target = parsed
			}

			container, closeRepos, err := newContainer(cmd.Context(), cfg, false)
			if err != nil {
				return err
			}
			defer closeRepos()

			generated, err := container.Recurring.RunDue(cmd.Context(), target)
			if err != nil {
				return err
			}
			for _, instance := range generated {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", instance.RuleID, instance.ScheduledDate, instance.DraftTransactionID)
			}
			slog.Info("Recurring run finished", slog.String("target_date", target.String()), slog.Int("generated", len(generated)))
			return nil
		},
	}
	cmd.Flags().StringVar(&dateFlag, "date", "", "target date YYYY-MM-DD (default today)")
	return cmd
}
