package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"inlet/internal/config"
	"inlet/internal/ledger"
	"inlet/internal/logging"
)

func newLedgerCommand(ctx *commandContext) *cobra.Command {
	var meetingsLedger bool

	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Inspect the processed-item ledgers",
	}
	ledgerCmd.PersistentFlags().BoolVar(&meetingsLedger, "meetings", false, "Operate on the meeting ledger instead of the file ledger")

	ledgerCmd.AddCommand(newLedgerListCommand(ctx, &meetingsLedger))
	ledgerCmd.AddCommand(newLedgerClearCommand(ctx, &meetingsLedger))

	return ledgerCmd
}

func openSelectedLedger(cfg *config.Config, meetingsLedger bool) (*ledger.Store, error) {
	if meetingsLedger {
		return ledger.Open(cfg.Meetings.LedgerPath, ledger.RetryNeverOnceAttempted, logging.NewNop())
	}
	return ledger.Open(cfg.Paths.LedgerPath, ledger.RetryOnEveryCycleUntilSuccess, logging.NewNop())
}

func newLedgerListCommand(ctx *commandContext, meetingsLedger *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List recorded processing attempts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := openSelectedLedger(cfg, *meetingsLedger)
			if err != nil {
				return fmt.Errorf("open ledger: %w", err)
			}
			defer store.Close()

			entries, err := store.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("list ledger: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "Ledger is empty")
				return nil
			}

			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				rows = append(rows, []string{
					entry.Identity,
					entry.ProcessedAt.Local().Format(time.DateTime),
					yesNo(entry.Success),
					entry.Detail,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Identity", "Processed", "Success", "Detail"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
}

func newLedgerClearCommand(ctx *commandContext, meetingsLedger *bool) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove all ledger entries so items become eligible again",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("clearing the ledger makes every item eligible for reprocessing; re-run with --yes to confirm")
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := openSelectedLedger(cfg, *meetingsLedger)
			if err != nil {
				return fmt.Errorf("open ledger: %w", err)
			}
			defer store.Close()

			removed, err := store.Clear(cmd.Context())
			if err != nil {
				return fmt.Errorf("clear ledger: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d ledger entries\n", removed)
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm clearing the ledger")
	return cmd
}
