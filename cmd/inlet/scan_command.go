package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"inlet/internal/ledger"
	"inlet/internal/logging"
	"inlet/internal/watcher"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "List inbox files that would be picked up, without processing them",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			store, err := ledger.Open(cfg.Paths.LedgerPath, ledger.RetryOnEveryCycleUntilSuccess, logging.NewNop())
			if err != nil {
				return fmt.Errorf("open file ledger: %w", err)
			}
			defer store.Close()

			scanner := watcher.NewScanner(cfg.Paths.InboxDir, store, logging.NewNop())
			candidates, err := scanner.FindNew(cmd.Context())
			if err != nil {
				return fmt.Errorf("scan inbox: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(candidates) == 0 {
				fmt.Fprintln(out, "No new files in the inbox")
				return nil
			}

			rows := make([][]string, 0, len(candidates))
			for _, path := range candidates {
				size := "-"
				if info, err := os.Stat(path); err == nil {
					size = fmt.Sprintf("%d", info.Size())
				}
				display := path
				if rel, err := filepath.Rel(cfg.Paths.InboxDir, path); err == nil {
					display = rel
				}
				rows = append(rows, []string{display, size})
			}

			fmt.Fprintln(out, renderTable(
				[]string{"File", "Bytes"},
				rows,
				[]columnAlignment{alignLeft, alignRight},
			))
			fmt.Fprintf(out, "%d file(s) pending\n", len(candidates))
			return nil
		},
	}
}
