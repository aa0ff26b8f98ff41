package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"inlet/internal/status"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			client := &http.Client{Timeout: 5 * time.Second}
			url := fmt.Sprintf("http://%s/api/status", cfg.Paths.APIBind)
			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, url, nil)
			if err != nil {
				return err
			}
			resp, err := client.Do(req)
			if err != nil {
				return fmt.Errorf("connect to daemon at %s: %w (is inletd running?)", cfg.Paths.APIBind, err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("daemon returned status %d", resp.StatusCode)
			}

			var snap status.Snapshot
			if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
				return fmt.Errorf("decode status: %w", err)
			}

			out := cmd.OutOrStdout()
			rows := [][]string{
				{"started", snap.StartedAt.Local().Format(time.DateTime)},
				{"uptime", time.Since(snap.StartedAt).Round(time.Second).String()},
				{"watcher", yesNo(snap.WatcherEnabled)},
				{"meetings", yesNo(snap.MeetingsEnabled)},
				{"mirror", yesNo(snap.MirrorEnabled)},
				{"files processed", fmt.Sprintf("%d", snap.FilesProcessed)},
				{"files failed", fmt.Sprintf("%d", snap.FilesFailed)},
				{"transcripts saved", fmt.Sprintf("%d", snap.TranscriptsSaved)},
			}
			if snap.LastActivity != nil {
				rows = append(rows, []string{"last activity", snap.LastActivity.Local().Format(time.DateTime)})
			}
			if snap.LastMeetingPoll != nil {
				rows = append(rows, []string{"last meeting poll", snap.LastMeetingPoll.Local().Format(time.DateTime)})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Field", "Value"},
				rows,
				[]columnAlignment{alignLeft, alignLeft},
			))

			if len(snap.RecentErrors) > 0 {
				errRows := make([][]string, 0, len(snap.RecentErrors))
				for _, recorded := range snap.RecentErrors {
					errRows = append(errRows, []string{
						recorded.Timestamp.Local().Format(time.DateTime),
						recorded.Message,
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Time", "Error"},
					errRows,
					[]columnAlignment{alignLeft, alignLeft},
				))
			}
			return nil
		},
	}
}
