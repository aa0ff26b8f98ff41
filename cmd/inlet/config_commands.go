package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"inlet/internal/config"
)

func newConfigCommand() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigValidateCommand())
	configCmd.AddCommand(newConfigShowCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			}

			written, err := config.WriteSample(target)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", written)
			fmt.Fprintln(out, "Edit the file to set the inbox directory and credentials before starting inletd.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	return cmd
}

func newConfigValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "validate",
		Short:       "Validate configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Root().PersistentFlags().GetString("config")
			cfg, resolved, exists, err := config.Load(path)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", resolved)
			if !exists {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "show",
		Short:       "Show the effective configuration",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Root().PersistentFlags().GetString("config")
			cfg, resolved, exists, err := config.Load(path)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			rows := [][]string{
				{"config file", resolved},
				{"config file exists", yesNo(exists)},
				{"inbox dir", cfg.Paths.InboxDir},
				{"data dir", cfg.Paths.DataDir},
				{"file ledger", cfg.Paths.LedgerPath},
				{"api bind", cfg.Paths.APIBind},
				{"watcher enabled", yesNo(cfg.Watcher.Enabled)},
				{"watcher poll interval", fmt.Sprintf("%ds", cfg.Watcher.PollInterval)},
				{"watcher stable wait", fmt.Sprintf("%ds", cfg.Watcher.StableWait)},
				{"meetings enabled", yesNo(cfg.Meetings.Enabled)},
				{"meetings window", fmt.Sprintf("%dd", cfg.Meetings.WindowDays)},
				{"meetings poll interval", fmt.Sprintf("%ds", cfg.Meetings.PollInterval)},
				{"meetings ledger", cfg.Meetings.LedgerPath},
				{"storage bucket", valueOrDash(cfg.Storage.Bucket)},
				{"storage prefix", cfg.Storage.Prefix},
				{"transcriber key set", yesNo(cfg.Transcriber.APIKey != "")},
				{"ntfy topic", valueOrDash(cfg.Notifications.NtfyTopic)},
				{"log format", cfg.Logging.Format},
				{"log level", cfg.Logging.Level},
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Setting", "Value"},
				rows,
				[]columnAlignment{alignLeft, alignLeft},
			))
			return nil
		},
	}
}

func valueOrDash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}
