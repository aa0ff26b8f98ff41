package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"inlet/internal/config"
	"inlet/internal/meetings"
)

func newAuthCommand(ctx *commandContext) *cobra.Command {
	authCmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage meeting platform credentials",
	}
	authCmd.AddCommand(newAuthSetCommand(ctx))
	authCmd.AddCommand(newAuthShowCommand(ctx))
	return authCmd
}

func newAuthSetCommand(ctx *commandContext) *cobra.Command {
	var refreshToken string
	var accessToken string
	var expiresIn int

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Store a refresh token for the meeting platform",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			tokens, err := newTokenManager(cfg)
			if err != nil {
				return err
			}

			cred := meetings.Credential{
				AccessToken:  accessToken,
				RefreshToken: refreshToken,
			}
			if accessToken != "" && expiresIn > 0 {
				cred.ExpiresAt = time.Now().Add(time.Duration(expiresIn) * time.Second)
			}
			if err := tokens.SetCredential(cred); err != nil {
				return fmt.Errorf("store credential: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Credential stored in %s\n", cfg.Meetings.TokenPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&refreshToken, "refresh-token", "", "OAuth refresh token (required)")
	cmd.Flags().StringVar(&accessToken, "access-token", "", "Current access token, if one exists")
	cmd.Flags().IntVar(&expiresIn, "expires-in", 0, "Access token lifetime in seconds")
	_ = cmd.MarkFlagRequired("refresh-token")
	return cmd
}

func newAuthShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show stored credential state",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			tokens, err := newTokenManager(cfg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !tokens.HasCredential() {
				fmt.Fprintln(out, "No credential stored; run 'inlet auth set --refresh-token ...'")
				return nil
			}

			cred := tokens.Credential()
			expires := "-"
			if !cred.ExpiresAt.IsZero() {
				expires = cred.ExpiresAt.Local().Format(time.DateTime)
			}
			rows := [][]string{
				{"token file", cfg.Meetings.TokenPath},
				{"user label", cred.UserLabel},
				{"client identifier", cred.ClientIdentifier},
				{"access token cached", yesNo(cred.AccessToken != "")},
				{"access token expires", expires},
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Field", "Value"},
				rows,
				[]columnAlignment{alignLeft, alignLeft},
			))
			return nil
		},
	}
}

func newTokenManager(cfg *config.Config) (*meetings.TokenManager, error) {
	return meetings.NewTokenManager(
		cfg.Meetings.ClientID,
		cfg.Meetings.ClientSecret,
		cfg.Meetings.OAuthTokenURL,
		cfg.Meetings.UserLabel,
		cfg.Meetings.TokenPath,
	)
}
