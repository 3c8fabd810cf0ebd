package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/SscSPs/twoline_ledger/internal/core/domain"
	"github.com/SscSPs/twoline_ledger/internal/utils"
)

func tokenCmd() *cobra.Command {
	var (
		subject     string
		householdID string
		role        string
		ttl         time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an API token for a household member",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if role != string(domain.RoleOwner) && role != string(domain.RoleMember) {
				return fmt.Errorf("role must be owner or member, got %q", role)
			}
			token, err := utils.GenerateJWT(subject, householdID, domain.Role(role), cfg.JWTSecret, ttl, cfg.JWTIssuer)
			if err != nil {
				return fmt.Errorf("failed to sign token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "user id")
	cmd.Flags().StringVar(&householdID, "household", "", "household id")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleMember), "owner or member")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("subject")
	_ = cmd.MarkFlagRequired("household")
	return cmd
}
