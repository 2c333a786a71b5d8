package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"hrunity/internal/platform/email"
)

var emailCmd = &cobra.Command{
	Use:   "email",
	Short: "Email provider utilities",
}

var emailCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the configured email provider can connect",
	Args:  cobra.NoArgs,
	RunE:  runEmailCheck,
}

func init() {
	emailCmd.AddCommand(emailCheckCmd)
}

func runEmailCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	provider := email.New(cfg)

	ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
	defer cancel()
	if err := email.Check(ctx, provider); err != nil {
		return fmt.Errorf("%s: %w", provider.Name(), err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s provider ready\n", provider.Name())
	return nil
}
