package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"respa-server/internal/infrastructure/ceepos"
	"respa-server/internal/infrastructure/config"
)

func ceeposCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ceepos",
		Short: "Ceepos payment service tools",
	}

	sign := &cobra.Command{
		Use:   "sign",
		Short: "Compute the checksum of a payment notification for manual webhook calls",
		Args:  cobra.NoArgs,
		RunE:  runCeeposSign,
	}
	sign.Flags().String("id", "", "Purchase id")
	sign.Flags().String("status", "1", "Payment status (1 = paid)")
	sign.Flags().String("reference", "", "Payment service reference")
	_ = sign.MarkFlagRequired("id")
	_ = sign.MarkFlagRequired("reference")

	cmd.AddCommand(sign)
	return cmd
}

func runCeeposSign(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	id, _ := cmd.Flags().GetString("id")
	status, _ := cmd.Flags().GetString("status")
	reference, _ := cmd.Flags().GetString("reference")

	signer := ceepos.NewSigner(cfg.Ceepos.APIVersion, cfg.Ceepos.MerchantID, cfg.Ceepos.AccessMode, cfg.Ceepos.MerchantSecret)
	fmt.Fprintln(cmd.OutOrStdout(), signer.Notification(id, status, reference))
	return nil
}
