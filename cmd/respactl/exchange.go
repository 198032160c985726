package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"respa-server/internal/infrastructure/config"
	"respa-server/internal/infrastructure/exchange"
	otelinfra "respa-server/internal/infrastructure/observability/otel"
)

func exchangeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exchange",
		Short: "Exchange (EWS) connectivity tools",
	}

	check := &cobra.Command{
		Use:   "check [mailbox]",
		Short: "Fetch the calendar folder of a mailbox to check EWS credentials",
		Args:  cobra.ExactArgs(1),
		RunE:  runExchangeCheck,
	}
	check.Flags().Bool("verbose", false, "Log SOAP traffic to stderr")

	cmd.AddCommand(check)
	return cmd
}

func runExchangeCheck(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Exchange.URL == "" {
		return fmt.Errorf("EXCHANGE_URL is required")
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	var logOut io.Writer = io.Discard
	if verbose {
		logOut = cmd.ErrOrStderr()
	}
	logger := otelinfra.NewLogger(otelinfra.Tracer("respactl"), otelinfra.WithOutput(logOut))

	session := exchange.NewSession(&cfg.Exchange, logger)
	resp, err := session.Soap(cmd.Context(), exchange.NewGetFolderRequest(args[0]))
	if err != nil {
		return fmt.Errorf("exchange check failed: %w", err)
	}
	folder, err := exchange.ParseGetFolderResponse(resp)
	if err != nil {
		return fmt.Errorf("exchange check failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "mailbox:    %s\nfolder id:  %s\nchange key: %s\n", args[0], folder.ID, folder.ChangeKey)
	return nil
}
