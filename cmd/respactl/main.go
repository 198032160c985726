package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version ビルド時に埋め込むバージョン
var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "respactl",
		Short:         "Operator tools for the respa reservation server",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(sweepCmd())
	rootCmd.AddCommand(exchangeCmd())
	rootCmd.AddCommand(ceeposCmd())

	return rootCmd
}
