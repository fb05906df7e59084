package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var invoiceCmd = &cobra.Command{
	Use:   "invoice",
	Short: "Invoice maintenance commands",
}

var renderInvoiceCmd = &cobra.Command{
	Use:   "render [invoice-number]",
	Short: "Re-render the stored document for an invoice",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		config, err := loadConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}

		deps, err := initializeDependencies(config)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
			os.Exit(1)
		}
		defer deps.Close()

		inv, err := deps.Invoices.Rerender(context.Background(), args[0])
		if err != nil {
			deps.Logger.Error("failed to render invoice", "invoice_number", args[0], "error", err)
			os.Exit(1)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "rendered %s to %s\n", inv.InvoiceNumber, inv.DocumentPath)
	},
}

func init() {
	invoiceCmd.AddCommand(renderInvoiceCmd)
	rootCmd.AddCommand(invoiceCmd)
}
