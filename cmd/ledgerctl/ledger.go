package main

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var ledgerCmd = &cobra.Command{
	Use:   "ledger <customer-id>",
	Short: "Print a customer's ledger and balance summary as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runLedger,
}

func init() {
	rootCmd.AddCommand(ledgerCmd)
	ledgerCmd.Flags().Bool("summary", false, "Print only the balance summary")
}

func runLedger(cmd *cobra.Command, args []string) error {
	customerID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid customer id %q: %w", args[0], err)
	}
	summaryOnly, _ := cmd.Flags().GetBool("summary")

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	result, err := s.service.GetCustomerLedger(cmd.Context(), customerID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if summaryOnly {
		return enc.Encode(result.Summary)
	}
	return enc.Encode(result)
}
