package main

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var repairCmd = &cobra.Command{
	Use:   "repair-balances",
	Short: "Recompute zero invoice balances from recorded payments and credits",
	Long: `Scans every invoice whose balance is zero and recomputes it from the payment and
credit applications on record. Invoices that were settled through the ledger are left
untouched; invoices zeroed without matching applications are reopened.`,
	Example: `  ledgerctl repair-balances
  ledgerctl repair-balances --user 6f1c2f4e-0b7a-4a57-9d59-0f3c8f0b2d11`,
	Args: cobra.NoArgs,
	RunE: runRepair,
}

func init() {
	rootCmd.AddCommand(repairCmd)
	repairCmd.Flags().String("user", "", "User ID to receive progress notifications")
}

func runRepair(cmd *cobra.Command, _ []string) error {
	requestedBy := uuid.Nil
	if raw, _ := cmd.Flags().GetString("user"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return fmt.Errorf("invalid --user: %w", err)
		}
		requestedBy = id
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	report, err := s.service.InitializeInvoiceBalances(cmd.Context(), requestedBy)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
