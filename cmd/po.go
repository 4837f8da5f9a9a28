package main

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var poSalesperson string

var poCmd = &cobra.Command{
	Use:   "po <file.pdf>",
	Short: "Import a customer purchase order into Odoo",
	Long:  "Extracts the order from a customer PO, validates it and, when odoo.import_enabled is set, creates the sale order and attaches the PDF.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		data, err := os.ReadFile(args[0])
		if err != nil {
			return eris.Wrap(err, "read po")
		}

		env, err := initIntake(ctx, "po")
		if err != nil {
			return err
		}
		defer env.Close()

		res, err := env.Service.PurchaseOrder(ctx, filepath.Base(args[0]), data, poSalesperson)
		printMessages(cmd.ErrOrStderr(), res)
		return printResult(cmd.OutOrStdout(), res, err)
	},
}

func init() {
	poCmd.Flags().StringVar(&poSalesperson, "salesperson", "", "salesperson to assign to the order (required)")
	_ = poCmd.MarkFlagRequired("salesperson")
	rootCmd.AddCommand(poCmd)
}
