package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/ampco/intake-cli/internal/photometric"
)

var (
	photometricHTML string
	photometricJSON bool
)

var photometricCmd = &cobra.Command{
	Use:   "photometric <file.pdf>",
	Short: "Summarize a photometric test report",
	Long:  "Builds the results table and an overall summary of a photometric report, classifies each sample into its ANSI chromaticity bin and publishes the PDF to the report share.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		data, err := os.ReadFile(args[0])
		if err != nil {
			return eris.Wrap(err, "read report")
		}

		env, err := initIntake(ctx, "photometric")
		if err != nil {
			return err
		}
		defer env.Close()

		res, err := env.Service.Photometric(ctx, filepath.Base(args[0]), data)
		if photometricJSON || err != nil {
			return printResult(cmd.OutOrStdout(), res, err)
		}

		_, _ = fmt.Fprint(cmd.OutOrStdout(), res.Summary)

		if photometricHTML != "" {
			html, err := photometric.RenderHTML(res.Summary)
			if err != nil {
				return err
			}
			if err := os.WriteFile(photometricHTML, []byte(html), 0o644); err != nil {
				return eris.Wrap(err, "write html")
			}
		}
		return nil
	},
}

func init() {
	photometricCmd.Flags().StringVar(&photometricHTML, "html", "", "also write the summary as HTML to this path")
	photometricCmd.Flags().BoolVar(&photometricJSON, "json", false, "print the full result as JSON")
	rootCmd.AddCommand(photometricCmd)
}
