package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var weeklyCmd = &cobra.Command{
	Use:   "weekly [notes.txt]",
	Short: "Write a weekly summary from free-form notes",
	Long:  "Reads notes from a file, or stdin when no file is given, and prints the weekly summary. Each request is appended to weekly.log_path.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		text, err := readNotes(cmd.InOrStdin(), args)
		if err != nil {
			return err
		}

		env, err := initIntake(ctx, "weekly")
		if err != nil {
			return err
		}
		defer env.Close()

		res, err := env.Service.Weekly(ctx, text)
		if err != nil {
			return printResult(cmd.OutOrStdout(), res, err)
		}
		printMessages(cmd.ErrOrStderr(), res)
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), res.Summary)
		return nil
	},
}

func readNotes(stdin io.Reader, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", eris.Wrap(err, "read stdin")
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", eris.Wrap(err, "read notes")
	}
	return string(data), nil
}

func init() {
	rootCmd.AddCommand(weeklyCmd)
}
