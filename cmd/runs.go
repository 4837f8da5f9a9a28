package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/ampco/intake-cli/internal/export"
	"github.com/ampco/intake-cli/internal/model"
	"github.com/ampco/intake-cli/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect intake run history",
	Long:  "Commands for listing, viewing, and exporting intake runs.",
}

// -- runs list --

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List intake runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		runs, err := st.ListRuns(ctx, runsFilterFromFlags(cmd))
		if err != nil {
			return eris.Wrap(err, "runs list")
		}

		if len(runs) == 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), "No runs found.")
			return nil
		}

		formatRunsList(cmd.OutOrStdout(), runs)
		return nil
	},
}

// -- runs show --

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show full details of a run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		run, err := st.GetRun(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "runs show")
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(run)
	},
}

// -- runs export --

var runsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export runs as XLSX or CSV",
	Long:  "Writes the filtered run log to --xlsx or --csv. With neither, CSV goes to stdout.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		runs, err := st.ListRuns(ctx, runsFilterFromFlags(cmd))
		if err != nil {
			return eris.Wrap(err, "runs export")
		}

		xlsxPath, _ := cmd.Flags().GetString("xlsx")
		csvPath, _ := cmd.Flags().GetString("csv")
		if xlsxPath == "" && csvPath == "" {
			return export.WriteCSV(cmd.OutOrStdout(), runs)
		}
		if xlsxPath != "" {
			if err := writeExportFile(xlsxPath, runs, export.WriteXLSX); err != nil {
				return err
			}
		}
		if csvPath != "" {
			if err := writeExportFile(csvPath, runs, export.WriteCSV); err != nil {
				return err
			}
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d runs.\n", len(runs))
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{runsListCmd, runsExportCmd} {
		c.Flags().String("flow", "", "filter by flow (po, photometric, weekly)")
		c.Flags().String("status", "", "filter by run status (running, complete, partial, skipped, failed)")
		c.Flags().Int("limit", 50, "max number of runs")
	}
	runsExportCmd.Flags().String("xlsx", "", "write an XLSX workbook to this path")
	runsExportCmd.Flags().String("csv", "", "write CSV to this path")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsExportCmd)
	rootCmd.AddCommand(runsCmd)
}

func runsFilterFromFlags(cmd *cobra.Command) store.RunFilter {
	flow, _ := cmd.Flags().GetString("flow")
	status, _ := cmd.Flags().GetString("status")
	limit, _ := cmd.Flags().GetInt("limit")
	return store.RunFilter{
		Flow:   model.Flow(flow),
		Status: model.RunStatus(status),
		Limit:  limit,
	}
}

func writeExportFile(path string, runs []model.Run, write func(io.Writer, []model.Run) error) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "create %s", path)
	}
	if err := write(f, runs); err != nil {
		f.Close() //nolint:errcheck
		return err
	}
	return eris.Wrapf(f.Close(), "close %s", path)
}

// formatRunsList writes a tabular list of runs to w.
func formatRunsList(out io.Writer, runs []model.Run) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tFLOW\tFILE\tSTATUS\tSTAGE\tRECORD\tCREATED\tDURATION")
	_, _ = fmt.Fprintln(w, "--\t----\t----\t------\t-----\t------\t-------\t--------")

	for _, r := range runs {
		dur := r.UpdatedAt.Sub(r.CreatedAt).Round(time.Second).String()

		var failedStage, record string
		if r.Result != nil {
			failedStage = r.Result.Stage
			record = r.Result.RecordName
		}

		file := r.Filename
		if len(file) > 30 {
			file = file[:27] + "..."
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			truncateID(r.ID),
			r.Flow,
			file,
			r.Status,
			failedStage,
			record,
			r.CreatedAt.Format("2006-01-02 15:04"),
			dur,
		)
	}
	_ = w.Flush()
}

// truncateID returns the first 8 characters of a UUID for compact display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
