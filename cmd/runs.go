package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/store"
)

var (
	runsStatus string
	runsLimit  int
	runsOffset int
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect recorded pipeline runs",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := store.Open(cmd.Context(), cfg.Store)
		if err != nil {
			return eris.Wrap(err, "runs: open store")
		}
		defer st.Close() //nolint:errcheck

		runs, err := st.ListRuns(cmd.Context(), store.RunFilter{
			Status: model.RunStatus(runsStatus),
			Limit:  runsLimit,
			Offset: runsOffset,
		})
		if err != nil {
			return eris.Wrap(err, "runs: list")
		}

		formatRunsList(cmd.OutOrStdout(), runs)
		return nil
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show RUN_ID",
	Short: "Show one run and its records as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := store.Open(cmd.Context(), cfg.Store)
		if err != nil {
			return eris.Wrap(err, "runs: open store")
		}
		defer st.Close() //nolint:errcheck

		return showRun(cmd, st, args[0])
	},
}

// runDetail is a run with the records it produced.
type runDetail struct {
	*model.Run
	Records []model.CompanyRecord `json:"records"`
}

func showRun(cmd *cobra.Command, st store.Store, id string) error {
	run, err := st.GetRun(cmd.Context(), id)
	if err != nil {
		return eris.Wrapf(err, "runs: get %s", id)
	}
	recs, err := st.ListRecords(cmd.Context(), id)
	if err != nil {
		return eris.Wrapf(err, "runs: records for %s", id)
	}
	if recs == nil {
		recs = []model.CompanyRecord{}
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(runDetail{Run: run, Records: recs})
}

// formatRunsList writes a table of runs to w.
func formatRunsList(w io.Writer, runs []model.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs found.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tSOURCES\tRECORDS\tSUCCESSFUL\tCREATED")
	fmt.Fprintln(tw, strings.Repeat("-", 8)+"\t"+strings.Repeat("-", 8)+"\t"+
		strings.Repeat("-", 7)+"\t"+strings.Repeat("-", 7)+"\t"+
		strings.Repeat("-", 10)+"\t"+strings.Repeat("-", 19))

	for _, r := range runs {
		total, successful := "-", "-"
		if r.Summary != nil {
			total = fmt.Sprintf("%d", r.Summary.Total)
			successful = fmt.Sprintf("%d", r.Summary.Successful)
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\n",
			truncateID(r.ID),
			r.Status,
			len(r.Sources),
			total,
			successful,
			r.CreatedAt.Format("2006-01-02 15:04:05"),
		)
	}
	_ = tw.Flush()
}

func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func init() {
	runsListCmd.Flags().StringVar(&runsStatus, "status", "", "filter by status (running, complete, canceled, failed)")
	runsListCmd.Flags().IntVar(&runsLimit, "limit", 20, "max runs to list")
	runsListCmd.Flags().IntVar(&runsOffset, "offset", 0, "runs to skip")
	runsCmd.AddCommand(runsListCmd, runsShowCmd)
	rootCmd.AddCommand(runsCmd)
}
