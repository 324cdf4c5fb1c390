package history

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"meeting-transcriber/cmd/mtp/cmd/common"
	"meeting-transcriber/internal/app/export"
	"meeting-transcriber/internal/app/repository/sqlite"
)

var limit int
var exportPath string

func init() {
	Cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of runs to show, 0 for all")
	Cmd.Flags().StringVarP(&exportPath, "export", "e", "", "write the runs to this .xlsx file instead of printing them")
}

// Cmd represents the history command
var Cmd = &cobra.Command{
	Use:   "history",
	Short: "List recent uploads and their transcripts",
	Long: `List recent uploads and their transcripts

Runs are recorded locally in DATA_DIR/history.db. Credentials are never stored.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := common.PortalConfig()
		if err != nil {
			return err
		}

		db, err := sqlite.Open(cfg.HistoryPath())
		if err != nil {
			return err
		}
		defer db.Close()

		runs, err := db.ListRuns(cmd.Context(), limit)
		if err != nil {
			return err
		}

		if exportPath != "" {
			if err := export.ToExcel(runs, exportPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "export finished, exported file path: %v\n", exportPath)
			return nil
		}

		if len(runs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded yet")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "STARTED\tFILE\tSTATUS\tELAPSED\tTRANSCRIPT")
		for _, r := range runs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%ds\t%s\n",
				r.StartedAt.Local().Format(time.DateTime),
				r.FileName,
				r.Status,
				r.ElapsedSeconds,
				preview(lo.Ternary(r.ErrorMessage != "", r.ErrorMessage, r.Transcript)),
			)
		}
		return w.Flush()
	},
}

func preview(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) > 60 {
		return string(runes[:57]) + "..."
	}
	return s
}
