package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/hemovita/hemovita-cli/internal/monitoring"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize report activity over a lookback window",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		if st == nil {
			return eris.New("run store is disabled (store.driver=none)")
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		hours, _ := cmd.Flags().GetInt("hours")
		asJSON, _ := cmd.Flags().GetBool("json")

		snap, err := monitoring.NewCollector(st).Collect(ctx, hours)
		if err != nil {
			return eris.Wrap(err, "stats")
		}

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(snap)
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintf(tw, "Window\tlast %dh\n", snap.LookbackHours)
		fmt.Fprintf(tw, "Runs\t%d (%d completed, %d failed, %d running)\n",
			snap.RunsTotal, snap.RunsCompleted, snap.RunsFailed, snap.RunsRunning)
		fmt.Fprintf(tw, "Fail rate\t%.1f%%\n", snap.FailRate*100)
		fmt.Fprintf(tw, "Avg duration\t%.1f ms\n", snap.AvgDurationMS)
		fmt.Fprintf(tw, "Avg low markers\t%.1f\n", snap.AvgLowMarkers)
		fmt.Fprintf(tw, "Forced placements\t%d\n", snap.ForcedTotal)
		fmt.Fprintf(tw, "Risk served\t%.1f%%\n", snap.RiskServedRate*100)
		return tw.Flush()
	},
}

func init() {
	statsCmd.Flags().Int("hours", 24, "lookback window in hours")
	statsCmd.Flags().Bool("json", false, "output JSON")
	rootCmd.AddCommand(statsCmd)
}
