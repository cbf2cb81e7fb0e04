package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/hemovita/hemovita-cli/internal/engine"
	"github.com/hemovita/hemovita-cli/internal/model"
)

var (
	reportInput string
	reportJSON  bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate a micronutrient report for one lab panel",
	Long:  "Reads a JSON request ({labs, patient, diet_filter}) from a file or stdin and prints the report.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var raw []byte
		var err error
		if reportInput == "" || reportInput == "-" {
			raw, err = io.ReadAll(os.Stdin)
		} else {
			raw, err = os.ReadFile(reportInput)
		}
		if err != nil {
			return eris.Wrap(err, "read request")
		}

		var req engine.ReportRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			return eris.Wrap(err, "decode request")
		}
		if len(req.Labs) == 0 {
			return eris.New("request has no labs")
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		if st != nil {
			defer st.Close() //nolint:errcheck
			if err := st.Migrate(ctx); err != nil {
				return eris.Wrap(err, "migrate store")
			}
		}

		eng, err := initEngine(ctx, st)
		if err != nil {
			return err
		}

		report, err := buildWithRun(ctx, st, func() (*model.Report, *model.RunResult) {
			return eng.BuildReport(req)
		})
		if err != nil {
			return err
		}

		if reportJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}

		fmt.Println(report.ReportText)
		return nil
	},
}

func init() {
	reportCmd.Flags().StringVarP(&reportInput, "input", "i", "", "request JSON file (default stdin)")
	reportCmd.Flags().BoolVar(&reportJSON, "json", false, "print the full structured report as JSON")
	rootCmd.AddCommand(reportCmd)
}
