package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/hemovita/hemovita-cli/internal/bandit"
)

var (
	riskCountry    string
	riskPopulation string
	riskGender     string
	riskAge        float64
)

var riskCmd = &cobra.Command{
	Use:   "risk",
	Short: "Estimate demographic micronutrient deficiency risk",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

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

		profile := eng.RiskProfile(bandit.ProfileInput{
			Country:    riskCountry,
			Population: riskPopulation,
			Gender:     riskGender,
			Age:        riskAge,
		})
		if profile == nil {
			return eris.New("risk model unavailable")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(profile)
	},
}

func init() {
	riskCmd.Flags().StringVar(&riskCountry, "country", "", "country name as it appears in the training data")
	riskCmd.Flags().StringVar(&riskPopulation, "population", "", "population group (default All)")
	riskCmd.Flags().StringVar(&riskGender, "gender", "", "gender code (default All)")
	riskCmd.Flags().Float64Var(&riskAge, "age", 0, "age in years")
	rootCmd.AddCommand(riskCmd)
}
