package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yourusername/keiba-advisor/internal/datasource"
	"github.com/yourusername/keiba-advisor/internal/models"
	"github.com/yourusername/keiba-advisor/internal/service"
	"github.com/yourusername/keiba-advisor/internal/strategy"
)

type recommendOptions struct {
	input       string
	raceID      string
	bankroll    float64
	riskMode    string
	minEV       float64
	noKelly     bool
	fixedUnit   bool
	summaryOnly bool
}

func newRecommendCmd() *cobra.Command {
	opts := &recommendOptions{}

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Recommend bets for one race",
		Long: `Reads an analyze request (race_info, predictions and optional strategy fields)
as JSON from --input, or fetches predictions by --race-id from the configured
prediction source, and prints the recommendation.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := opts.request(cmd)
			if err != nil {
				return err
			}

			var source datasource.PredictionSource
			if cfg.PredictionSource.Enabled {
				source = datasource.NewPredictionSourceFromConfig(cfg.PredictionSource, appLog)
			}
			svc := service.NewRecommendationService(
				strategy.NewRecommender(cfg.Strategy.Engine(), strategy.NewRaceAnalyzer(), appLog),
				source, nil, nil,
				cfg.Strategy.Defaults(),
				appLog,
			)

			rec, err := svc.Analyze(cmd.Context(), req)
			if err != nil {
				return err
			}
			if opts.summaryOnly {
				return printSummary(cmd.OutOrStdout(), rec)
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(rec)
		},
	}

	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "Analyze request JSON file, - for stdin")
	cmd.Flags().StringVar(&opts.raceID, "race-id", "", "Fetch predictions for this race from the prediction source")
	cmd.Flags().Float64Var(&opts.bankroll, "bankroll", 0, "Bankroll in yen (default from config)")
	cmd.Flags().StringVar(&opts.riskMode, "risk-mode", "", "conservative, balanced or aggressive")
	cmd.Flags().Float64Var(&opts.minEV, "min-ev", 0, "Skip races whose best EV is below this")
	cmd.Flags().BoolVar(&opts.noKelly, "no-kelly", false, "Omit the Kelly stake")
	cmd.Flags().BoolVar(&opts.fixedUnit, "fixed-unit", false, "Always buy at the 100 yen unit")
	cmd.Flags().BoolVar(&opts.summaryOnly, "summary", false, "Print a short text summary instead of JSON")
	return cmd
}

// request builds the analyze request; flags override the input file
func (o *recommendOptions) request(cmd *cobra.Command) (service.AnalyzeRequest, error) {
	req := service.AnalyzeRequest{}

	if o.input != "" {
		var r io.Reader = cmd.InOrStdin()
		if o.input != "-" {
			f, err := os.Open(o.input)
			if err != nil {
				return req, fmt.Errorf("failed to open input: %w", err)
			}
			defer f.Close()
			r = f
		}
		if err := json.NewDecoder(r).Decode(&req); err != nil {
			return req, fmt.Errorf("%w: failed to parse input: %v", models.ErrInvalidInput, err)
		}
	}

	flags := cmd.Flags()
	if o.raceID != "" {
		req.RaceID = o.raceID
	}
	if flags.Changed("bankroll") {
		req.Bankroll = &o.bankroll
	}
	if o.riskMode != "" {
		req.RiskMode = o.riskMode
	}
	if flags.Changed("min-ev") {
		req.MinEV = &o.minEV
	}
	if o.noKelly {
		useKelly := false
		req.UseKelly = &useKelly
	}
	if o.fixedUnit {
		dynamic := false
		req.DynamicUnit = &dynamic
	}
	return req, nil
}

func printSummary(w io.Writer, rec *models.IssuedRecommendation) error {
	plan := rec.Recommendation.Recommendation
	eval := rec.ProEvaluation

	var b strings.Builder
	fmt.Fprintf(&b, "Race %s  level=%s  action=%s  difficulty=%.3f\n",
		rec.RaceInfo.RaceID, rec.RaceLevel, eval.RecommendedAction, eval.DifficultyScore)
	fmt.Fprintf(&b, "Best bet: %s (%s)  max EV %.2f  avg EV %.2f\n",
		rec.BestBetType.Label(), rec.BestBetType, rec.BestBetInfo.MaxExpectedValue, rec.BestBetInfo.AverageExpectedValue)
	fmt.Fprintf(&b, "Plan: %d x ¥%d = ¥%d  (budget ¥%d, limit ¥%d)\n",
		plan.PurchaseCount, plan.UnitPrice, plan.TotalCost, plan.Budget, plan.PerRaceLimit)
	if plan.KellyRecommendedAmount != nil {
		fmt.Fprintf(&b, "Kelly stake: ¥%d\n", *plan.KellyRecommendedAmount)
	}
	if dh := eval.DarkHorse; dh != nil {
		fmt.Fprintf(&b, "Dark horse: #%d %s  odds %.1f  EV %.2f\n", dh.HorseNo, dh.HorseName, dh.Odds, dh.ExpectedValue)
	}
	for i, c := range rec.BestCandidates() {
		if int64(i) >= plan.PurchaseCount {
			break
		}
		fmt.Fprintf(&b, "  %-10s EV %.2f  p %.4f\n", c.Combination, c.ExpectedValue, c.Probability)
	}
	b.WriteString(plan.StrategyExplanation)
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}
