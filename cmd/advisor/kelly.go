package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yourusername/keiba-advisor/internal/strategy"
)

func newKellyCmd() *cobra.Command {
	var probability, odds, bankroll float64

	cmd := &cobra.Command{
		Use:   "kelly",
		Short: "Print the fractional Kelly stake for one selection",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("bankroll") {
				bankroll = cfg.Strategy.DefaultBankroll
			}
			q, err := strategy.QuoteKelly(probability, odds, bankroll, cfg.Strategy.KellyFraction, cfg.Strategy.KellyCap)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Expected value:  %.4f\n", q.ExpectedValue)
			fmt.Fprintf(out, "Raw Kelly:       %.4f\n", q.RawFraction)
			fmt.Fprintf(out, "Applied (x%.2f, cap %.2f): %.4f\n", cfg.Strategy.KellyFraction, cfg.Strategy.KellyCap, q.Fraction)
			fmt.Fprintf(out, "Stake:           ¥%d of ¥%.0f\n", q.Stake, q.Bankroll)
			if !q.HasPositiveEdge {
				fmt.Fprintln(out, "No positive edge: do not bet.")
			}
			return nil
		},
	}

	cmd.Flags().Float64VarP(&probability, "probability", "p", 0, "Win probability in [0,1]")
	cmd.Flags().Float64VarP(&odds, "odds", "o", 0, "Decimal odds")
	cmd.Flags().Float64VarP(&bankroll, "bankroll", "b", 0, "Bankroll in yen (default from config)")
	_ = cmd.MarkFlagRequired("probability")
	_ = cmd.MarkFlagRequired("odds")
	return cmd
}
