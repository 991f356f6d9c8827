package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/yourusername/keiba-advisor/internal/database"
	"github.com/yourusername/keiba-advisor/internal/models"
	"github.com/yourusername/keiba-advisor/internal/repository"
	"github.com/yourusername/keiba-advisor/internal/service"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDatabase(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date")
			return nil
		},
	}
}

func newHistoryCmd() *cobra.Command {
	var limit int
	var withStats bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent purchases and their recovery rate",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDatabase(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			repos, err := repository.NewRepositories(db)
			if err != nil {
				return err
			}
			ledger := service.NewPurchaseLedger(repos.Purchase, time.Local, appLog)

			history, err := ledger.History(cmd.Context(), limit)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "DATE\tRACE\tTYPE\tLEVEL\tCOST\tRETURN\tHIT")
			for _, p := range history.Purchases {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%v\n",
					p.PurchaseDate.Format(models.RaceDateLayout), p.RaceID, p.BetType.Label(),
					p.StrategyType, p.TotalCost, p.ActualReturn, p.IsHit)
			}
			s := history.Summary
			fmt.Fprintf(tw, "\nTOTAL\t\t\t\t%d\t%d\t%d hits (%.1f%%), recovery %.1f%%\n",
				s.TotalCost, s.TotalReturn, s.HitCount, s.HitRate, s.RecoveryRate)

			if withStats {
				stats, err := ledger.Statistics(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(tw, "\nGROUP\tKEY\tCOUNT\tCOST\tRETURN\tRECOVERY\tHIT RATE")
				printGroups(tw, "bet_type", stats.ByBetType)
				printGroups(tw, "season", stats.BySeason)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", service.DefaultHistoryLimit, "Number of purchases to show")
	cmd.Flags().BoolVar(&withStats, "stats", false, "Also print statistics by bet type and season")
	return cmd
}

func printGroups(tw *tabwriter.Writer, group string, rows []models.GroupStatistics) {
	for _, g := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%.1f%%\t%.1f%%\n",
			group, g.Key, g.Count, g.TotalCost, g.TotalReturn, g.RecoveryRate, g.HitRate)
	}
}

func openDatabase(ctx context.Context) (*database.DB, error) {
	if !cfg.Database.Enabled {
		return nil, fmt.Errorf("database is disabled in %s", configFile)
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	return database.Initialize(ctx, cfg)
}
