package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/leasingborsen/pricelist-cli/internal/budget"
)

var budgetSessions int

var budgetCmd = &cobra.Command{
	Use:   "budget",
	Short: "Show AI spend against the configured caps",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("budget"); err != nil {
			return err
		}

		ledger, err := initLedger(ctx)
		if err != nil {
			return err
		}
		defer ledger.Close()

		now := time.Now()
		daily, err := ledger.DailyTotalCents(ctx, now)
		if err != nil {
			return err
		}
		monthly, err := ledger.MonthlyTotalCents(ctx, now)
		if err != nil {
			return err
		}

		caps := cfg.Budget.Caps()
		fmt.Printf("Day %s:   %s spent, cap %s\n", budget.DayKey(now), cents(daily), capString(caps.DailyCents))
		fmt.Printf("Month %s: %s spent, cap %s\n", budget.MonthKey(now), cents(monthly), capString(caps.MonthlyCents))

		sessions, err := ledger.ListSessions(ctx, budgetSessions)
		if err != nil {
			return err
		}
		if len(sessions) == 0 {
			return nil
		}

		fmt.Println("\nRecent sessions:")
		for _, s := range sessions {
			hint := s.DealerHint
			if hint == "" {
				hint = "-"
			}
			fmt.Printf("  %s  %-22s %-7s %3d variants  %s  %d tokens\n",
				s.CreatedAt.Local().Format("2006-01-02 15:04"),
				hint, s.MethodUsed, s.VariantCount, cents(s.CostCents), s.TokensUsed)
		}
		return nil
	},
}

func cents(n int) string {
	return fmt.Sprintf("$%.2f", float64(n)/100)
}

// capString renders a cap, where zero means the cap is disabled.
func capString(n int) string {
	if n == 0 {
		return "unlimited"
	}
	return cents(n)
}

func init() {
	budgetCmd.Flags().IntVar(&budgetSessions, "sessions", 10, "number of recent sessions to show")
	rootCmd.AddCommand(budgetCmd)
}
