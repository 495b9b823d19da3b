package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/creditgate/creditgate/adapters/sqlite"
)

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "View usage statistics",
	Long: `View metered usage for prepaid accounts.

Examples:
  creditgate usage summary --account=acct_123
  creditgate usage summary --account=acct_123 --days=7
  creditgate usage recent --account=acct_123 --limit=20`,
}

var usageSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show usage summary for a period",
	RunE:  runUsageSummary,
}

var usageRecentCmd = &cobra.Command{
	Use:   "recent",
	Short: "Show recent requests",
	RunE:  runUsageRecent,
}

var (
	usageAccountID string
	usageDays      int
	usageLimit     int
)

func init() {
	rootCmd.AddCommand(usageCmd)

	usageCmd.AddCommand(usageSummaryCmd)
	usageCmd.AddCommand(usageRecentCmd)

	usageSummaryCmd.Flags().StringVar(&usageAccountID, "account", "", "account ID (required)")
	usageSummaryCmd.Flags().IntVar(&usageDays, "days", 30, "period length in days")
	usageSummaryCmd.MarkFlagRequired("account")

	usageRecentCmd.Flags().StringVar(&usageAccountID, "account", "", "account ID (required)")
	usageRecentCmd.Flags().IntVar(&usageLimit, "limit", 20, "number of requests to show")
	usageRecentCmd.MarkFlagRequired("account")
}

func runUsageSummary(cmd *cobra.Command, args []string) error {
	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	end := cliClock.Now().UTC()
	start := end.AddDate(0, 0, -usageDays)

	store := sqlite.NewUsageStore(db)
	summary, err := store.Summary(context.Background(), usageAccountID, start, end)
	if err != nil {
		return fmt.Errorf("failed to load summary: %w", err)
	}

	fmt.Printf("Usage for %s (%s to %s)\n", usageAccountID,
		start.Format("2006-01-02"), end.Format("2006-01-02"))
	fmt.Printf("  Requests:      %d\n", summary.RequestCount)
	fmt.Printf("  Credits spent: %d\n", summary.CreditsSpent)
	fmt.Printf("  Errors:        %d\n", summary.ErrorCount)
	fmt.Printf("  Avg latency:   %dms\n", summary.AvgLatencyMs)
	return nil
}

func runUsageRecent(cmd *cobra.Command, args []string) error {
	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	store := sqlite.NewUsageStore(db)
	records, err := store.RecentByAccount(context.Background(), usageAccountID, usageLimit)
	if err != nil {
		return fmt.Errorf("failed to load usage: %w", err)
	}

	if len(records) == 0 {
		fmt.Println("No usage recorded for this account.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tMETHOD\tPATH\tSTATUS\tLATENCY\tCREDITS")
	fmt.Fprintln(w, "----\t------\t----\t------\t-------\t-------")

	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%dms\t%d\n",
			r.CreatedAt.Format(time.RFC3339), r.Method, r.Path,
			r.StatusCode, r.LatencyMs, r.CreditsUsed)
	}

	w.Flush()
	return nil
}
