package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"golang-stock-screener/internal/screener/service"

	"github.com/spf13/cobra"
)

var fetchMetrics bool

var fetchCmd = &cobra.Command{
	Use:   "fetch <ticker>",
	Short: "Fetches one ticker's fundamentals snapshot and prints it as JSON",
	Long: `Fetches the snapshot from the configured provider. The output can be saved as
<ticker>.json and read back with provider.name=file.`,
	Args: cobra.ExactArgs(1),
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().BoolVar(&fetchMetrics, "metrics", false, "Print the computed metrics record instead of the snapshot")
}

func runFetch(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	ticker := args[0]
	snapshot, err := a.fetcher.GetFundamentals(context.Background(), ticker)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", ticker, err)
	}

	var out interface{} = snapshot
	if fetchMetrics {
		rec, err := service.NewMetricsCalculator().Compute(ticker, snapshot)
		if err != nil {
			return err
		}
		out = rec
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
