package main

import (
	"context"
	"fmt"

	"golang-stock-screener/pkg/logger"

	"github.com/spf13/cobra"
)

var (
	screenMarket string
	screenInput  string
)

var screenCmd = &cobra.Command{
	Use:   "screen",
	Short: "Re-applies the screens to a previously written full report",
	RunE:  runScreen,
}

func init() {
	screenCmd.Flags().StringVarP(&screenMarket, "market", "m", "", "Market the report belongs to")
	screenCmd.Flags().StringVarP(&screenInput, "input", "i", "", "Path to the full report CSV")
	_ = screenCmd.MarkFlagRequired("market")
	_ = screenCmd.MarkFlagRequired("input")
}

func runScreen(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	summary, err := a.pipeline.ScreenReport(context.Background(), screenMarket, screenInput)
	if err != nil {
		return fmt.Errorf("failed to screen %s: %w", screenInput, err)
	}
	for _, res := range summary.Screens {
		a.log.Info("Screen applied",
			logger.StringField("screen", res.Screen),
			logger.IntField("matches", len(res.Records)),
			logger.Field("tickers", res.Tickers()),
		)
	}
	return nil
}
