package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "app:\n  name: screener-test\n"))
	require.NoError(t, err)

	assert.Equal(t, "screener-test", cfg.App.Name)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "{market}_{screen}.csv", cfg.Output.FileTemplate)
	assert.True(t, cfg.Output.Clean)
	assert.Equal(t, []string{"hkex", "sgx", "asx"}, cfg.Run.Markets)
	assert.Equal(t, "yahoo", cfg.Provider.Name)
	assert.Equal(t, 15*time.Second, cfg.Provider.Yahoo.Timeout)
	assert.Equal(t, 5, cfg.Provider.EODHD.HistoryYears)
	assert.Equal(t, 3.0, cfg.Pacing.MaxSeconds)
	assert.Equal(t, 0.7, cfg.Screens.RealEstateLowPB.MaxPB)
	assert.Equal(t, []string{"reit", "real estate", "lodging"}, cfg.Screens.RealEstateLowPB.Industries)
	assert.Equal(t, 0.8, cfg.Screens.NetNet.MaxPB)
	assert.Equal(t, 0.5, cfg.Screens.NetNet.MinCashAssets)
	assert.Equal(t, 0.15, cfg.Screens.LowDebt.MaxDebtEquity)
	assert.Equal(t, []string{"asx", "hkex", "sgx", "us"}, cfg.MarketIDs())
	assert.Equal(t, ".SI", cfg.Markets["sgx"].Suffix)
}

func TestLoadOverridesFromFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
run:
  markets: [asx]
markets:
  asx:
    ticker_file: asx.csv
    suffix: .AX
output:
  clean: false
pacing:
  max_seconds: 5
screens:
  low_debt:
    enabled: false
    max_debt_equity: 0.2
  composites:
    - name: cheap_cash_low_debt
      screens: [net_net, low_debt]
`))
	require.NoError(t, err)

	assert.Equal(t, []string{"asx"}, cfg.Run.Markets)
	require.Contains(t, cfg.Markets, "asx")
	assert.Equal(t, "csv", cfg.Markets["asx"].Format)
	assert.Equal(t, "tickers", cfg.Markets["asx"].Column)
	assert.NotContains(t, cfg.Markets, "hkex")
	assert.False(t, cfg.Output.Clean)
	assert.Equal(t, 5.0, cfg.Pacing.MaxSeconds)
	assert.False(t, cfg.Screens.LowDebt.Enabled)
	assert.Equal(t, 0.2, cfg.Screens.LowDebt.MaxDebtEquity)
	assert.True(t, cfg.Screens.NetNet.Enabled)
	require.Len(t, cfg.Screens.Composites, 1)
	assert.Equal(t, "cheap_cash_low_debt", cfg.Screens.Composites[0].Name)
	assert.Equal(t, []string{"net_net", "low_debt"}, cfg.Screens.Composites[0].Screens)
}

func TestLoadReadsSecretsFromEnv(t *testing.T) {
	t.Setenv("SCREENER_TELEGRAM_BOT_TOKEN", "token-123")
	t.Setenv("SCREENER_TELEGRAM_CHAT_ID", "42")

	cfg, err := Load(writeConfig(t, "telegram:\n  enabled: true\n"))
	require.NoError(t, err)
	assert.Equal(t, "token-123", cfg.Telegram.BotToken)
	assert.Equal(t, int64(42), cfg.Telegram.ChatID)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown run market", "run:\n  markets: [nyse]\n"},
		{"eodhd without key", "provider:\n  name: eodhd\n"},
		{"unknown provider", "provider:\n  name: bloomberg\n"},
		{"pacing below one second", "pacing:\n  max_seconds: 0.5\n"},
		{"bad market format", "markets:\n  asx:\n    ticker_file: a.csv\n    format: xml\n"},
		{"telegram without token", "telegram:\n  enabled: true\n"},
		{"bad log level", "logger:\n  level: loud\n"},
		{"composite of one screen", "screens:\n  composites:\n    - name: x\n      screens: [net_net]\n"},
		{"composite of unknown screen", "screens:\n  composites:\n    - name: x\n      screens: [net_net, magic]\n"},
		{"composite reuses screen name", "screens:\n  composites:\n    - name: net_net\n      screens: [net_net, low_debt]\n"},
		{"composite named all", "screens:\n  composites:\n    - name: all\n      screens: [net_net, low_debt]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "output", cfg.Output.Directory)
}
