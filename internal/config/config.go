package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config is the single explicit configuration for the whole process. Every
// tunable is enumerated here and validated once at startup; components receive
// the values they need through their constructors.
type Config struct {
	BotID string

	// Market
	Symbol     string
	BaseAsset  string
	QuoteAsset string
	Interval   string // Candle interval, e.g. "1m", "15m"

	// Strategy
	MAType      string // "SMA" or "EMA"
	ShortPeriod int
	LongPeriod  int

	// Risk
	StopLossPct     float64 // Negative, e.g. -0.02
	TakeProfitPct   float64 // Positive, e.g. 0.05
	TrailingStopPct float64 // Positive, e.g. 0.01
	MaxDailyLoss    float64 // Positive quote amount; entries blocked once daily loss reaches it
	MaxDailyTrades  int

	// Execution
	TradeQuoteAmount   float64 // Quote spent per entry
	QuantityPrecision  int     // Display precision after step-size flooring
	EnableRealTrading  bool    // Safety switch; false = paper fills
	PaperStartingQuote float64 // Simulated starting quote balance in paper mode

	// Binance
	APIKey    string
	SecretKey string
	IsTestnet bool

	// Infra
	DatabaseURL string
	HTTPAddr    string
}

// Load reads configuration from the environment, applying defaults for
// everything that is safe to default.
func Load() Config {
	return Config{
		BotID:      envStr("BOT_ID", "default"),
		Symbol:     envStr("SYMBOL", "BTCUSDT"),
		BaseAsset:  envStr("BASE_ASSET", "BTC"),
		QuoteAsset: envStr("QUOTE_ASSET", "USDT"),
		Interval:   envStr("CANDLE_INTERVAL", "1m"),

		MAType:      strings.ToUpper(envStr("MA_TYPE", "EMA")),
		ShortPeriod: envInt("MA_SHORT_PERIOD", 7),
		LongPeriod:  envInt("MA_LONG_PERIOD", 25),

		StopLossPct:     envFloat("STOP_LOSS_PCT", -0.02),
		TakeProfitPct:   envFloat("TAKE_PROFIT_PCT", 0.05),
		TrailingStopPct: envFloat("TRAILING_STOP_PCT", 0.01),
		MaxDailyLoss:    envFloat("MAX_DAILY_LOSS", 100),
		MaxDailyTrades:  envInt("MAX_DAILY_TRADES", 10),

		TradeQuoteAmount:   envFloat("TRADE_QUOTE_AMOUNT", 50),
		QuantityPrecision:  envInt("QUANTITY_PRECISION", 8),
		EnableRealTrading:  envBool("ENABLE_REAL_TRADING", false),
		PaperStartingQuote: envFloat("PAPER_STARTING_QUOTE", 1000),

		APIKey:    os.Getenv("BINANCE_API_KEY"),
		SecretKey: os.Getenv("BINANCE_SECRET_KEY"),
		IsTestnet: envBool("BINANCE_TESTNET", false),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		HTTPAddr:    envStr("HTTP_ADDR", ":8080"),
	}
}

// Validate checks the whole config in one pass and reports the first problem.
func (c Config) Validate() error {
	if c.Symbol == "" || c.BaseAsset == "" || c.QuoteAsset == "" {
		return fmt.Errorf("symbol, base asset and quote asset are required")
	}
	if c.MAType != "SMA" && c.MAType != "EMA" {
		return fmt.Errorf("MA_TYPE must be SMA or EMA, got %q", c.MAType)
	}
	if c.ShortPeriod < 2 {
		return fmt.Errorf("MA_SHORT_PERIOD must be >= 2, got %d", c.ShortPeriod)
	}
	if c.ShortPeriod >= c.LongPeriod {
		return fmt.Errorf("MA_SHORT_PERIOD (%d) must be < MA_LONG_PERIOD (%d)", c.ShortPeriod, c.LongPeriod)
	}
	if c.StopLossPct >= 0 {
		return fmt.Errorf("STOP_LOSS_PCT must be negative, got %v", c.StopLossPct)
	}
	if c.TakeProfitPct <= 0 {
		return fmt.Errorf("TAKE_PROFIT_PCT must be positive, got %v", c.TakeProfitPct)
	}
	if c.TrailingStopPct <= 0 || c.TrailingStopPct >= 1 {
		return fmt.Errorf("TRAILING_STOP_PCT must be in (0,1), got %v", c.TrailingStopPct)
	}
	if c.MaxDailyLoss <= 0 {
		return fmt.Errorf("MAX_DAILY_LOSS must be positive, got %v", c.MaxDailyLoss)
	}
	if c.MaxDailyTrades < 1 {
		return fmt.Errorf("MAX_DAILY_TRADES must be >= 1, got %d", c.MaxDailyTrades)
	}
	if c.TradeQuoteAmount <= 0 {
		return fmt.Errorf("TRADE_QUOTE_AMOUNT must be positive, got %v", c.TradeQuoteAmount)
	}
	if c.EnableRealTrading && (c.APIKey == "" || c.SecretKey == "") {
		return fmt.Errorf("real trading enabled but BINANCE_API_KEY/BINANCE_SECRET_KEY not set")
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	return nil
}

func envStr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
