package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

func Load() (*config, error) {
	// A missing .env file is fine; plain environment variables still apply.
	_ = godotenv.Load()

	return &config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     EnvtoInt(os.Getenv("DB_PORT"), 5432),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			DBName:   getEnv("DB_NAME", "marketsignals"),
		},
		Exchange: ExchangeConfig{
			APIKey:    os.Getenv("BINANCE_API_KEY"),
			SecretKey: os.Getenv("BINANCE_SECRET_KEY"),
		},
		Server: ServerConfig{
			Port: EnvtoInt(os.Getenv("SERVER_PORT"), 8080),
		},
		Engine: EngineConfig{
			GenerateSchedule:  getEnv("GENERATE_SCHEDULE", "@hourly"),
			BackfillDays:      EnvtoInt(os.Getenv("BACKFILL_DAYS"), 365),
			NotifyMinStrength: EnvtoInt(os.Getenv("NOTIFY_MIN_STRENGTH"), 70),
		},
		Strategy: StrategyConfig{
			InstrumentStrategies: ParsePairs(os.Getenv("STRATEGY_OVERRIDES")),
			InstrumentClasses:    ParsePairs(os.Getenv("INSTRUMENT_CLASSES")),
			AssetClassDefaults:   ParsePairs(os.Getenv("ASSET_CLASS_DEFAULTS")),
			RSIOversold:          ParseFloatPairs(os.Getenv("RSI_OVERSOLD_OVERRIDES")),
			RSIOverbought:        ParseFloatPairs(os.Getenv("RSI_OVERBOUGHT_OVERRIDES")),
		},
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Instruments: SplitList(getEnv("INSTRUMENTS", "BTCUSDT,ETHUSDT")),
	}, nil
}

// helper env(string) to int with fallback
func EnvtoInt(s string, fallback int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return i
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// SplitList splits a comma-separated list, dropping empty entries.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ParsePairs parses "KEY:value,KEY2:value2" into a map. Malformed entries
// are skipped: a broken override must not take the whole config down.
func ParsePairs(s string) map[string]string {
	out := make(map[string]string)
	for _, part := range SplitList(s) {
		key, value, ok := strings.Cut(part, ":")
		if !ok || key == "" || value == "" {
			continue
		}
		out[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return out
}

// ParseFloatPairs parses "KEY:25.5,KEY2:70" into a numeric override map.
func ParseFloatPairs(s string) map[string]float64 {
	out := make(map[string]float64)
	for key, value := range ParsePairs(s) {
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			continue
		}
		out[key] = f
	}
	return out
}
