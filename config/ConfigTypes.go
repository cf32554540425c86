package config

type config struct {
	Database    DatabaseConfig
	Exchange    ExchangeConfig
	Server      ServerConfig
	Engine      EngineConfig
	Strategy    StrategyConfig
	LogLevel    string
	Instruments []string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

type ExchangeConfig struct {
	APIKey    string
	SecretKey string
}

type ServerConfig struct {
	Port int
}

type EngineConfig struct {
	// GenerateSchedule is the cron spec driving live signal generation.
	GenerateSchedule string
	// BackfillDays is how much daily history to fetch on startup.
	BackfillDays int
	// NotifyMinStrength is the threshold above which written signals are
	// surfaced for the external notifier.
	NotifyMinStrength int
}

// StrategyConfig is the explicit strategy mapping handed to the registry at
// startup. Tests construct it directly; production fills it from the
// environment exactly once in Load.
type StrategyConfig struct {
	InstrumentStrategies map[string]string
	InstrumentClasses    map[string]string
	AssetClassDefaults   map[string]string
	RSIOversold          map[string]float64
	RSIOverbought        map[string]float64
}
