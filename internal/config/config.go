package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Environment  string             `mapstructure:"environment"`
	LogLevel     string             `mapstructure:"log_level"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Redis        RedisConfig        `mapstructure:"redis"`
	MarketData   MarketDataConfig   `mapstructure:"market_data"`
	Scan         ScanConfig         `mapstructure:"scan"`
	Filter       FilterConfig       `mapstructure:"filter"`
	Gap          GapConfig          `mapstructure:"gap"`
	Squeeze      SqueezeConfig      `mapstructure:"squeeze"`
	Watchlist    WatchlistConfig    `mapstructure:"watchlist"`
	Intraday     IntradayConfig     `mapstructure:"intraday"`
	Confirmation ConfirmationConfig `mapstructure:"confirmation"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// MarketDataConfig configures the HTTP client for the external bar
// data service used to backfill intraday history.
type MarketDataConfig struct {
	ServiceURL string        `mapstructure:"service_url"`
	Timeout    int           `mapstructure:"timeout"`
	MarkerTTL  time.Duration `mapstructure:"marker_ttl"`
}

// ScanConfig controls the daily-analysis stage of a pipeline run.
// A zero TimeBudget means the run has no deadline.
type ScanConfig struct {
	Workers         int           `mapstructure:"workers"`
	HistoryDays     int           `mapstructure:"history_days"`
	MinHistoryBars  int           `mapstructure:"min_history_bars"`
	MinFilteredBars int           `mapstructure:"min_filtered_bars"`
	TimeBudget      time.Duration `mapstructure:"time_budget"`
	ShuffleUniverse bool          `mapstructure:"shuffle_universe"`
}

type FilterConfig struct {
	MinPrice           float64 `mapstructure:"min_price"`
	MinDollarVolume    float64 `mapstructure:"min_dollar_volume"`
	DollarVolumeWindow int     `mapstructure:"dollar_volume_window"`
	MaxGap             float64 `mapstructure:"max_gap"`
}

type GapConfig struct {
	Lookback     int     `mapstructure:"lookback"`
	MinGap       float64 `mapstructure:"min_gap"`
	MinMoveRatio float64 `mapstructure:"min_move_ratio"`
}

type SqueezeConfig struct {
	SqueezePeriod      int     `mapstructure:"squeeze_period"`
	ShortWindow        int     `mapstructure:"short_window"`
	LongWindow         int     `mapstructure:"long_window"`
	ReferenceLookback  int     `mapstructure:"reference_lookback"`
	LowVolQuantile     float64 `mapstructure:"low_vol_quantile"`
	MinSqueezeFraction float64 `mapstructure:"min_squeeze_fraction"`
	ReleaseThreshold   float64 `mapstructure:"release_threshold"`
	MaxReleaseStrength float64 `mapstructure:"max_release_strength"`
}

type WatchlistConfig struct {
	TopN     int     `mapstructure:"top_n"`
	MinScore float64 `mapstructure:"min_score"`
}

type IntradayConfig struct {
	Interval string `mapstructure:"interval"`
	Days     int    `mapstructure:"days"`
	Workers  int    `mapstructure:"workers"`
}

type ConfirmationConfig struct {
	MinBars          int     `mapstructure:"min_bars"`
	OpeningRangeBars int     `mapstructure:"opening_range_bars"`
	MinORQuality     float64 `mapstructure:"min_or_quality"`
	LevelTolerance   float64 `mapstructure:"level_tolerance"`
	MinVolumeBars    int     `mapstructure:"min_volume_bars"`
	VolumeRatio      float64 `mapstructure:"volume_ratio"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	// Set default values
	setDefaults()

	// Enable environment variable support
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		// Config file not found, use defaults and environment variables
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	config.Environment = strings.ToLower(config.Environment)

	// Duration fields decode from strings at unmarshal time, so a bad
	// duration already failed above. Remaining checks are cross-field.
	if config.Scan.TimeBudget < 0 {
		return nil, fmt.Errorf("scan time budget must not be negative, got %s", config.Scan.TimeBudget)
	}
	if config.MarketData.MarkerTTL <= 0 {
		return nil, fmt.Errorf("market data marker TTL must be positive, got %s", config.MarketData.MarkerTTL)
	}
	if config.Squeeze.ShortWindow >= config.Squeeze.LongWindow {
		return nil, fmt.Errorf("squeeze short window (%d) must be below long window (%d)",
			config.Squeeze.ShortWindow, config.Squeeze.LongWindow)
	}

	return &config, nil
}

func setDefaults() {
	// Environment
	viper.SetDefault("environment", "development")
	viper.SetDefault("log_level", "info")

	// Database
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "postgres")
	viper.SetDefault("database.dbname", "eventscan")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.conn_max_lifetime", 5*time.Minute)

	// Redis
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	// Market data service
	viper.SetDefault("market_data.service_url", "http://localhost:3001")
	viper.SetDefault("market_data.timeout", 30)
	viper.SetDefault("market_data.marker_ttl", 24*time.Hour)

	// Scan
	viper.SetDefault("scan.workers", 0) // 0 = GOMAXPROCS
	viper.SetDefault("scan.history_days", 180)
	viper.SetDefault("scan.min_history_bars", 60)
	viper.SetDefault("scan.min_filtered_bars", 30)
	viper.SetDefault("scan.time_budget", time.Duration(0))
	viper.SetDefault("scan.shuffle_universe", true)

	// Daily filter
	viper.SetDefault("filter.min_price", 5.0)
	viper.SetDefault("filter.min_dollar_volume", 1000000.0)
	viper.SetDefault("filter.dollar_volume_window", 20)
	viper.SetDefault("filter.max_gap", 0.5)

	// Gap analyzer
	viper.SetDefault("gap.lookback", 60)
	viper.SetDefault("gap.min_gap", 0.01)
	viper.SetDefault("gap.min_move_ratio", 0.5)

	// Squeeze-release analyzer
	viper.SetDefault("squeeze.squeeze_period", 20)
	viper.SetDefault("squeeze.short_window", 5)
	viper.SetDefault("squeeze.long_window", 20)
	viper.SetDefault("squeeze.reference_lookback", 60)
	viper.SetDefault("squeeze.low_vol_quantile", 0.2)
	viper.SetDefault("squeeze.min_squeeze_fraction", 0.6)
	viper.SetDefault("squeeze.release_threshold", 2.0)
	viper.SetDefault("squeeze.max_release_strength", 3.0)

	// Watchlist
	viper.SetDefault("watchlist.top_n", 20)
	viper.SetDefault("watchlist.min_score", 50.0)

	// Intraday loading
	viper.SetDefault("intraday.interval", "5m")
	viper.SetDefault("intraday.days", 5)
	viper.SetDefault("intraday.workers", 4)

	// Intraday confirmation
	viper.SetDefault("confirmation.min_bars", 10)
	viper.SetDefault("confirmation.opening_range_bars", 6)
	viper.SetDefault("confirmation.min_or_quality", 0.6)
	viper.SetDefault("confirmation.level_tolerance", 0.005)
	viper.SetDefault("confirmation.min_volume_bars", 20)
	viper.SetDefault("confirmation.volume_ratio", 1.5)
}
