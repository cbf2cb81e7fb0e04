package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Data   DataConfig   `yaml:"data" mapstructure:"data"`
	Bandit BanditConfig `yaml:"bandit" mapstructure:"bandit"`
	Foods  FoodsConfig  `yaml:"foods" mapstructure:"foods"`
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// DataConfig points at the reference data files loaded at startup.
type DataConfig struct {
	CutoffsPath       string `yaml:"cutoffs_path" mapstructure:"cutoffs_path"`
	RelationshipsPath string `yaml:"relationships_path" mapstructure:"relationships_path"`
	AliasesPath       string `yaml:"aliases_path" mapstructure:"aliases_path"`
	RiskDataPath      string `yaml:"risk_data_path" mapstructure:"risk_data_path"`
	FoodsPath         string `yaml:"foods_path" mapstructure:"foods_path"`
}

// BanditConfig configures offline LinUCB training.
type BanditConfig struct {
	Steps         int     `yaml:"steps" mapstructure:"steps"`
	Seed          int64   `yaml:"seed" mapstructure:"seed"`
	Alpha         float64 `yaml:"alpha" mapstructure:"alpha"`
	ReuseSnapshot bool    `yaml:"reuse_snapshot" mapstructure:"reuse_snapshot"`
}

// FoodsConfig configures food suggestions.
type FoodsConfig struct {
	TopN int `yaml:"top_n" mapstructure:"top_n"`
}

// StoreConfig configures the optional run/snapshot store.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"` // "sqlite", "postgres" or "none"
	Path        string `yaml:"path" mapstructure:"path"`     // sqlite file
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port        int     `yaml:"port" mapstructure:"port"`
	ReportRPS   float64 `yaml:"report_rps" mapstructure:"report_rps"`
	ReportBurst int     `yaml:"report_burst" mapstructure:"report_burst"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("HEMOVITA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("data.cutoffs_path", "data/micronutrient_cutoffs_structured.csv")
	v.SetDefault("data.relationships_path", "data/network_relationships.csv")
	v.SetDefault("data.aliases_path", "data/aliases.yaml")
	v.SetDefault("data.risk_data_path", "data/micronutrient_data.csv")
	v.SetDefault("data.foods_path", "data/foods_usda.csv")
	v.SetDefault("bandit.steps", 30000)
	v.SetDefault("bandit.seed", 42)
	v.SetDefault("bandit.alpha", 1.0)
	v.SetDefault("bandit.reuse_snapshot", false)
	v.SetDefault("foods.top_n", 5)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "hemovita.db")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.report_rps", 10)
	v.SetDefault("server.report_burst", 20)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
