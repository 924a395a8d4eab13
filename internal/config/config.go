package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/redealvo/rede-cli/internal/model"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Snapshot   SnapshotConfig   `yaml:"snapshot" mapstructure:"snapshot"`
	Thresholds ThresholdsConfig `yaml:"thresholds" mapstructure:"thresholds"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ServerConfig configures the read-only HTTP API.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// SnapshotConfig configures the background snapshot refresh.
type SnapshotConfig struct {
	RefreshSecs    int `yaml:"refresh_secs" mapstructure:"refresh_secs"`
	MinRefreshSecs int `yaml:"min_refresh_secs" mapstructure:"min_refresh_secs"`
}

// ThresholdsConfig is the fallback patent threshold set used when the
// administrator has not saved a record yet.
type ThresholdsConfig struct {
	Bronze  float64 `yaml:"bronze" mapstructure:"bronze"`
	Prata   float64 `yaml:"prata" mapstructure:"prata"`
	Ouro    float64 `yaml:"ouro" mapstructure:"ouro"`
	Platina float64 `yaml:"platina" mapstructure:"platina"`
}

// Model converts the fallback thresholds to the engine's type.
func (t ThresholdsConfig) Model() model.PatentThresholds {
	return model.PatentThresholds{Bronze: t.Bronze, Prata: t.Prata, Ouro: t.Ouro, Platina: t.Platina}
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
	v.SetEnvPrefix("REDE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	d := model.DefaultThresholds()
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "rede.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("snapshot.refresh_secs", 60)
	v.SetDefault("snapshot.min_refresh_secs", 5)
	v.SetDefault("thresholds.bronze", d.Bronze)
	v.SetDefault("thresholds.prata", d.Prata)
	v.SetDefault("thresholds.ouro", d.Ouro)
	v.SetDefault("thresholds.platina", d.Platina)
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

	if err := cfg.Thresholds.Model().Validate(); err != nil {
		return nil, eris.Wrap(err, "config: thresholds")
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
