// Package config loads papertrade settings from an optional file and
// PAPERTRADE_* environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/zappabad/papertrade/internal/logging"
	"github.com/zappabad/papertrade/internal/market"
	"github.com/zappabad/papertrade/internal/session"
)

// EnvPrefix prefixes every environment override, e.g.
// PAPERTRADE_SESSION_TICK_INTERVAL.
const EnvPrefix = "PAPERTRADE"

// Config is the top-level configuration.
type Config struct {
	Session     SessionConfig      `mapstructure:"session"`
	Server      ServerConfig       `mapstructure:"server"`
	Log         LogConfig          `mapstructure:"log"`
	Ledger      LedgerConfig       `mapstructure:"ledger"`
	Instruments []InstrumentConfig `mapstructure:"instruments" validate:"unique=Symbol,dive"`
}

// SessionConfig tunes the simulation.
type SessionConfig struct {
	TickInterval    time.Duration `mapstructure:"tick_interval"    validate:"gt=0"`
	ResetDelay      time.Duration `mapstructure:"reset_delay"      validate:"gte=0"`
	StartingBalance float64       `mapstructure:"starting_balance" validate:"gt=0"`
	DefaultRange    string        `mapstructure:"default_range"    validate:"oneof=1D 1W 1M 3M YTD ALL"`
	EventBuffer     int           `mapstructure:"event_buffer"     validate:"gt=0"`
	DropEvents      bool          `mapstructure:"drop_events"`
	ActivitySize    int           `mapstructure:"activity_size"    validate:"gt=0"`
	Seed            uint64        `mapstructure:"seed"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"             validate:"required"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

// LogConfig configures logging and rotation.
type LogConfig struct {
	Level      string `mapstructure:"level" validate:"oneof=debug info warn error"`
	File       string `mapstructure:"file"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// LedgerConfig enables the Postgres transaction journal when DSN is set.
type LedgerConfig struct {
	DSN    string `mapstructure:"dsn"`
	Buffer int    `mapstructure:"buffer" validate:"gt=0"`
}

// InstrumentConfig overrides one catalog entry.
type InstrumentConfig struct {
	Symbol        string  `mapstructure:"symbol"         validate:"required"`
	Name          string  `mapstructure:"name"`
	Price         float64 `mapstructure:"price"          validate:"gt=0"`
	Change        float64 `mapstructure:"change"`
	ChangePercent float64 `mapstructure:"change_percent"`
	Volume        string  `mapstructure:"volume"`
	MarketCap     string  `mapstructure:"market_cap"`
}

// Default returns the built-in configuration.
func Default() Config {
	def := session.DefaultConfig()
	return Config{
		Session: SessionConfig{
			TickInterval:    def.TickInterval,
			ResetDelay:      def.ResetDelay,
			StartingBalance: def.StartingBalance.InexactFloat64(),
			DefaultRange:    string(def.DefaultRange),
			EventBuffer:     def.EventBuffer,
			DropEvents:      def.DropEvents,
			ActivitySize:    def.ActivitySize,
		},
		Server: ServerConfig{
			Addr:            ":8080",
			AllowedOrigins:  []string{"*"},
			ShutdownTimeout: 5 * time.Second,
		},
		Log: LogConfig{
			Level:      "info",
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     28,
		},
		Ledger: LedgerConfig{Buffer: 256},
	}
}

// Load reads path (skipped when empty) and the environment on top of
// Default, then validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config error: %w", err)
		}
	}

	var conf Config
	if err := v.Unmarshal(&conf); err != nil {
		return nil, fmt.Errorf("unmarshal config error: %w", err)
	}
	for i := range conf.Instruments {
		conf.Instruments[i].Symbol = strings.ToUpper(strings.TrimSpace(conf.Instruments[i].Symbol))
	}

	if err := validator.New().Struct(&conf); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &conf, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("session.tick_interval", d.Session.TickInterval)
	v.SetDefault("session.reset_delay", d.Session.ResetDelay)
	v.SetDefault("session.starting_balance", d.Session.StartingBalance)
	v.SetDefault("session.default_range", d.Session.DefaultRange)
	v.SetDefault("session.event_buffer", d.Session.EventBuffer)
	v.SetDefault("session.drop_events", d.Session.DropEvents)
	v.SetDefault("session.activity_size", d.Session.ActivitySize)
	v.SetDefault("session.seed", d.Session.Seed)

	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.allowed_origins", d.Server.AllowedOrigins)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.max_size", d.Log.MaxSize)
	v.SetDefault("log.max_backups", d.Log.MaxBackups)
	v.SetDefault("log.max_age", d.Log.MaxAge)
	v.SetDefault("log.compress", d.Log.Compress)

	v.SetDefault("ledger.dsn", d.Ledger.DSN)
	v.SetDefault("ledger.buffer", d.Ledger.Buffer)
}

// SessionConfig converts the loaded settings into a session.Config.
func (c *Config) SessionConfig() session.Config {
	out := session.DefaultConfig()
	out.TickInterval = c.Session.TickInterval
	out.ResetDelay = c.Session.ResetDelay
	out.StartingBalance = decimal.NewFromFloat(c.Session.StartingBalance)
	out.DefaultRange = market.TimeRange(c.Session.DefaultRange)
	out.EventBuffer = c.Session.EventBuffer
	out.DropEvents = c.Session.DropEvents
	out.ActivitySize = c.Session.ActivitySize
	out.Seed = c.Session.Seed

	if len(c.Instruments) > 0 {
		out.Instruments = make([]market.Instrument, len(c.Instruments))
		for i, ic := range c.Instruments {
			out.Instruments[i] = market.Instrument{
				Symbol:        ic.Symbol,
				Name:          ic.Name,
				Price:         ic.Price,
				Change:        ic.Change,
				ChangePercent: ic.ChangePercent,
				Volume:        ic.Volume,
				MarketCap:     ic.MarketCap,
			}
		}
	}
	return out
}

// Logging returns the logger settings for module.
func (c *Config) Logging(service, module string) logging.Config {
	return logging.Config{
		Service:    service,
		Module:     module,
		Level:      c.Log.Level,
		File:       c.Log.File,
		MaxSize:    c.Log.MaxSize,
		MaxBackups: c.Log.MaxBackups,
		MaxAge:     c.Log.MaxAge,
		Compress:   c.Log.Compress,
	}
}
