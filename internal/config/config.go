// Package config defines the data structures related to configuration and
// includes functions for loading and parsing the config.
package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/loan-schedule/pkg/constants"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for loan-schedule.
type Configuration struct {
	Logging LoggingConfig  `yaml:"logging,omitempty"`
	Output  OutputConfig   `yaml:"output,omitempty"`
	Engine  EngineConfig   `yaml:"engine,omitempty"`
	Charges []ChargeConfig `yaml:"charges,omitempty"`
	Server  ServerConfig   `yaml:"server,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv, json
}

// EngineConfig tunes the schedule arithmetic and request defaults.
type EngineConfig struct {
	CurrencyScale       int32  `yaml:"currencyScale,omitempty"`
	RoundingMode        string `yaml:"roundingMode,omitempty"` // halfUp, halfEven
	DaysInYear          int    `yaml:"daysInYear,omitempty"`
	DefaultLocale       string `yaml:"defaultLocale,omitempty"`
	DefaultDateFormat   string `yaml:"defaultDateFormat,omitempty"`
	DisbursementCharges string `yaml:"disbursementCharges,omitempty"` // deduct, firstPeriod
}

// ChargeConfig is one entry of the charge catalog. Requests referencing the
// id inherit its time and calculation types when they omit them.
type ChargeConfig struct {
	ID                    int64  `yaml:"id"`
	Name                  string `yaml:"name,omitempty"`
	ChargeTimeType        int64  `yaml:"chargeTimeType"`
	ChargeCalculationType int64  `yaml:"chargeCalculationType"`
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Address       string      `yaml:"address,omitempty"`
	MaxUploadSize string      `yaml:"maxUploadSize,omitempty"`
	Cache         CacheConfig `yaml:"cache,omitempty"`
}

// CacheConfig controls the schedule response cache. An empty RedisAddress
// selects the in-process cache.
type CacheConfig struct {
	Enabled      bool   `yaml:"enabled"`
	RedisAddress string `yaml:"redisAddress,omitempty"`
	TTL          int    `yaml:"ttl,omitempty"` // seconds
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}
	return decode(v)
}

// LoadConfigurationFromReader loads YAML configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}
	return decode(v)
}

// Default returns the configuration used when no file is given, still
// honouring LOAN_* environment overrides.
func Default() (*Configuration, error) {
	return decode(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yml")
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults double as the key registry AutomaticEnv needs to see
	// overrides of keys absent from the file.
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.outputFile", "")
	v.SetDefault("output.format", constants.OutputFormatPretty)
	v.SetDefault("engine.currencyScale", constants.DefaultCurrencyScale)
	v.SetDefault("engine.roundingMode", constants.RoundingHalfUp)
	v.SetDefault("engine.daysInYear", constants.DaysPerYear)
	v.SetDefault("engine.defaultLocale", constants.DefaultLocale)
	v.SetDefault("engine.defaultDateFormat", constants.DefaultDateFormat)
	v.SetDefault("engine.disbursementCharges", constants.DisbursementChargesDeduct)
	v.SetDefault("server.address", constants.DefaultServerAddress)
	v.SetDefault("server.maxUploadSize", fmt.Sprintf("%d", constants.DefaultMaxUploadSizeBytes))
	v.SetDefault("server.cache.enabled", false)
	v.SetDefault("server.cache.redisAddress", "")
	v.SetDefault("server.cache.ttl", constants.DefaultCacheTTLSeconds)
	return v
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}
	return &configuration, nil
}
