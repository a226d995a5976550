// Package config loads the service configuration from an optional YAML file, a .env file and
// FORECAST_ prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	forecaster "github.com/aouyang1/go-forecast-narrator"
	"github.com/aouyang1/go-forecast-narrator/aireport"
	"github.com/aouyang1/go-forecast-narrator/forecast/options"
	"github.com/aouyang1/go-forecast-narrator/ingest"
	"github.com/aouyang1/go-forecast-narrator/narrate"
	"github.com/aouyang1/go-forecast-narrator/report"
	"github.com/aouyang1/go-forecast-narrator/telemetry"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const EnvPrefix = "FORECAST"

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Forecast  ForecastConfig  `mapstructure:"forecast"`
	Ingest    IngestConfig    `mapstructure:"ingest"`
	Narrative NarrativeConfig `mapstructure:"narrative"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	MaxUploadMB     int           `mapstructure:"max_upload_mb"`
	FrontendDir     string        `mapstructure:"frontend_dir"`
	SampleDir       string        `mapstructure:"sample_dir"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type ForecastConfig struct {
	DefaultHorizon   int     `mapstructure:"default_horizon"`
	ResidualWindow   int     `mapstructure:"residual_window"`
	ResidualZscore   float64 `mapstructure:"residual_zscore"`
	Regularization   float64 `mapstructure:"regularization"`
	AutoChangepoints int     `mapstructure:"auto_changepoints"`
	HolidayCountry   string  `mapstructure:"holiday_country"`
	OutlierPasses    int     `mapstructure:"outlier_passes"`
}

type IngestConfig struct {
	OutlierMethod    string  `mapstructure:"outlier_method"`
	OutlierThreshold float64 `mapstructure:"outlier_threshold"`
}

type NarrativeConfig struct {
	Locale          string        `mapstructure:"locale"`
	Provider        string        `mapstructure:"provider"`
	AnthropicAPIKey string        `mapstructure:"anthropic_api_key"`
	GeminiAPIKey    string        `mapstructure:"gemini_api_key"`
	Model           string        `mapstructure:"model"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

type CacheConfig struct {
	RedisAddr string        `mapstructure:"redis_addr"`
	Password  string        `mapstructure:"password"`
	DB        int           `mapstructure:"db"`
	TTL       time.Duration `mapstructure:"ttl"`
}

type TelemetryConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Exporter string `mapstructure:"exporter"`
	Endpoint string `mapstructure:"endpoint"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads the configuration. An empty path looks for config.yaml in the working directory and
// skips it when missing, an explicit path must exist. A .env file in the working directory is
// loaded into the environment first when present.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("unable to load .env file, %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// provider keys are also read from their conventional names
	if err := v.BindEnv("narrative.anthropic_api_key", EnvPrefix+"_NARRATIVE_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY"); err != nil {
		return nil, fmt.Errorf("unable to bind anthropic api key, %w", err)
	}
	if err := v.BindEnv("narrative.gemini_api_key", EnvPrefix+"_NARRATIVE_GEMINI_API_KEY", "GEMINI_API_KEY"); err != nil {
		return nil, fmt.Errorf("unable to bind gemini api key, %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("unable to read config file, %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to unmarshal config, %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:5173"})
	v.SetDefault("server.max_upload_mb", 10)
	v.SetDefault("server.frontend_dir", "./frontend/dist")
	v.SetDefault("server.sample_dir", "./data")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("forecast.default_horizon", report.DefaultHorizonDays)
	v.SetDefault("forecast.residual_window", forecaster.DefaultResidualWindow)
	v.SetDefault("forecast.residual_zscore", forecaster.DefaultResidualZscore)
	v.SetDefault("forecast.regularization", options.DefaultRegularization)
	v.SetDefault("forecast.auto_changepoints", options.DefaultAutoNumChangepoints)
	v.SetDefault("forecast.holiday_country", "")
	v.SetDefault("forecast.outlier_passes", forecaster.DefaultOutlierPasses)

	v.SetDefault("ingest.outlier_method", ingest.OutlierMethodIQR)
	v.SetDefault("ingest.outlier_threshold", ingest.DefaultIQRFactor)

	v.SetDefault("narrative.locale", narrate.LocaleJapanese)
	v.SetDefault("narrative.provider", aireport.ProviderAnthropic)
	v.SetDefault("narrative.anthropic_api_key", "")
	v.SetDefault("narrative.gemini_api_key", "")
	v.SetDefault("narrative.model", "")
	v.SetDefault("narrative.timeout", "60s")

	v.SetDefault("cache.redis_addr", "")
	v.SetDefault("cache.password", "")
	v.SetDefault("cache.db", 0)
	v.SetDefault("cache.ttl", "1h")

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.exporter", telemetry.ExporterStdout)
	v.SetDefault("telemetry.endpoint", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Validate rejects values no component can run with
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.MaxUploadMB < 1 {
		return fmt.Errorf("server.max_upload_mb must be at least 1, got %d", c.Server.MaxUploadMB)
	}
	if c.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("server.shutdown_timeout must not be negative")
	}
	if c.Forecast.DefaultHorizon < 1 || c.Forecast.DefaultHorizon > report.MaxHorizonDays {
		return fmt.Errorf("forecast.default_horizon must be between 1 and %d, got %d", report.MaxHorizonDays, c.Forecast.DefaultHorizon)
	}
	if c.Forecast.AutoChangepoints < 0 {
		return fmt.Errorf("forecast.auto_changepoints must not be negative")
	}
	if c.Forecast.OutlierPasses < 0 {
		return fmt.Errorf("forecast.outlier_passes must not be negative")
	}
	if err := ingest.ValidateOutlierOptions(c.Ingest.OutlierMethod, c.Ingest.OutlierThreshold); err != nil {
		return fmt.Errorf("invalid ingest config, %w", err)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative")
	}
	switch strings.ToLower(c.Telemetry.Exporter) {
	case telemetry.ExporterStdout, telemetry.ExporterOTLP:
	default:
		return fmt.Errorf("telemetry.exporter %q, %w", c.Telemetry.Exporter, telemetry.ErrUnknownExporter)
	}

	reportOpt, err := c.ReportOptions(nil)
	if err != nil {
		return err
	}
	if _, err := report.New(reportOpt); err != nil {
		return fmt.Errorf("invalid forecast config, %w", err)
	}
	return nil
}

// ForecastOptions maps the forecast section onto the model options
func (c *Config) ForecastOptions() *forecaster.Options {
	opt := forecaster.NewDefaultOptions()
	opt.ResidualWindow = c.Forecast.ResidualWindow
	opt.ResidualZscore = c.Forecast.ResidualZscore

	series := opt.SeriesOptions
	series.Regularization = c.Forecast.Regularization
	series.EventOptions.HolidayCountry = strings.ToLower(c.Forecast.HolidayCountry)
	if c.Forecast.AutoChangepoints == 0 {
		series.ChangepointOptions.Auto = false
	} else {
		series.ChangepointOptions.AutoNumChangepoints = c.Forecast.AutoChangepoints
	}

	if c.Forecast.OutlierPasses > 0 {
		opt.OutlierOptions = forecaster.NewOutlierOptions()
		opt.OutlierOptions.NumPasses = c.Forecast.OutlierPasses
	} else {
		opt.OutlierOptions = nil
	}
	return opt
}

// ReportOptions builds the pipeline options. writer may be nil to always render the template
// report.
func (c *Config) ReportOptions(writer narrate.ReportWriter) (*report.Options, error) {
	opt := report.NewDefaultOptions()
	opt.Forecast = c.ForecastOptions()
	opt.OutlierMethod = c.Ingest.OutlierMethod
	opt.OutlierThreshold = c.Ingest.OutlierThreshold
	opt.Narrate = &narrate.Options{
		Locale:        c.Narrative.Locale,
		Writer:        writer,
		WriterTimeout: c.Narrative.Timeout,
	}
	if err := opt.Narrate.Validate(); err != nil {
		return nil, fmt.Errorf("invalid narrative config, %w", err)
	}
	return opt, nil
}

// WriterConfig selects the report writer. The key matching the provider is used.
func (c *Config) WriterConfig() aireport.Config {
	cfg := aireport.Config{
		Provider: c.Narrative.Provider,
		Model:    c.Narrative.Model,
		Timeout:  c.Narrative.Timeout,
	}
	switch strings.ToLower(c.Narrative.Provider) {
	case aireport.ProviderAnthropic:
		cfg.APIKey = c.Narrative.AnthropicAPIKey
	case aireport.ProviderGemini:
		cfg.APIKey = c.Narrative.GeminiAPIKey
	}
	return cfg
}

func (c *Config) TelemetryConfig() telemetry.Config {
	return telemetry.Config{
		Enabled:     c.Telemetry.Enabled,
		Exporter:    c.Telemetry.Exporter,
		Endpoint:    c.Telemetry.Endpoint,
		ServiceName: telemetry.ServiceName,
	}
}
