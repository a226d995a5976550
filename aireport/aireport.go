// Package aireport writes the detailed markdown report with a hosted text generation model. Each
// writer satisfies narrate.ReportWriter.
package aireport

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aouyang1/go-forecast-narrator/narrate"
)

const (
	ProviderNone      = "none"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"

	DefaultMaxTokens   = 4000
	DefaultTemperature = 0.7
	DefaultTimeout     = 60 * time.Second
)

var (
	ErrNoAPIKey        = errors.New("no api key configured")
	ErrUnknownProvider = errors.New("unknown report provider")
	ErrEmptyResponse   = errors.New("no text returned")
	ErrRequestFailed   = errors.New("report request failed")
)

// Config selects and configures a report writer
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	BaseURL     string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxTokens <= 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.Temperature <= 0 {
		c.Temperature = DefaultTemperature
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}

// New returns the writer for the configured provider. A missing key or the none provider returns
// a nil writer and no error so reports fall back to the template.
func New(cfg Config) (narrate.ReportWriter, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" || provider == ProviderNone || cfg.APIKey == "" {
		return nil, nil
	}

	switch provider {
	case ProviderAnthropic:
		w, err := NewAnthropic(cfg)
		if err != nil {
			return nil, err
		}
		return w, nil
	case ProviderGemini:
		w, err := NewGemini(cfg)
		if err != nil {
			return nil, err
		}
		return w, nil
	default:
		return nil, fmt.Errorf("%q, %w", cfg.Provider, ErrUnknownProvider)
	}
}
