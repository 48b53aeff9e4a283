// Package config loads the daemon configuration from environment
// variables. Values are read once into a Config that gets passed down, so
// nothing below main touches the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const defaultBaseURL = "https://eventsapi.chaturbate.com/events/"

// Config aggregates every tunable of the daemon.
type Config struct {
	API APIConfig
	LED LEDConfig

	// Alert behavior
	ColorAlertTokens int           // tips of at least this many tokens may change the color
	AlertDuration    time.Duration // sparkle / pulse phase length
	ColorHold        time.Duration // how long a tipped color stays on

	MetricsAddr string // empty disables the metrics listener
	LogLevel    string
}

// APIConfig holds the events feed credentials and endpoint.
type APIConfig struct {
	Username string
	Token    string
	BaseURL  string
	Timeout  time.Duration // server-side long-poll window
}

// LEDConfig holds the strip parameters.
type LEDConfig struct {
	Pin        int
	Count      int
	Brightness int // 0-255
}

// FeedURL composes the initial polling URL; the server hands back a
// nextUrl cursor from there on.
func (a APIConfig) FeedURL() string {
	base := a.BaseURL
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return fmt.Sprintf("%s%s/%s/?timeout=%d", base, a.Username, a.Token, int(a.Timeout.Seconds()))
}

// Load reads the environment and returns a validated Config.
func Load() (Config, error) {
	cfg := Config{
		API: APIConfig{
			Username: strings.TrimSpace(os.Getenv("USERNAME")),
			Token:    strings.TrimSpace(os.Getenv("TOKEN")),
			BaseURL:  getEnv("BASE_URL", defaultBaseURL),
			Timeout:  getEnvSeconds("TIMEOUT", 30*time.Second),
		},
		LED: LEDConfig{
			Pin:        getEnvInt("LED_PIN", 18),
			Count:      getEnvInt("LED_COUNT", 5),
			Brightness: getEnvInt("LED_BRIGHTNESS", 50),
		},
		ColorAlertTokens: getEnvInt("COLOR_ALERT_TOKENS", 35),
		AlertDuration:    getEnvSeconds("ALERT_DURATION", 2500*time.Millisecond),
		ColorHold:        getEnvSeconds("COLOR_HOLD", 10*time.Minute),
		MetricsAddr:      strings.TrimSpace(os.Getenv("METRICS_ADDR")),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.API.Username == "" {
		return errors.New("USERNAME is required")
	}
	if c.API.Token == "" {
		return errors.New("TOKEN is required")
	}
	if c.API.Timeout <= 0 {
		return errors.New("TIMEOUT must be greater than zero")
	}
	if c.LED.Count <= 0 {
		return errors.New("LED_COUNT must be greater than zero")
	}
	if c.LED.Brightness < 0 || c.LED.Brightness > 255 {
		return errors.New("LED_BRIGHTNESS must be between 0 and 255")
	}
	if c.ColorAlertTokens <= 0 {
		return errors.New("COLOR_ALERT_TOKENS must be greater than zero")
	}
	if c.AlertDuration <= 0 {
		return errors.New("ALERT_DURATION must be greater than zero")
	}
	if c.ColorHold <= 0 {
		return errors.New("COLOR_HOLD must be greater than zero")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// getEnvSeconds parses a (possibly fractional) number of seconds, e.g.
// ALERT_DURATION=2.5.
func getEnvSeconds(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	secs, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return time.Duration(secs * float64(time.Second))
}
