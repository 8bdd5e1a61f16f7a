package server

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/iwvelando/payment-plan/internal/config"
	"github.com/iwvelando/payment-plan/pkg/constants"
	"gopkg.in/yaml.v3"
)

// Config defines runtime parameters for the HTTP server. The logging,
// parsing and listing sections override the application configuration for
// the server only; fields left empty keep the application values.
type Config struct {
	Address       string               `yaml:"address"`
	MaxUploadSize string               `yaml:"maxUploadSize"`
	SessionIdle   string               `yaml:"sessionIdle"`
	Logging       config.LoggingConfig `yaml:"logging"`
	Parsing       config.ParsingConfig `yaml:"parsing"`
	Listing       config.ListingConfig `yaml:"listing"`

	uploadSizeBytes int64
	sessionIdle     time.Duration
}

func defaultConfig() *Config {
	return &Config{
		Address:         constants.DefaultServerAddress,
		MaxUploadSize:   strconv.FormatInt(constants.DefaultMaxUploadSizeBytes, 10),
		SessionIdle:     constants.DefaultSessionIdle.String(),
		uploadSizeBytes: constants.DefaultMaxUploadSizeBytes,
		sessionIdle:     constants.DefaultSessionIdle,
	}
}

// LoadConfig loads the server configuration from YAML. If the file does not exist,
// defaults are returned without error.
func LoadConfig(path string) (*Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read server config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse server config: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// UploadSizeBytes returns the largest accepted request body in bytes. It
// bounds file uploads and JSON bodies alike.
func (c *Config) UploadSizeBytes() int64 {
	return c.uploadSizeBytes
}

// SessionIdleDuration returns how long an untouched session is kept.
func (c *Config) SessionIdleDuration() time.Duration {
	return c.sessionIdle
}

// Effective returns the application configuration with this file's
// overrides applied, validated as a whole.
func (c *Config) Effective(app config.Configuration) (*config.Configuration, error) {
	merged := app
	override(&merged.Logging.Level, c.Logging.Level)
	override(&merged.Logging.Format, c.Logging.Format)
	override(&merged.Logging.OutputFile, c.Logging.OutputFile)
	override(&merged.Parsing.Profile, c.Parsing.Profile)
	override(&merged.Parsing.DefaultPlan, c.Parsing.DefaultPlan)
	override(&merged.Listing.UserAgent, c.Listing.UserAgent)
	override(&merged.Listing.SMSNumber, c.Listing.SMSNumber)
	if c.Listing.Timeout > 0 {
		merged.Listing.Timeout = c.Listing.Timeout
	}

	if err := merged.Validate(); err != nil {
		return nil, fmt.Errorf("invalid server overrides: %w", err)
	}
	return &merged, nil
}

func override(dst *string, value string) {
	if v := strings.TrimSpace(value); v != "" {
		*dst = v
	}
}

func (c *Config) normalize() error {
	if c.Address == "" {
		c.Address = constants.DefaultServerAddress
	}

	idle, err := parseSessionIdle(c.SessionIdle)
	if err != nil {
		return err
	}
	c.sessionIdle = idle
	c.SessionIdle = idle.String()

	size, err := ParseSize(c.MaxUploadSize)
	if err != nil {
		return err
	}
	if size <= 0 {
		size = constants.DefaultMaxUploadSizeBytes
	}
	c.uploadSizeBytes = size
	return nil
}

func parseSessionIdle(value string) (time.Duration, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return constants.DefaultSessionIdle, nil
	}
	d, err := time.ParseDuration(trimmed)
	if err != nil {
		return 0, fmt.Errorf("invalid sessionIdle %q: %w", value, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("sessionIdle must be positive, got %s", value)
	}
	return d, nil
}

// ParseSize converts a human-friendly byte string (e.g., "256K", "10M") into bytes.
func ParseSize(value string) (int64, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return constants.DefaultMaxUploadSizeBytes, nil
	}

	upper := strings.ToUpper(trimmed)
	idx := len(upper)
	for idx > 0 && !unicode.IsDigit(rune(upper[idx-1])) {
		idx--
	}
	if idx == 0 {
		return 0, fmt.Errorf("invalid size: %s", value)
	}
	numPart := strings.TrimSpace(upper[:idx])
	unitPart := strings.TrimSpace(upper[idx:])

	if numPart == "" {
		return 0, fmt.Errorf("invalid size: %s", value)
	}

	n, err := strconv.ParseInt(numPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size value %q: %w", value, err)
	}

	var multiplier int64
	switch unitPart {
	case "", "B":
		multiplier = 1
	case "K", "KB":
		multiplier = 1024
	case "M", "MB":
		multiplier = 1024 * 1024
	case "G", "GB":
		multiplier = 1024 * 1024 * 1024
	default:
		return 0, fmt.Errorf("unsupported size unit %q", unitPart)
	}

	result := n * multiplier
	if result < 0 {
		return 0, fmt.Errorf("size overflow for value %s", value)
	}
	return result, nil
}
