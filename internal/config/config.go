// Package config defines the application settings and loads them from a
// YAML file with environment overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/iwvelando/payment-plan/pkg/constants"
	"github.com/iwvelando/payment-plan/pkg/validation"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for payment-plan.
type Configuration struct {
	Logging LoggingConfig `yaml:"logging,omitempty"`
	Output  OutputConfig  `yaml:"output,omitempty"`
	Parsing ParsingConfig `yaml:"parsing,omitempty"`
	Listing ListingConfig `yaml:"listing,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv, xlsx
}

// ParsingConfig selects how uploaded plans are read and shown.
type ParsingConfig struct {
	Profile     string `yaml:"profile,omitempty"`     // auto, a, b
	DefaultPlan string `yaml:"defaultPlan,omitempty"` // minimum, on_time, maximum
}

// ListingConfig configures the vehicle listing fetcher.
type ListingConfig struct {
	UserAgent string        `yaml:"userAgent,omitempty"`
	Timeout   time.Duration `yaml:"timeout,omitempty"`
	SMSNumber string        `yaml:"smsNumber,omitempty"`
}

// Default returns the configuration used when nothing is set.
func Default() Configuration {
	return Configuration{
		Logging: LoggingConfig{Level: "info", Format: "console"},
		Output:  OutputConfig{Format: constants.OutputFormatPretty},
		Parsing: ParsingConfig{Profile: constants.ProfileAuto, DefaultPlan: "on_time"},
		Listing: ListingConfig{
			UserAgent: constants.DefaultListingUserAgent,
			Timeout:   constants.DefaultListingTimeout,
			SMSNumber: constants.DefaultSMSNumber,
		},
	}
}

func newViper() *viper.Viper {
	v := viper.New()
	def := Default()
	v.SetDefault("logging.level", def.Logging.Level)
	v.SetDefault("logging.format", def.Logging.Format)
	v.SetDefault("logging.outputFile", def.Logging.OutputFile)
	v.SetDefault("output.format", def.Output.Format)
	v.SetDefault("parsing.profile", def.Parsing.Profile)
	v.SetDefault("parsing.defaultPlan", def.Parsing.DefaultPlan)
	v.SetDefault("listing.userAgent", def.Listing.UserAgent)
	v.SetDefault("listing.timeout", def.Listing.Timeout)
	v.SetDefault("listing.smsNumber", def.Listing.SMSNumber)

	// PAYMENTPLAN_OUTPUT_FORMAT overrides output.format and so on.
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there. An empty path loads the defaults and environment
// overrides only.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file, %s", err)
		}
	}

	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	if err := configuration.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &configuration, nil
}

// Validate checks every setting with a fixed set of valid values.
func (c *Configuration) Validate() error {
	cv := validation.ConfigValidator{
		OutputFormat:   c.Output.Format,
		Profile:        c.Parsing.Profile,
		DefaultPlan:    c.Parsing.DefaultPlan,
		SMSNumber:      c.Listing.SMSNumber,
		ListingTimeout: c.Listing.Timeout,
	}
	return cv.ValidateAll()
}
