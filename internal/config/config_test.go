package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadConfiguration(t *testing.T) {
	tests := []struct {
		name       string
		configPath string
		wantError  bool
	}{
		{
			name:       "Non-existent config file",
			configPath: "nonexistent.yaml",
			wantError:  true,
		},
		{
			name:       "No config file",
			configPath: "",
			wantError:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := LoadConfiguration(tt.configPath)
			if tt.wantError {
				if err == nil {
					t.Errorf("LoadConfiguration() expected error but got none")
				}
				return
			}
			if err != nil {
				t.Errorf("LoadConfiguration() error = %v", err)
				return
			}
			if config == nil {
				t.Errorf("LoadConfiguration() returned nil config")
			}
		})
	}
}

func TestLoadConfigurationDefaults(t *testing.T) {
	config, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	want := Default()
	if *config != want {
		t.Errorf("LoadConfiguration(\"\") = %+v, want %+v", *config, want)
	}
}

func TestLoadConfigurationFile(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: debug
  format: json
output:
  format: xlsx
parsing:
  profile: b
  defaultPlan: maximum
listing:
  userAgent: plan-bot/2.0
  timeout: 30s
  smsNumber: "1234"
`)

	config, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if config.Logging.Level != "debug" || config.Logging.Format != "json" {
		t.Errorf("Logging = %+v", config.Logging)
	}
	if config.Output.Format != "xlsx" {
		t.Errorf("Output.Format = %s, want xlsx", config.Output.Format)
	}
	if config.Parsing.Profile != "b" || config.Parsing.DefaultPlan != "maximum" {
		t.Errorf("Parsing = %+v", config.Parsing)
	}
	if config.Listing.UserAgent != "plan-bot/2.0" || config.Listing.Timeout != 30*time.Second || config.Listing.SMSNumber != "1234" {
		t.Errorf("Listing = %+v", config.Listing)
	}
}

func TestLoadConfigurationPartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, "output:\n  format: csv\n")

	config, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if config.Output.Format != "csv" {
		t.Errorf("Output.Format = %s, want csv", config.Output.Format)
	}
	if config.Listing.SMSNumber != Default().Listing.SMSNumber {
		t.Errorf("Listing.SMSNumber = %s, want default", config.Listing.SMSNumber)
	}
	if config.Parsing.Profile != "auto" {
		t.Errorf("Parsing.Profile = %s, want auto", config.Parsing.Profile)
	}
}

func TestLoadConfigurationEnvironmentOverride(t *testing.T) {
	t.Setenv("PAYMENTPLAN_OUTPUT_FORMAT", "csv")
	t.Setenv("PAYMENTPLAN_LISTING_TIMEOUT", "5s")
	path := writeConfig(t, "output:\n  format: xlsx\n")

	config, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if config.Output.Format != "csv" {
		t.Errorf("Output.Format = %s, want csv from the environment", config.Output.Format)
	}
	if config.Listing.Timeout != 5*time.Second {
		t.Errorf("Listing.Timeout = %s, want 5s", config.Listing.Timeout)
	}
}

func TestLoadConfigurationInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "output format", content: "output:\n  format: json\n", wantErr: "output format"},
		{name: "profile", content: "parsing:\n  profile: c\n", wantErr: "parsing.profile"},
		{name: "plan", content: "parsing:\n  defaultPlan: soon\n", wantErr: "parsing.defaultPlan"},
		{name: "sms number", content: "listing:\n  smsNumber: abc\n", wantErr: "listing.smsNumber"},
		{name: "malformed yaml", content: "output: [", wantErr: "error reading config file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfiguration(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("LoadConfiguration() expected error but got none")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("LoadConfiguration() error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}
