package validation

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/iwvelando/payment-plan/internal/schedule"
)

// ValidateProfile checks a parsing profile name ("auto", "a" or "b").
func ValidateProfile(name string) error {
	_, _, err := schedule.LookupProfile(name)
	return err
}

// ValidatePlan checks a default plan name.
func ValidatePlan(name string) error {
	_, err := schedule.ParseScenario(name)
	return err
}

// ValidateSMSNumber checks that a short number is made of digits only.
func ValidateSMSNumber(number string) error {
	if number == "" {
		return fmt.Errorf("sms number is empty")
	}
	if strings.IndexFunc(number, func(r rune) bool { return !unicode.IsDigit(r) }) >= 0 {
		return fmt.Errorf("sms number %q must contain digits only", number)
	}
	return nil
}

// ConfigValidator checks the application settings that have a fixed set of
// valid values.
type ConfigValidator struct {
	OutputFormat   string
	Profile        string
	DefaultPlan    string
	SMSNumber      string
	ListingTimeout time.Duration
}

// ValidateAll returns every problem found, joined, or nil.
func (cv *ConfigValidator) ValidateAll() error {
	var errs []error

	if err := ValidateOutputFormat(cv.OutputFormat); err != nil {
		errs = append(errs, err)
	}
	if err := ValidateProfile(cv.Profile); err != nil {
		errs = append(errs, fmt.Errorf("parsing.profile: %w", err))
	}
	if err := ValidatePlan(cv.DefaultPlan); err != nil {
		errs = append(errs, fmt.Errorf("parsing.defaultPlan: %w", err))
	}
	if err := ValidateSMSNumber(cv.SMSNumber); err != nil {
		errs = append(errs, fmt.Errorf("listing.smsNumber: %w", err))
	}
	if cv.ListingTimeout <= 0 {
		errs = append(errs, fmt.Errorf("listing.timeout must be positive, got %s", cv.ListingTimeout))
	}

	return errors.Join(errs...)
}
