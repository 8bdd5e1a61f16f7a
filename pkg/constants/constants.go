// Package constants provides shared constants for the payment-plan application.
package constants

import "time"

// DateLayout is the canonical date format used for exported files and API
// payloads.
const DateLayout = "2006-01-02"

// DisplayDateLayout is the day-first format used when presenting dates to a
// user.
const DisplayDateLayout = "02-01-2006"

// Financial constants
const (
	// DecimalPlaces is the number of fractional digits kept for currency.
	DecimalPlaces = 2

	// CurrencySuffix is appended to formatted amounts.
	CurrencySuffix = "TL"

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatXLSX is the Excel workbook output format
	OutputFormatXLSX = "xlsx"
)

// Parsing profile names
const (
	// ProfileAuto probes the file to pick a layout.
	ProfileAuto = "auto"

	// ProfileA is the layout with a leading blank line.
	ProfileA = "a"

	// ProfileB is the layout with metadata on the first line.
	ProfileB = "b"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// EnvPrefix is the prefix for environment overrides, e.g. PAYMENTPLAN_OUTPUT_FORMAT.
	EnvPrefix = "PAYMENTPLAN"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the web UI
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum upload size for schedule files (1 MB)
	DefaultMaxUploadSizeBytes int64 = 1024 * 1024

	// DefaultSessionIdle is how long an untouched session schedule is kept.
	DefaultSessionIdle = 2 * time.Hour

	// SessionHeader carries the session id on API requests.
	SessionHeader = "X-Session-ID"

	// SessionCookie carries the session id for the browser UI.
	SessionCookie = "session"
)

// Listing scraper defaults
const (
	// DefaultListingTimeout bounds a single listing page fetch.
	DefaultListingTimeout = 15 * time.Second

	// DefaultListingUserAgent is sent with listing page requests.
	DefaultListingUserAgent = "Mozilla/5.0 (compatible; payment-plan/1.0)"

	// DefaultSMSNumber is the short number that answers damage record queries.
	DefaultSMSNumber = "5664"

	// SMSQueryKeyword prefixes the plate in the damage record query body.
	SMSQueryKeyword = "HASAR"
)

// Validation constants
const (
	// MaxInstallments caps generated schedules; 50 years of monthly payments.
	MaxInstallments = 600

	// MaxIntervalMonths caps the gap between generated payments.
	MaxIntervalMonths = 120

	// RoundingTolerancePerInstallment is the largest drift a single rounded
	// installment may introduce (half a cent).
	RoundingTolerancePerInstallment = "0.005"
)
