// Package constants provides shared constants for the loan-schedule application.
package constants

// DateLayout is the canonical date format used for output and for requests
// that do not carry a dateFormat.
const DateLayout = "2006-01-02"

// Request defaults
const (
	// DefaultLocale is used when a request does not carry a locale.
	DefaultLocale = "en"

	// DefaultDateFormat is the Java-style pattern used when a request does not
	// carry a dateFormat.
	DefaultDateFormat = "yyyy-MM-dd"

	// LocaleParameter names the bag key holding the locale.
	LocaleParameter = "locale"

	// DateFormatParameter names the bag key holding the date pattern.
	DateFormatParameter = "dateFormat"
)

// Financial constants
const (
	// DaysPerYear is the default day-count basis for daily interest.
	DaysPerYear = 365

	// WeeksPerYear is the number of weeks in a year.
	WeeksPerYear = 52

	// MonthsPerYear is the number of months in a year.
	MonthsPerYear = 12

	// DefaultCurrencyScale is the number of minor-unit digits money is
	// rounded to.
	DefaultCurrencyScale int32 = 2

	// PercentageMultiplier is used for percentage conversions.
	PercentageMultiplier = 100

	// RateDivisionPrecision is the number of decimal places kept when
	// dividing rates before any rounding to currency.
	RateDivisionPrecision int32 = 20
)

// Schedule limits
const (
	// MaxNumberOfRepayments caps the installments of one schedule.
	MaxNumberOfRepayments = 5000

	// MaxScheduleYears caps the distance between disbursement and the last
	// due date.
	MaxScheduleYears = 100
)

// Rounding modes
const (
	// RoundingHalfUp rounds halves away from zero.
	RoundingHalfUp = "halfUp"

	// RoundingHalfEven rounds halves to the nearest even digit.
	RoundingHalfEven = "halfEven"
)

// Disbursement charge handling
const (
	// DisbursementChargesDeduct reduces the net disbursed amount.
	DisbursementChargesDeduct = "deduct"

	// DisbursementChargesFirstPeriod adds the charge to period 1 fees.
	DisbursementChargesFirstPeriod = "firstPeriod"
)

// Validation resources
const (
	// LoanResource is the resource name used for schedule validation errors.
	LoanResource = "loan"

	// TaxResource is the resource name used for tax validation errors.
	TaxResource = "tax"

	// ValidationMessagePrefix prefixes every field-scoped message key.
	ValidationMessagePrefix = "validation.msg"
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"
)

// Operation modes
const (
	// ModeSchedule computes a repayment schedule.
	ModeSchedule = "schedule"

	// ModeTax computes the tax-adjusted principal only.
	ModeTax = "tax"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// EnvPrefix prefixes environment overrides read by viper.
	EnvPrefix = "LOAN"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum request body size (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024

	// DefaultCacheTTLSeconds is how long cached schedules live.
	DefaultCacheTTLSeconds = 300
)
