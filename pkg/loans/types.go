// Package loans holds the loan schedule domain: typed requests, the
// amortization generator, and the tax and charge apportioner.
package loans

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// FrequencyType is the unit of a loan term or repayment interval.
type FrequencyType int

const (
	Days FrequencyType = iota
	Weeks
	Months
	Years
)

var frequencyTypeNames = map[FrequencyType]string{
	Days:   "Days",
	Weeks:  "Weeks",
	Months: "Months",
	Years:  "Years",
}

// FrequencyTypeFromCode maps a wire code (0-3) to a FrequencyType.
func FrequencyTypeFromCode(code int64) (FrequencyType, bool) {
	f := FrequencyType(code)
	_, ok := frequencyTypeNames[f]
	return f, ok
}

// Code returns the wire code.
func (f FrequencyType) Code() int { return int(f) }

func (f FrequencyType) String() string {
	if name, ok := frequencyTypeNames[f]; ok {
		return name
	}
	return fmt.Sprintf("FrequencyType(%d)", int(f))
}

// InterestType selects the balance interest is computed on.
type InterestType int

const (
	// Flat computes interest on the original principal every period.
	Flat InterestType = iota
	// DecliningBalance computes interest on the outstanding balance.
	DecliningBalance
)

// InterestTypeFromCode maps a wire code (0-1) to an InterestType.
func InterestTypeFromCode(code int64) (InterestType, bool) {
	switch InterestType(code) {
	case Flat, DecliningBalance:
		return InterestType(code), true
	}
	return 0, false
}

// Code returns the wire code.
func (t InterestType) Code() int { return int(t) }

func (t InterestType) String() string {
	switch t {
	case Flat:
		return "Flat"
	case DecliningBalance:
		return "DecliningBalance"
	}
	return fmt.Sprintf("InterestType(%d)", int(t))
}

// InterestCalculationPeriodType is the accrual granularity.
type InterestCalculationPeriodType int

const (
	SameAsRepaymentPeriod InterestCalculationPeriodType = iota
	Daily
)

// InterestCalculationPeriodTypeFromCode maps a wire code (0-1).
func InterestCalculationPeriodTypeFromCode(code int64) (InterestCalculationPeriodType, bool) {
	switch InterestCalculationPeriodType(code) {
	case SameAsRepaymentPeriod, Daily:
		return InterestCalculationPeriodType(code), true
	}
	return 0, false
}

// Code returns the wire code.
func (t InterestCalculationPeriodType) Code() int { return int(t) }

func (t InterestCalculationPeriodType) String() string {
	switch t {
	case SameAsRepaymentPeriod:
		return "SameAsRepaymentPeriod"
	case Daily:
		return "Daily"
	}
	return fmt.Sprintf("InterestCalculationPeriodType(%d)", int(t))
}

// AmortizationType is the shape of principal repayment.
type AmortizationType int

const (
	EqualInstallments AmortizationType = iota
	EqualPrincipal
)

// AmortizationTypeFromCode maps a wire code (0-1).
func AmortizationTypeFromCode(code int64) (AmortizationType, bool) {
	switch AmortizationType(code) {
	case EqualInstallments, EqualPrincipal:
		return AmortizationType(code), true
	}
	return 0, false
}

// Code returns the wire code.
func (t AmortizationType) Code() int { return int(t) }

func (t AmortizationType) String() string {
	switch t {
	case EqualInstallments:
		return "EqualInstallments"
	case EqualPrincipal:
		return "EqualPrincipal"
	}
	return fmt.Sprintf("AmortizationType(%d)", int(t))
}

// ChargeTimeType says when a charge falls due.
type ChargeTimeType int

const (
	ChargeAtDisbursement   ChargeTimeType = 1
	ChargeSpecifiedDueDate ChargeTimeType = 2
	ChargeInstallmentFee   ChargeTimeType = 8
)

// ChargeTimeTypeFromCode maps a wire code to a ChargeTimeType.
func ChargeTimeTypeFromCode(code int64) (ChargeTimeType, bool) {
	switch ChargeTimeType(code) {
	case ChargeAtDisbursement, ChargeSpecifiedDueDate, ChargeInstallmentFee:
		return ChargeTimeType(code), true
	}
	return 0, false
}

// Code returns the wire code.
func (t ChargeTimeType) Code() int { return int(t) }

func (t ChargeTimeType) String() string {
	switch t {
	case ChargeAtDisbursement:
		return "Disbursement"
	case ChargeSpecifiedDueDate:
		return "SpecifiedDueDate"
	case ChargeInstallmentFee:
		return "InstallmentFee"
	}
	return fmt.Sprintf("ChargeTimeType(%d)", int(t))
}

// ChargeCalculationType says how a charge amount is derived.
type ChargeCalculationType int

const (
	ChargeFlat                       ChargeCalculationType = 1
	ChargePercentOfAmount            ChargeCalculationType = 2
	ChargePercentOfAmountAndInterest ChargeCalculationType = 3
	ChargePercentOfInterest          ChargeCalculationType = 4
)

// ChargeCalculationTypeFromCode maps a wire code to a ChargeCalculationType.
func ChargeCalculationTypeFromCode(code int64) (ChargeCalculationType, bool) {
	switch ChargeCalculationType(code) {
	case ChargeFlat, ChargePercentOfAmount, ChargePercentOfAmountAndInterest, ChargePercentOfInterest:
		return ChargeCalculationType(code), true
	}
	return 0, false
}

// Code returns the wire code.
func (t ChargeCalculationType) Code() int { return int(t) }

func (t ChargeCalculationType) String() string {
	switch t {
	case ChargeFlat:
		return "Flat"
	case ChargePercentOfAmount:
		return "PercentOfAmount"
	case ChargePercentOfAmountAndInterest:
		return "PercentOfAmountAndInterest"
	case ChargePercentOfInterest:
		return "PercentOfInterest"
	}
	return fmt.Sprintf("ChargeCalculationType(%d)", int(t))
}

// ChargeDefinition is catalog data for a chargeId, used when a request
// element omits its time or calculation type.
type ChargeDefinition struct {
	ID              int64
	Name            string
	TimeType        ChargeTimeType
	CalculationType ChargeCalculationType
}

// ChargeCatalog indexes charge definitions by chargeId.
type ChargeCatalog map[int64]ChargeDefinition

// LoanScheduleRequest is a validated schedule request. It is built once by
// the validator and never mutated; WithPrincipal returns a modified copy.
type LoanScheduleRequest struct {
	ProductID                       int64
	Principal                       decimal.Decimal
	LoanTermFrequency               int
	LoanTermFrequencyType           FrequencyType
	NumberOfRepayments              int
	RepaymentEvery                  int
	RepaymentFrequencyType          FrequencyType
	InterestRatePerPeriod           decimal.Decimal
	InterestRateFrequencyType       FrequencyType
	InterestType                    InterestType
	InterestCalculationPeriodType   InterestCalculationPeriodType
	AmortizationType                AmortizationType
	ExpectedDisbursementDate        time.Time
	RepaymentsStartingFromDate      *time.Time
	InterestChargedFromDate         *time.Time
	GraceOnPrincipalPayment         int
	GraceOnInterestPayment          int
	GraceOnInterestCharged          int
	TransactionProcessingStrategyID int64
	CalendarID                      *int64
	SyncDisbursementWithMeeting     bool
	Charges                         []ChargeSpec
	Taxes                           []TaxSpec
}

// WithPrincipal returns a copy of the request scheduling principal instead.
func (r LoanScheduleRequest) WithPrincipal(principal decimal.Decimal) LoanScheduleRequest {
	r.Principal = principal
	return r
}

// ChargeSpec is one charge applied to the loan.
type ChargeSpec struct {
	ID              int64
	ChargeID        int64
	Name            string
	Amount          decimal.Decimal
	TimeType        ChargeTimeType
	CalculationType ChargeCalculationType
	DueDate         *time.Time
}

// TaxSpec is one tax capitalized into the principal.
type TaxSpec struct {
	ID       int64
	TaxValue decimal.Decimal
	Type     string
}

// TaxAmount is a resolved tax.
type TaxAmount struct {
	ID       int64           `json:"id"`
	Type     string          `json:"type"`
	TaxValue decimal.Decimal `json:"taxValue"`
	Amount   decimal.Decimal `json:"amount"`
}

// TaxResolution is the output of tax pre-calculation.
type TaxResolution struct {
	RequestedPrincipal decimal.Decimal `json:"principal"`
	AdjustedPrincipal  decimal.Decimal `json:"finalAmount"`
	TotalTax           decimal.Decimal `json:"totalTax"`
	Taxes              []TaxAmount     `json:"taxArray"`
}

// Period is one installment of a schedule.
type Period struct {
	Number             int             `json:"period"`
	FromDate           time.Time       `json:"fromDate"`
	DueDate            time.Time       `json:"dueDate"`
	PrincipalDue       decimal.Decimal `json:"principalDue"`
	InterestDue        decimal.Decimal `json:"interestDue"`
	FeeDue             decimal.Decimal `json:"feeChargesDue"`
	TaxPortion         decimal.Decimal `json:"taxPortion"`
	TotalDue           decimal.Decimal `json:"totalDue"`
	OutstandingBalance decimal.Decimal `json:"principalLoanBalanceOutstanding"`
}

// Totals sums a schedule.
type Totals struct {
	Principal decimal.Decimal `json:"totalPrincipalExpected"`
	Interest  decimal.Decimal `json:"totalInterestCharged"`
	Fees      decimal.Decimal `json:"totalFeeChargesCharged"`
	Taxes     decimal.Decimal `json:"totalTaxes"`
	Repayment decimal.Decimal `json:"totalRepaymentExpected"`
}

// Schedule is the immutable result of a schedule calculation.
type Schedule struct {
	DisbursementDate    time.Time       `json:"disbursementDate"`
	RequestedPrincipal  decimal.Decimal `json:"requestedPrincipal"`
	Principal           decimal.Decimal `json:"principal"`
	DisbursementCharges decimal.Decimal `json:"disbursementCharges"`
	NetDisbursedAmount  decimal.Decimal `json:"netDisbursalAmount"`
	Taxes               []TaxAmount     `json:"taxes,omitempty"`
	Periods             []Period        `json:"periods"`
	Totals              Totals          `json:"totals"`
}

// TaxRequest is a validated tax pre-calculation request.
type TaxRequest struct {
	Principal decimal.Decimal
	Taxes     []TaxSpec
}
