package params

import (
	"time"

	"github.com/shopspring/decimal"
)

// Parameter names shared by the normalizer and the validator.
const (
	ProductID                       = "productId"
	Principal                       = "principal"
	LoanTermFrequency               = "loanTermFrequency"
	LoanTermFrequencyType           = "loanTermFrequencyType"
	NumberOfRepayments              = "numberOfRepayments"
	RepaymentEvery                  = "repaymentEvery"
	RepaymentFrequencyType          = "repaymentFrequencyType"
	InterestRatePerPeriod           = "interestRatePerPeriod"
	InterestRateFrequencyType       = "interestRateFrequencyType"
	InterestType                    = "interestType"
	InterestCalculationPeriodType   = "interestCalculationPeriodType"
	AmortizationType                = "amortizationType"
	ExpectedDisbursementDate        = "expectedDisbursementDate"
	RepaymentsStartingFromDate      = "repaymentsStartingFromDate"
	InterestChargedFromDate         = "interestChargedFromDate"
	GraceOnPrincipalPayment         = "graceOnPrincipalPayment"
	GraceOnInterestPayment          = "graceOnInterestPayment"
	GraceOnInterestCharged          = "graceOnInterestCharged"
	TransactionProcessingStrategyID = "transactionProcessingStrategyId"
	CalendarID                      = "calendarId"
	SyncDisbursementWithMeeting     = "syncDisbursementWithMeeting"
	Charges                         = "charges"
	Taxes                           = "taxes"

	ID                    = "id"
	ChargeID              = "chargeId"
	Amount                = "amount"
	ChargeTimeType        = "chargeTimeType"
	ChargeCalculationType = "chargeCalculationType"
	DueDate               = "dueDate"
	TaxValue              = "taxValue"
	Type                  = "type"
)

// ScheduleFields is the normalized form of a schedule-calculation bag.
type ScheduleFields struct {
	ProductID                       Field[int64]
	Principal                       Field[decimal.Decimal]
	LoanTermFrequency               Field[int64]
	LoanTermFrequencyType           Field[int64]
	NumberOfRepayments              Field[int64]
	RepaymentEvery                  Field[int64]
	RepaymentFrequencyType          Field[int64]
	InterestRatePerPeriod           Field[decimal.Decimal]
	InterestRateFrequencyType       Field[int64]
	InterestType                    Field[int64]
	InterestCalculationPeriodType   Field[int64]
	AmortizationType                Field[int64]
	ExpectedDisbursementDate        Field[time.Time]
	RepaymentsStartingFromDate      Field[time.Time]
	InterestChargedFromDate         Field[time.Time]
	GraceOnPrincipalPayment         Field[int64]
	GraceOnInterestPayment          Field[int64]
	GraceOnInterestCharged          Field[int64]
	TransactionProcessingStrategyID Field[int64]
	CalendarID                      Field[int64]
	SyncDisbursementWithMeeting     Field[bool]
	Charges                         []ChargeFields
	Taxes                           []TaxFields
}

// ChargeFields is one normalized element of the charges array.
type ChargeFields struct {
	ID                    Field[int64]
	ChargeID              Field[int64]
	Amount                Field[decimal.Decimal]
	ChargeTimeType        Field[int64]
	ChargeCalculationType Field[int64]
	DueDate               Field[time.Time]
}

// TaxFields is one normalized element of the taxes array.
type TaxFields struct {
	ID       Field[int64]
	TaxValue Field[decimal.Decimal]
	Type     Field[string]
}

// TaxRequestFields is the normalized form of a tax pre-calculation bag.
type TaxRequestFields struct {
	Principal Field[decimal.Decimal]
	Taxes     []TaxFields
}

// NormalizeSchedule extracts every schedule field from bag. Unknown keys
// inside array elements fail immediately with a MalformedInputError; the
// top-level gate is the caller's job (see CheckSupported).
func NormalizeSchedule(bag Bag, p Parser) (*ScheduleFields, error) {
	f := &ScheduleFields{
		ProductID:                       ExtractInteger(bag, ProductID, p),
		Principal:                       ExtractDecimal(bag, Principal, p),
		LoanTermFrequency:               ExtractInteger(bag, LoanTermFrequency, p),
		LoanTermFrequencyType:           ExtractInteger(bag, LoanTermFrequencyType, p),
		NumberOfRepayments:              ExtractInteger(bag, NumberOfRepayments, p),
		RepaymentEvery:                  ExtractInteger(bag, RepaymentEvery, p),
		RepaymentFrequencyType:          ExtractInteger(bag, RepaymentFrequencyType, p),
		InterestRatePerPeriod:           ExtractDecimal(bag, InterestRatePerPeriod, p),
		InterestRateFrequencyType:       ExtractInteger(bag, InterestRateFrequencyType, p),
		InterestType:                    ExtractInteger(bag, InterestType, p),
		InterestCalculationPeriodType:   ExtractInteger(bag, InterestCalculationPeriodType, p),
		AmortizationType:                ExtractInteger(bag, AmortizationType, p),
		ExpectedDisbursementDate:        ExtractDate(bag, ExpectedDisbursementDate, p),
		RepaymentsStartingFromDate:      ExtractDate(bag, RepaymentsStartingFromDate, p),
		InterestChargedFromDate:         ExtractDate(bag, InterestChargedFromDate, p),
		GraceOnPrincipalPayment:         ExtractInteger(bag, GraceOnPrincipalPayment, p),
		GraceOnInterestPayment:          ExtractInteger(bag, GraceOnInterestPayment, p),
		GraceOnInterestCharged:          ExtractInteger(bag, GraceOnInterestCharged, p),
		TransactionProcessingStrategyID: ExtractInteger(bag, TransactionProcessingStrategyID, p),
		CalendarID:                      ExtractInteger(bag, CalendarID, p),
		SyncDisbursementWithMeeting:     ExtractBool(bag, SyncDisbursementWithMeeting, p),
	}

	charges, err := bag.Elements(Charges)
	if err != nil {
		return nil, err
	}
	for i, element := range charges {
		if err := CheckSupported(ElementScope(Charges, i+1), element, ChargeElementParameters); err != nil {
			return nil, err
		}
		f.Charges = append(f.Charges, ChargeFields{
			ID:                    ExtractInteger(element, ID, p),
			ChargeID:              ExtractInteger(element, ChargeID, p),
			Amount:                ExtractDecimal(element, Amount, p),
			ChargeTimeType:        ExtractInteger(element, ChargeTimeType, p),
			ChargeCalculationType: ExtractInteger(element, ChargeCalculationType, p),
			DueDate:               ExtractDate(element, DueDate, p),
		})
	}

	f.Taxes, err = normalizeTaxes(bag, p)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// NormalizeTax extracts the fields of a tax pre-calculation bag.
func NormalizeTax(bag Bag, p Parser) (*TaxRequestFields, error) {
	taxes, err := normalizeTaxes(bag, p)
	if err != nil {
		return nil, err
	}
	return &TaxRequestFields{
		Principal: ExtractDecimal(bag, Principal, p),
		Taxes:     taxes,
	}, nil
}

func normalizeTaxes(bag Bag, p Parser) ([]TaxFields, error) {
	elements, err := bag.Elements(Taxes)
	if err != nil {
		return nil, err
	}
	var taxes []TaxFields
	for i, element := range elements {
		if err := CheckSupported(ElementScope(Taxes, i+1), element, TaxElementParameters); err != nil {
			return nil, err
		}
		taxes = append(taxes, TaxFields{
			ID:       ExtractInteger(element, ID, p),
			TaxValue: ExtractDecimal(element, TaxValue, p),
			Type:     ExtractString(element, Type, p),
		})
	}
	return taxes, nil
}
