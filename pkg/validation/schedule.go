package validation

import (
	"fmt"
	"time"

	"github.com/iwvelando/loan-schedule/pkg/constants"
	"github.com/iwvelando/loan-schedule/pkg/datetime"
	"github.com/iwvelando/loan-schedule/pkg/loans"
	"github.com/iwvelando/loan-schedule/pkg/mathutil"
	"github.com/iwvelando/loan-schedule/pkg/params"
)

// Validator checks normalized requests. The charge catalog supplies the
// time and calculation types of charges whose request element omits them.
// The rounder must be the one the generator uses; principals are judged at
// its scale.
type Validator struct {
	catalog loans.ChargeCatalog
	rounder mathutil.Rounder
}

// NewValidator returns a Validator backed by catalog, which may be nil. A
// zero rounder means mathutil.DefaultRounder.
func NewValidator(catalog loans.ChargeCatalog, rounder mathutil.Rounder) *Validator {
	if rounder.Mode == "" {
		rounder = mathutil.DefaultRounder()
	}
	return &Validator{catalog: catalog, rounder: rounder}
}

// ValidateSchedule evaluates every schedule rule in a fixed order and returns
// either the typed request or an *apierrors.ValidationError holding all
// violations. It never stops at the first failure.
func (v *Validator) ValidateSchedule(f *params.ScheduleFields) (loans.LoanScheduleRequest, error) {
	c := newCollector(constants.LoanResource)

	if required(c, top(params.ProductID), f.ProductID) {
		c.integerGreaterThanZero(top(params.ProductID), f.ProductID.Value)
	}
	if required(c, top(params.Principal), f.Principal) {
		c.positiveAtScale(top(params.Principal), f.Principal.Value, v.rounder)
	}

	termOK := required(c, top(params.LoanTermFrequency), f.LoanTermFrequency) &&
		c.integerGreaterThanZero(top(params.LoanTermFrequency), f.LoanTermFrequency.Value)
	if required(c, top(params.LoanTermFrequencyType), f.LoanTermFrequencyType) {
		c.inMinMaxRange(top(params.LoanTermFrequencyType), f.LoanTermFrequencyType.Value, 0, 3)
	}
	repaymentsOK := required(c, top(params.NumberOfRepayments), f.NumberOfRepayments) &&
		c.integerGreaterThanZero(top(params.NumberOfRepayments), f.NumberOfRepayments.Value) &&
		c.integerAtMost(top(params.NumberOfRepayments), f.NumberOfRepayments.Value, constants.MaxNumberOfRepayments)
	everyOK := required(c, top(params.RepaymentEvery), f.RepaymentEvery) &&
		c.integerGreaterThanZero(top(params.RepaymentEvery), f.RepaymentEvery.Value)
	repaymentTypeOK := required(c, top(params.RepaymentFrequencyType), f.RepaymentFrequencyType) &&
		c.inMinMaxRange(top(params.RepaymentFrequencyType), f.RepaymentFrequencyType.Value, 0, 3)

	v.validateTermStructure(c, f, termOK, repaymentsOK, everyOK)

	if required(c, top(params.InterestRatePerPeriod), f.InterestRatePerPeriod) {
		c.zeroOrPositiveAmount(top(params.InterestRatePerPeriod), f.InterestRatePerPeriod.Value)
	}
	if required(c, top(params.InterestType), f.InterestType) {
		c.inMinMaxRange(top(params.InterestType), f.InterestType.Value, 0, 1)
	}
	if required(c, top(params.InterestCalculationPeriodType), f.InterestCalculationPeriodType) {
		c.inMinMaxRange(top(params.InterestCalculationPeriodType), f.InterestCalculationPeriodType.Value, 0, 1)
	}
	if required(c, top(params.AmortizationType), f.AmortizationType) {
		c.inMinMaxRange(top(params.AmortizationType), f.AmortizationType.Value, 0, 1)
	}
	if optional(c, top(params.InterestRateFrequencyType), f.InterestRateFrequencyType) {
		c.inMinMaxRange(top(params.InterestRateFrequencyType), f.InterestRateFrequencyType.Value, 0, 3)
	}

	v.validateDates(c, f)
	v.validateHorizon(c, f, repaymentsOK, everyOK, repaymentTypeOK)

	if required(c, top(params.TransactionProcessingStrategyID), f.TransactionProcessingStrategyID) {
		c.integerGreaterThanZero(top(params.TransactionProcessingStrategyID), f.TransactionProcessingStrategyID.Value)
	}

	v.validateGrace(c, f, repaymentsOK)
	charges := v.validateCharges(c, f.Charges)
	taxes := validateTaxElements(c, f.Taxes)
	v.validateMeeting(c, f)

	if err := c.err(); err != nil {
		return loans.LoanScheduleRequest{}, err
	}
	return v.buildRequest(f, charges, taxes), nil
}

// validateTermStructure requires matching term and repayment units and a
// term long enough for the repayment structure. The unit comparison applies
// whenever loanTermFrequencyType was given, in range or not; term
// sufficiency is only judged once the units agree.
func (v *Validator) validateTermStructure(c *collector, f *params.ScheduleFields, termOK, repaymentsOK, everyOK bool) {
	termType, repaymentType := f.LoanTermFrequencyType, f.RepaymentFrequencyType
	if termType.Valid() && (!repaymentType.Valid() || termType.Value != repaymentType.Value) {
		var rejectedRepaymentType interface{}
		if repaymentType.Valid() {
			rejectedRepaymentType = repaymentType.Value
		}
		c.addKey(top(params.LoanTermFrequencyType),
			"validation.msg.loan.loanTermFrequencyType.not.the.same.as.repaymentFrequencyType",
			"The parameters loanTermFrequencyType and repaymentFrequencyType must be the same.",
			termType.Value, rejectedRepaymentType)
		return
	}
	if !termOK || !repaymentsOK || !everyOK {
		return
	}
	// Compared by division; repaymentEvery * numberOfRepayments can overflow.
	if f.LoanTermFrequency.Value/f.RepaymentEvery.Value < f.NumberOfRepayments.Value {
		c.addKey(top(params.LoanTermFrequency),
			"validation.msg.loan.loanTermFrequency.less.than.repayment.structure.suggests",
			"The parameter loanTermFrequency is less than the suggest loan term as indicated by numberOfRepayments and repaymentEvery.",
			f.LoanTermFrequency.Value, f.NumberOfRepayments.Value, f.RepaymentEvery.Value)
	}
}

func (v *Validator) validateDates(c *collector, f *params.ScheduleFields) {
	disbursementOK := required(c, top(params.ExpectedDisbursementDate), f.ExpectedDisbursementDate)
	startOK := optional(c, top(params.RepaymentsStartingFromDate), f.RepaymentsStartingFromDate)
	chargedOK := optional(c, top(params.InterestChargedFromDate), f.InterestChargedFromDate)

	disbursement := f.ExpectedDisbursementDate.Value
	if disbursementOK && startOK && disbursement.After(f.RepaymentsStartingFromDate.Value) {
		c.addKey(top(params.ExpectedDisbursementDate),
			"validation.msg.loan.expectedDisbursementDate.cannot.be.after.first.repayment.date",
			"The parameter expectedDisbursementDate has a date which falls after the date for repaymentsStartingFromDate.",
			formatDate(disbursement), formatDate(f.RepaymentsStartingFromDate.Value))
	}

	if startOK && f.InterestChargedFromDate.Missing() {
		c.addKey(top(params.InterestChargedFromDate),
			"validation.msg.loan.interestChargedFromDate.must.be.entered.when.using.repayments.startfrom.field",
			"The parameter interestChargedFromDate cannot be empty when repaymentsStartingFromDate is provided.",
			formatDate(f.RepaymentsStartingFromDate.Value))
	}
	if disbursementOK && chargedOK && disbursement.After(f.InterestChargedFromDate.Value) {
		c.addKey(top(params.InterestChargedFromDate),
			"validation.msg.loan.interestChargedFromDate.cannot.be.before.disbursement.date",
			"The parameter interestChargedFromDate cannot be before the date given for expectedDisbursementDate.",
			formatDate(f.InterestChargedFromDate.Value), formatDate(disbursement))
	}
}

// validateHorizon keeps the last due date within MaxScheduleYears of
// disbursement.
func (v *Validator) validateHorizon(c *collector, f *params.ScheduleFields, repaymentsOK, everyOK, repaymentTypeOK bool) {
	if !repaymentsOK || !everyOK || !repaymentTypeOK || !f.ExpectedDisbursementDate.Valid() ||
		f.RepaymentsStartingFromDate.Invalid() {
		return
	}
	frequency, _ := loans.FrequencyTypeFromCode(f.RepaymentFrequencyType.Value)
	n, every := f.NumberOfRepayments.Value, f.RepaymentEvery.Value
	disbursement := f.ExpectedDisbursementDate.Value
	limit := datetime.AddYears(disbursement, constants.MaxScheduleYears)

	// every is bounded first so that n*every stays small.
	exceeds := every > maxUnits(frequency)
	if !exceeds {
		last := loans.DueDate(loans.LoanScheduleRequest{
			ExpectedDisbursementDate:   disbursement,
			RepaymentsStartingFromDate: dateOrNil(f.RepaymentsStartingFromDate),
			RepaymentEvery:             int(every),
			RepaymentFrequencyType:     frequency,
		}, int(n)-1)
		exceeds = last.After(limit)
	}
	if exceeds {
		c.addKey(top(params.NumberOfRepayments),
			"validation.msg.loan.numberOfRepayments.schedule.exceeds.maximum.years",
			fmt.Sprintf("The last repayment must fall within %d years of expectedDisbursementDate.", constants.MaxScheduleYears),
			n, every, constants.MaxScheduleYears)
	}
}

// maxUnits is the most units of f that fit in MaxScheduleYears.
func maxUnits(f loans.FrequencyType) int64 {
	switch f {
	case loans.Days:
		return constants.MaxScheduleYears * 366
	case loans.Weeks:
		return constants.MaxScheduleYears * 53
	case loans.Months:
		return constants.MaxScheduleYears * constants.MonthsPerYear
	default:
		return constants.MaxScheduleYears
	}
}

func (v *Validator) validateGrace(c *collector, f *params.ScheduleFields, repaymentsOK bool) {
	graces := []struct {
		param string
		field params.Field[int64]
	}{
		{params.GraceOnPrincipalPayment, f.GraceOnPrincipalPayment},
		{params.GraceOnInterestPayment, f.GraceOnInterestPayment},
		{params.GraceOnInterestCharged, f.GraceOnInterestCharged},
	}
	for _, grace := range graces {
		t := top(grace.param)
		if !optional(c, t, grace.field) || !c.zeroOrPositiveInteger(t, grace.field.Value) {
			continue
		}
		if repaymentsOK && grace.field.Value >= f.NumberOfRepayments.Value {
			c.add(t, keyGraceExceedsTerm,
				fmt.Sprintf("The parameter %s must be less than numberOfRepayments.", grace.param),
				grace.field.Value, f.NumberOfRepayments.Value)
		}
	}
}

// validateCharges checks every charge element and resolves its types. The
// returned specs are only meaningful when no error was recorded.
func (v *Validator) validateCharges(c *collector, charges []params.ChargeFields) []loans.ChargeSpec {
	specs := make([]loans.ChargeSpec, 0, len(charges))
	for i, ch := range charges {
		index := i + 1
		spec := loans.ChargeSpec{}

		if required(c, element(params.Charges, index, params.ChargeID), ch.ChargeID) {
			c.integerGreaterThanZero(element(params.Charges, index, params.ChargeID), ch.ChargeID.Value)
			spec.ChargeID = ch.ChargeID.Value
		}
		if required(c, element(params.Charges, index, params.Amount), ch.Amount) {
			c.zeroOrPositiveAmount(element(params.Charges, index, params.Amount), ch.Amount.Value)
			spec.Amount = ch.Amount.Value
		}
		dueDateOK := optional(c, element(params.Charges, index, params.DueDate), ch.DueDate)
		if dueDateOK {
			due := ch.DueDate.Value
			spec.DueDate = &due
		}

		definition, inCatalog := v.catalog[spec.ChargeID]
		spec.Name = definition.Name

		timeTypeKnown := true
		switch {
		case optional(c, element(params.Charges, index, params.ChargeTimeType), ch.ChargeTimeType):
			timeType, ok := loans.ChargeTimeTypeFromCode(ch.ChargeTimeType.Value)
			timeTypeKnown = c.oneOf(element(params.Charges, index, params.ChargeTimeType), ch.ChargeTimeType.Value, ok,
				"1 (Disbursement), 2 (SpecifiedDueDate), 8 (InstallmentFee)")
			spec.TimeType = timeType
		case ch.ChargeTimeType.Invalid():
			timeTypeKnown = false
		case inCatalog:
			spec.TimeType = definition.TimeType
		case ch.DueDate.Present:
			spec.TimeType = loans.ChargeSpecifiedDueDate
		default:
			spec.TimeType = loans.ChargeAtDisbursement
		}

		switch {
		case optional(c, element(params.Charges, index, params.ChargeCalculationType), ch.ChargeCalculationType):
			calculation, ok := loans.ChargeCalculationTypeFromCode(ch.ChargeCalculationType.Value)
			c.oneOf(element(params.Charges, index, params.ChargeCalculationType), ch.ChargeCalculationType.Value, ok,
				"1 (Flat), 2 (PercentOfAmount), 3 (PercentOfAmountAndInterest), 4 (PercentOfInterest)")
			spec.CalculationType = calculation
		case inCatalog:
			spec.CalculationType = definition.CalculationType
		default:
			spec.CalculationType = loans.ChargeFlat
		}

		if timeTypeKnown && spec.TimeType == loans.ChargeSpecifiedDueDate && ch.DueDate.Missing() {
			c.add(element(params.Charges, index, params.DueDate), keyBlank,
				fmt.Sprintf("The parameter %s is mandatory for charges due on a specified date.",
					element(params.Charges, index, params.DueDate).name()))
		}
		if optional(c, element(params.Charges, index, params.ID), ch.ID) {
			spec.ID = ch.ID.Value
		}
		specs = append(specs, spec)
	}
	return specs
}

// validateTaxElements checks every tax element; shared by both operations.
func validateTaxElements(c *collector, taxes []params.TaxFields) []loans.TaxSpec {
	specs := make([]loans.TaxSpec, 0, len(taxes))
	for i, tx := range taxes {
		index := i + 1
		spec := loans.TaxSpec{}
		if required(c, element(params.Taxes, index, params.TaxValue), tx.TaxValue) {
			c.positiveAmount(element(params.Taxes, index, params.TaxValue), tx.TaxValue.Value)
			spec.TaxValue = tx.TaxValue.Value
		}
		if c.notBlank(element(params.Taxes, index, params.Type), tx.Type) {
			spec.Type = tx.Type.Value
		}
		if optional(c, element(params.Taxes, index, params.ID), tx.ID) {
			spec.ID = tx.ID.Value
		}
		specs = append(specs, spec)
	}
	return specs
}

// validateMeeting requires a calendar when disbursement is synced to a
// meeting or a calendarId was supplied at all.
func (v *Validator) validateMeeting(c *collector, f *params.ScheduleFields) {
	meetingRequired := false
	sync := f.SyncDisbursementWithMeeting
	if sync.Supplied {
		if !sync.Valid() {
			c.add(top(params.SyncDisbursementWithMeeting), keyNotBoolean,
				"The parameter syncDisbursementWithMeeting must be set as true or false.", sync.Raw)
		} else if sync.Value {
			meetingRequired = true
		}
	}
	if meetingRequired || f.CalendarID.Supplied {
		if required(c, top(params.CalendarID), f.CalendarID) {
			c.integerGreaterThanZero(top(params.CalendarID), f.CalendarID.Value)
		}
	}
}

func (v *Validator) buildRequest(f *params.ScheduleFields, charges []loans.ChargeSpec, taxes []loans.TaxSpec) loans.LoanScheduleRequest {
	termType, _ := loans.FrequencyTypeFromCode(f.LoanTermFrequencyType.Value)
	repaymentType, _ := loans.FrequencyTypeFromCode(f.RepaymentFrequencyType.Value)
	rateType := repaymentType
	if f.InterestRateFrequencyType.Valid() {
		rateType, _ = loans.FrequencyTypeFromCode(f.InterestRateFrequencyType.Value)
	}
	interestType, _ := loans.InterestTypeFromCode(f.InterestType.Value)
	calculationPeriod, _ := loans.InterestCalculationPeriodTypeFromCode(f.InterestCalculationPeriodType.Value)
	amortization, _ := loans.AmortizationTypeFromCode(f.AmortizationType.Value)

	req := loans.LoanScheduleRequest{
		ProductID:                       f.ProductID.Value,
		Principal:                       f.Principal.Value,
		LoanTermFrequency:               int(f.LoanTermFrequency.Value),
		LoanTermFrequencyType:           termType,
		NumberOfRepayments:              int(f.NumberOfRepayments.Value),
		RepaymentEvery:                  int(f.RepaymentEvery.Value),
		RepaymentFrequencyType:          repaymentType,
		InterestRatePerPeriod:           f.InterestRatePerPeriod.Value,
		InterestRateFrequencyType:       rateType,
		InterestType:                    interestType,
		InterestCalculationPeriodType:   calculationPeriod,
		AmortizationType:                amortization,
		ExpectedDisbursementDate:        f.ExpectedDisbursementDate.Value,
		RepaymentsStartingFromDate:      dateOrNil(f.RepaymentsStartingFromDate),
		InterestChargedFromDate:         dateOrNil(f.InterestChargedFromDate),
		GraceOnPrincipalPayment:         int(f.GraceOnPrincipalPayment.Value),
		GraceOnInterestPayment:          int(f.GraceOnInterestPayment.Value),
		GraceOnInterestCharged:          int(f.GraceOnInterestCharged.Value),
		TransactionProcessingStrategyID: f.TransactionProcessingStrategyID.Value,
		SyncDisbursementWithMeeting:     f.SyncDisbursementWithMeeting.Valid() && f.SyncDisbursementWithMeeting.Value,
		Charges:                         charges,
		Taxes:                           taxes,
	}
	if f.CalendarID.Valid() {
		calendarID := f.CalendarID.Value
		req.CalendarID = &calendarID
	}
	return req
}

func dateOrNil(f params.Field[time.Time]) *time.Time {
	if !f.Valid() {
		return nil
	}
	d := f.Value
	return &d
}

func formatDate(t time.Time) string {
	return t.Format(constants.DateLayout)
}
