package validation

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/iwvelando/loan-schedule/pkg/apierrors"
	"github.com/iwvelando/loan-schedule/pkg/datetime"
	"github.com/iwvelando/loan-schedule/pkg/loans"
	"github.com/iwvelando/loan-schedule/pkg/mathutil"
	"github.com/iwvelando/loan-schedule/pkg/params"
	"github.com/iwvelando/loan-schedule/pkg/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func normalize(t *testing.T, bag params.Bag) *params.ScheduleFields {
	t.Helper()
	p, err := params.ParserForBag(bag, "en", "yyyy-MM-dd")
	require.NoError(t, err)
	fields, err := params.NormalizeSchedule(bag, p)
	require.NoError(t, err)
	return fields
}

func validateBag(t *testing.T, bag params.Bag) (loans.LoanScheduleRequest, []apierrors.FieldError, error) {
	t.Helper()
	req, err := NewValidator(nil, mathutil.DefaultRounder()).ValidateSchedule(normalize(t, bag))
	return req, apierrors.FieldErrors(err), err
}

func keys(errs []apierrors.FieldError) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.MessageKey)
	}
	return out
}

func TestValidateScheduleAcceptsValidRequest(t *testing.T) {
	req, errs, err := validateBag(t, testutil.ValidScheduleBag())
	require.NoError(t, err)
	assert.Empty(t, errs)

	assert.Equal(t, int64(1), req.ProductID)
	assert.True(t, req.Principal.Equal(decimal.NewFromInt(10000)))
	assert.Equal(t, loans.Months, req.RepaymentFrequencyType)
	assert.Equal(t, loans.Months, req.InterestRateFrequencyType, "rate unit defaults to the repayment unit")
	assert.Equal(t, loans.DecliningBalance, req.InterestType)
	assert.Equal(t, loans.EqualInstallments, req.AmortizationType)
	assert.Equal(t, 12, req.NumberOfRepayments)
	assert.True(t, req.ExpectedDisbursementDate.Equal(datetime.Date(2024, time.January, 10)))
	assert.Nil(t, req.RepaymentsStartingFromDate)
	assert.Nil(t, req.InterestChargedFromDate)
	assert.Nil(t, req.CalendarID)
}

func TestValidateScheduleTermTooShort(t *testing.T) {
	bag := testutil.With(testutil.ValidScheduleBag(), "loanTermFrequency", float64(10))

	_, errs, err := validateBag(t, bag)
	require.True(t, errors.Is(err, apierrors.ErrValidationFailed))
	require.Len(t, errs, 1)
	assert.Equal(t, "validation.msg.loan.loanTermFrequency.less.than.repayment.structure.suggests", errs[0].MessageKey)
	assert.Equal(t, "loanTermFrequency", errs[0].Parameter)
	assert.Equal(t, []interface{}{int64(10), int64(12), int64(1)}, errs[0].RejectedValues)
}

func TestValidateScheduleFrequencyMismatchSkipsTermCheck(t *testing.T) {
	bag := testutil.ValidScheduleBag()
	bag = testutil.With(bag, "loanTermFrequency", float64(10))
	bag = testutil.With(bag, "loanTermFrequencyType", float64(1))

	_, errs, err := validateBag(t, bag)
	require.Error(t, err)
	assert.Equal(t, []string{"validation.msg.loan.loanTermFrequencyType.not.the.same.as.repaymentFrequencyType"}, keys(errs))
}

func TestValidateScheduleDisbursementAfterFirstRepayment(t *testing.T) {
	bag := testutil.ValidScheduleBag()
	bag = testutil.With(bag, "expectedDisbursementDate", "01 March 2024")
	bag = testutil.With(bag, "repaymentsStartingFromDate", "01 February 2024")
	bag = testutil.With(bag, "interestChargedFromDate", "01 March 2024")

	_, errs, err := validateBag(t, bag)
	require.Error(t, err)
	require.Len(t, errs, 1)
	assert.Equal(t, "expectedDisbursementDate", errs[0].Parameter)
	assert.Equal(t, "validation.msg.loan.expectedDisbursementDate.cannot.be.after.first.repayment.date", errs[0].MessageKey)
}

func TestValidateScheduleRepaymentStartNeedsInterestChargedFrom(t *testing.T) {
	bag := testutil.With(testutil.ValidScheduleBag(), "repaymentsStartingFromDate", "10 February 2024")

	_, errs, err := validateBag(t, bag)
	require.Error(t, err)
	require.Len(t, errs, 1)
	assert.Equal(t, "interestChargedFromDate", errs[0].Parameter)
	assert.Equal(t, "validation.msg.loan.interestChargedFromDate.must.be.entered.when.using.repayments.startfrom.field", errs[0].MessageKey)
}

func TestValidateScheduleInterestChargedBeforeDisbursement(t *testing.T) {
	bag := testutil.With(testutil.ValidScheduleBag(), "interestChargedFromDate", "01 January 2024")

	_, errs, err := validateBag(t, bag)
	require.Error(t, err)
	assert.Equal(t, []string{"validation.msg.loan.interestChargedFromDate.cannot.be.before.disbursement.date"}, keys(errs))
}

func TestValidateScheduleChargeErrors(t *testing.T) {
	bag := testutil.With(testutil.ValidScheduleBag(), "charges", []interface{}{
		map[string]interface{}{"amount": "10"},
		map[string]interface{}{"chargeId": float64(2), "amount": "-1"},
		map[string]interface{}{"chargeId": float64(3), "amount": "5", "chargeTimeType": float64(2)},
		map[string]interface{}{"chargeId": float64(4), "amount": "5", "chargeTimeType": float64(5)},
	})

	_, errs, err := validateBag(t, bag)
	require.Error(t, err)

	first := testutil.FindFieldError(errs, "charges[1].chargeId")
	require.NotNil(t, first)
	assert.Equal(t, "validation.msg.loan.charges.chargeId.cannot.be.blank", first.MessageKey)
	assert.Equal(t, 1, first.ArrayIndex)
	assert.Equal(t, "chargeId", first.ArrayPart)

	negative := testutil.FindFieldError(errs, "charges[2].amount")
	require.NotNil(t, negative)
	assert.Equal(t, "validation.msg.loan.charges.amount.not.zero.or.greater", negative.MessageKey)

	dueDate := testutil.FindFieldError(errs, "charges[3].dueDate")
	require.NotNil(t, dueDate)
	assert.Equal(t, "validation.msg.loan.charges.dueDate.cannot.be.blank", dueDate.MessageKey)

	timeType := testutil.FindFieldError(errs, "charges[4].chargeTimeType")
	require.NotNil(t, timeType)
	assert.Equal(t, "validation.msg.loan.charges.chargeTimeType.is.not.one.of.expected.enumerations", timeType.MessageKey)

	assert.Len(t, errs, 4)
}

func TestValidateScheduleResolvesChargeTypes(t *testing.T) {
	catalog := loans.ChargeCatalog{
		7: {ID: 7, Name: "Processing fee", TimeType: loans.ChargeInstallmentFee, CalculationType: loans.ChargePercentOfAmount},
	}
	bag := testutil.With(testutil.ValidScheduleBag(), "charges", []interface{}{
		map[string]interface{}{"chargeId": float64(7), "amount": "1"},
		map[string]interface{}{"chargeId": float64(8), "amount": "25", "dueDate": "10 March 2024"},
		map[string]interface{}{"chargeId": float64(9), "amount": "30"},
		map[string]interface{}{"chargeId": float64(7), "amount": "2", "chargeTimeType": float64(1), "chargeCalculationType": float64(1)},
	})

	req, err := NewValidator(catalog, mathutil.DefaultRounder()).ValidateSchedule(normalize(t, bag))
	require.NoError(t, err)
	require.Len(t, req.Charges, 4)

	assert.Equal(t, loans.ChargeInstallmentFee, req.Charges[0].TimeType)
	assert.Equal(t, loans.ChargePercentOfAmount, req.Charges[0].CalculationType)
	assert.Equal(t, "Processing fee", req.Charges[0].Name)

	assert.Equal(t, loans.ChargeSpecifiedDueDate, req.Charges[1].TimeType)
	assert.Equal(t, loans.ChargeFlat, req.Charges[1].CalculationType)
	require.NotNil(t, req.Charges[1].DueDate)
	assert.True(t, req.Charges[1].DueDate.Equal(datetime.Date(2024, time.March, 10)))

	assert.Equal(t, loans.ChargeAtDisbursement, req.Charges[2].TimeType)

	assert.Equal(t, loans.ChargeAtDisbursement, req.Charges[3].TimeType, "request codes win over the catalog")
	assert.Equal(t, loans.ChargeFlat, req.Charges[3].CalculationType)
}

func TestValidateScheduleCollectsEveryError(t *testing.T) {
	bag := params.Bag{
		"principal":                   "-5",
		"loanTermFrequencyType":       float64(9),
		"interestType":                float64(2),
		"graceOnInterestCharged":      float64(-1),
		"syncDisbursementWithMeeting": "maybe",
	}

	_, errs, err := validateBag(t, bag)
	require.Error(t, err)

	expected := []string{
		"validation.msg.loan.productId.cannot.be.blank",
		"validation.msg.loan.principal.not.greater.than.zero",
		"validation.msg.loan.loanTermFrequency.cannot.be.blank",
		"validation.msg.loan.loanTermFrequencyType.is.not.within.expected.range",
		"validation.msg.loan.numberOfRepayments.cannot.be.blank",
		"validation.msg.loan.repaymentEvery.cannot.be.blank",
		"validation.msg.loan.repaymentFrequencyType.cannot.be.blank",
		"validation.msg.loan.loanTermFrequencyType.not.the.same.as.repaymentFrequencyType",
		"validation.msg.loan.interestRatePerPeriod.cannot.be.blank",
		"validation.msg.loan.interestType.is.not.within.expected.range",
		"validation.msg.loan.interestCalculationPeriodType.cannot.be.blank",
		"validation.msg.loan.amortizationType.cannot.be.blank",
		"validation.msg.loan.expectedDisbursementDate.cannot.be.blank",
		"validation.msg.loan.transactionProcessingStrategyId.cannot.be.blank",
		"validation.msg.loan.graceOnInterestCharged.not.zero.or.greater",
		"validation.msg.loan.syncDisbursementWithMeeting.must.be.true.or.false",
	}
	assert.Equal(t, expected, keys(errs))
}

func TestValidateScheduleInvalidFormatReplacesOtherRules(t *testing.T) {
	bag := testutil.ValidScheduleBag()
	bag = testutil.With(bag, "principal", "ten thousand")
	bag = testutil.With(bag, "repaymentsStartingFromDate", "2024-02-10")

	_, errs, err := validateBag(t, bag)
	require.Error(t, err)
	assert.Equal(t, []string{
		"validation.msg.loan.principal.invalid.format",
		"validation.msg.loan.repaymentsStartingFromDate.invalid.format",
	}, keys(errs))
	assert.Equal(t, []interface{}{"ten thousand"}, errs[0].RejectedValues)
}

func TestValidateScheduleGraceBounds(t *testing.T) {
	bag := testutil.ValidScheduleBag()
	bag = testutil.With(bag, "graceOnPrincipalPayment", float64(12))
	bag = testutil.With(bag, "graceOnInterestPayment", float64(11))

	_, errs, err := validateBag(t, bag)
	require.Error(t, err)
	assert.Equal(t, []string{"validation.msg.loan.graceOnPrincipalPayment.must.be.less.than.numberOfRepayments"}, keys(errs))
}

func TestValidateScheduleMeeting(t *testing.T) {
	tests := []struct {
		name     string
		sync     interface{}
		calendar interface{}
		expected []string
	}{
		{name: "Sync needs a calendar", sync: true, expected: []string{"validation.msg.loan.calendarId.cannot.be.blank"}},
		{name: "Supplied calendar must be positive", calendar: float64(0), expected: []string{"validation.msg.loan.calendarId.not.greater.than.zero"}},
		{name: "Sync with calendar", sync: true, calendar: float64(3)},
		{name: "No sync", sync: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bag := testutil.ValidScheduleBag()
			bag = testutil.With(bag, "syncDisbursementWithMeeting", tt.sync)
			bag = testutil.With(bag, "calendarId", tt.calendar)

			req, errs, err := validateBag(t, bag)
			if len(tt.expected) == 0 {
				require.NoError(t, err)
				if tt.calendar != nil {
					require.NotNil(t, req.CalendarID)
					assert.Equal(t, int64(3), *req.CalendarID)
					assert.True(t, req.SyncDisbursementWithMeeting)
				}
				return
			}
			assert.Equal(t, tt.expected, keys(errs))
		})
	}
}

func TestValidateScheduleTaxElements(t *testing.T) {
	bag := testutil.With(testutil.ValidScheduleBag(), "taxes", []interface{}{
		map[string]interface{}{"taxValue": "0", "type": "VAT"},
		map[string]interface{}{"taxValue": "2"},
	})

	_, errs, err := validateBag(t, bag)
	require.Error(t, err)
	assert.Equal(t, []string{
		"validation.msg.loan.taxes.taxValue.not.greater.than.zero",
		"validation.msg.loan.taxes.type.cannot.be.blank",
	}, keys(errs))
	assert.Equal(t, "taxes[2].type", errs[1].Field())
}

func TestValidateScheduleIsDeterministic(t *testing.T) {
	bag := params.Bag{"principal": "0", "charges": []interface{}{map[string]interface{}{}}}

	_, first, _ := validateBag(t, bag)
	_, second, _ := validateBag(t, bag)
	assert.Equal(t, first, second)
	assert.NotEmpty(t, first)
}

func TestValidateScheduleTermSufficiencyDoesNotOverflow(t *testing.T) {
	bag := testutil.ValidScheduleBag()
	bag = testutil.With(bag, "repaymentEvery", float64(1<<62))
	bag = testutil.With(bag, "numberOfRepayments", float64(4))
	bag = testutil.With(bag, "loanTermFrequency", float64(1))

	_, errs, err := validateBag(t, bag)
	require.True(t, errors.Is(err, apierrors.ErrValidationFailed))
	assert.Equal(t, []string{
		"validation.msg.loan.loanTermFrequency.less.than.repayment.structure.suggests",
		"validation.msg.loan.numberOfRepayments.schedule.exceeds.maximum.years",
	}, keys(errs))
	assert.Equal(t, []interface{}{int64(1), int64(4), int64(1 << 62)}, errs[0].RejectedValues)
}

func TestValidateScheduleOutOfRangeTermTypeStillMismatches(t *testing.T) {
	bag := testutil.ValidScheduleBag()
	bag = testutil.With(bag, "loanTermFrequencyType", float64(5))
	bag = testutil.With(bag, "loanTermFrequency", float64(10))

	_, errs, err := validateBag(t, bag)
	require.Error(t, err)
	assert.Equal(t, []string{
		"validation.msg.loan.loanTermFrequencyType.is.not.within.expected.range",
		"validation.msg.loan.loanTermFrequencyType.not.the.same.as.repaymentFrequencyType",
	}, keys(errs))
	assert.Equal(t, []interface{}{int64(5), int64(2)}, errs[1].RejectedValues)
}

func TestValidateSchedulePrincipalAtCurrencyScale(t *testing.T) {
	tests := []struct {
		name      string
		principal string
		rounder   mathutil.Rounder
		expected  []string
	}{
		{name: "Rounds to zero", principal: "0.004", rounder: mathutil.DefaultRounder(),
			expected: []string{"validation.msg.loan.principal.not.greater.than.zero"}},
		{name: "Rounds up to one cent", principal: "0.005", rounder: mathutil.DefaultRounder()},
		{name: "Half even rounds down to zero", principal: "0.005", rounder: mathutil.Rounder{Scale: 2, Mode: "halfEven"},
			expected: []string{"validation.msg.loan.principal.not.greater.than.zero"}},
		{name: "Finer currency keeps it", principal: "0.004", rounder: mathutil.Rounder{Scale: 3, Mode: "halfUp"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bag := testutil.With(testutil.ValidScheduleBag(), "principal", tt.principal)
			_, err := NewValidator(nil, tt.rounder).ValidateSchedule(normalize(t, bag))
			if len(tt.expected) == 0 {
				require.NoError(t, err)
				return
			}
			require.True(t, errors.Is(err, apierrors.ErrValidationFailed))
			assert.Equal(t, tt.expected, keys(apierrors.FieldErrors(err)))
		})
	}
}

func TestValidateScheduleBounds(t *testing.T) {
	tests := []struct {
		name     string
		values   map[string]interface{}
		expected []string
	}{
		{
			name:     "Too many repayments",
			values:   map[string]interface{}{"numberOfRepayments": float64(1 << 50), "loanTermFrequency": float64(1 << 50)},
			expected: []string{"validation.msg.loan.numberOfRepayments.cannot.be.greater.than.maximum"},
		},
		{
			name:     "One past the repayment cap",
			values:   map[string]interface{}{"numberOfRepayments": float64(5001), "loanTermFrequency": float64(5001)},
			expected: []string{"validation.msg.loan.numberOfRepayments.cannot.be.greater.than.maximum"},
		},
		{
			name:     "Monthly schedule past a century",
			values:   map[string]interface{}{"numberOfRepayments": float64(1201), "loanTermFrequency": float64(1201)},
			expected: []string{"validation.msg.loan.numberOfRepayments.schedule.exceeds.maximum.years"},
		},
		{
			name:     "Huge interval",
			values:   map[string]interface{}{"numberOfRepayments": float64(1), "repaymentEvery": float64(1e8), "loanTermFrequency": float64(1e8)},
			expected: []string{"validation.msg.loan.numberOfRepayments.schedule.exceeds.maximum.years"},
		},
		{
			name: "Far first repayment",
			values: map[string]interface{}{
				"repaymentsStartingFromDate": "10 January 2125",
				"interestChargedFromDate":    "10 January 2125",
			},
			expected: []string{"validation.msg.loan.numberOfRepayments.schedule.exceeds.maximum.years"},
		},
		{
			name:   "Monthly schedule of exactly a century",
			values: map[string]interface{}{"numberOfRepayments": float64(1200), "loanTermFrequency": float64(1200)},
		},
		{
			name: "Daily repayments at the cap",
			values: map[string]interface{}{
				"numberOfRepayments":     float64(5000),
				"loanTermFrequency":      float64(5000),
				"loanTermFrequencyType":  float64(0),
				"repaymentFrequencyType": float64(0),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bag := testutil.ValidScheduleBag()
			for k, v := range tt.values {
				bag = testutil.With(bag, k, v)
			}
			_, errs, err := validateBag(t, bag)
			if len(tt.expected) == 0 {
				require.NoError(t, err)
				return
			}
			require.True(t, errors.Is(err, apierrors.ErrValidationFailed))
			assert.Equal(t, tt.expected, keys(errs))
		})
	}
}

func TestValidateScheduleIntegerPastInt64(t *testing.T) {
	bag := testutil.With(testutil.ValidScheduleBag(), "productId", json.Number("18446744073709551617"))

	_, errs, err := validateBag(t, bag)
	require.Error(t, err)
	assert.Equal(t, []string{"validation.msg.loan.productId.invalid.format"}, keys(errs))
}
