package params

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/iwvelando/loan-schedule/pkg/apierrors"
	"github.com/iwvelando/loan-schedule/pkg/datetime"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParser(t *testing.T, locale, dateFormat string) *LocaleParser {
	t.Helper()
	p, err := NewLocaleParser(locale, dateFormat)
	require.NoError(t, err)
	return p
}

func TestCheckSupported(t *testing.T) {
	bag := Bag{"principal": "1000", "foo": 1, "bar": true}

	err := CheckSupported("", bag, ScheduleParameters)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apierrors.ErrMalformedInput))

	var malformed *apierrors.MalformedInputError
	require.True(t, errors.As(err, &malformed))
	assert.Equal(t, []string{"bar", "foo"}, malformed.Unsupported)

	assert.NoError(t, CheckSupported("", Bag{"principal": "1000", "locale": "en"}, ScheduleParameters))
}

func TestTaxParametersDifferFromSchedule(t *testing.T) {
	bag := Bag{"principal": "1000", "productId": 1}
	assert.NoError(t, CheckSupported("", bag, ScheduleParameters))
	assert.Error(t, CheckSupported("", bag, TaxParameters))
}

func TestElements(t *testing.T) {
	bag := Bag{
		"charges": []interface{}{map[string]interface{}{"chargeId": 1}},
		"bad":     "not-an-array",
		"mixed":   []interface{}{map[string]interface{}{}, 3},
		"null":    nil,
	}

	elements, err := bag.Elements("charges")
	require.NoError(t, err)
	assert.Len(t, elements, 1)

	elements, err = bag.Elements("missing")
	require.NoError(t, err)
	assert.Nil(t, elements)

	elements, err = bag.Elements("null")
	require.NoError(t, err)
	assert.Nil(t, elements)

	_, err = bag.Elements("bad")
	assert.True(t, errors.Is(err, apierrors.ErrMalformedInput))

	_, err = bag.Elements("mixed")
	var malformed *apierrors.MalformedInputError
	require.True(t, errors.As(err, &malformed))
	assert.Equal(t, "mixed[2]", malformed.Scope)
}

func TestLocaleParserDecimal(t *testing.T) {
	tests := []struct {
		name     string
		locale   string
		raw      interface{}
		expected string
		wantErr  bool
	}{
		{name: "English grouping", locale: "en", raw: "1,234.56", expected: "1234.56"},
		{name: "German grouping", locale: "de", raw: "1.234,56", expected: "1234.56"},
		{name: "German without grouping", locale: "de_DE", raw: "99,5", expected: "99.5"},
		{name: "JSON number", locale: "en", raw: json.Number("100000.10"), expected: "100000.1"},
		{name: "Float", locale: "en", raw: 12.5, expected: "12.5"},
		{name: "Int", locale: "en", raw: 7, expected: "7"},
		{name: "Garbage", locale: "en", raw: "12abc", wantErr: true},
		{name: "Boolean", locale: "en", raw: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := mustParser(t, tt.locale, "")
			result, err := p.Decimal(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, result.Equal(decimal.RequireFromString(tt.expected)), "got %s", result)
		})
	}
}

func TestLocaleParserInteger(t *testing.T) {
	p := mustParser(t, "en", "")

	n, err := p.Integer("12")
	require.NoError(t, err)
	assert.Equal(t, int64(12), n)

	n, err = p.Integer(json.Number("3"))
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	n, err = p.Integer(4.0)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	_, err = p.Integer("1.5")
	assert.Error(t, err)

	n, err = p.Integer(json.Number("9223372036854775807"))
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), n)

	_, err = p.Integer(json.Number("18446744073709551617"))
	assert.Error(t, err, "values past int64 must not wrap")

	_, err = p.Integer("-9223372036854775809")
	assert.Error(t, err)
}

func TestLocaleParserDate(t *testing.T) {
	p := mustParser(t, "en", "dd MMMM yyyy")

	d, err := p.Date("10 January 2024")
	require.NoError(t, err)
	assert.True(t, d.Equal(datetime.Date(2024, time.January, 10)))

	d, err = p.Date([]interface{}{2024, 2, 29})
	require.NoError(t, err)
	assert.True(t, d.Equal(datetime.Date(2024, time.February, 29)))

	_, err = p.Date([]interface{}{2023, 2, 29})
	assert.Error(t, err)

	_, err = p.Date("2024-01-10")
	assert.Error(t, err)
}

func TestLocaleParserDateMonthNames(t *testing.T) {
	tests := []struct {
		locale string
		value  string
	}{
		{locale: "fr", value: "10 janvier 2024"},
		{locale: "fr_FR", value: "10 Janvier 2024"},
		{locale: "de", value: "10 Januar 2024"},
		{locale: "es", value: "10 enero 2024"},
		{locale: "pt-BR", value: "10 janeiro 2024"},
		{locale: "fr", value: "10 January 2024"},
	}

	for _, tt := range tests {
		t.Run(tt.locale+" "+tt.value, func(t *testing.T) {
			p := mustParser(t, tt.locale, "dd MMMM yyyy")

			d, err := p.Date(tt.value)
			require.NoError(t, err)
			assert.True(t, d.Equal(datetime.Date(2024, time.January, 10)), "got %s", d)
		})
	}

	_, err := mustParser(t, "en", "dd MMMM yyyy").Date("10 janvier 2024")
	assert.Error(t, err)
}

func TestLocaleParserBool(t *testing.T) {
	p := mustParser(t, "en", "")

	b, err := p.Bool("true")
	require.NoError(t, err)
	assert.True(t, b)

	_, err = p.Bool("yes please")
	assert.Error(t, err)
}

func TestNewLocaleParserRejectsBadHints(t *testing.T) {
	_, err := NewLocaleParser("not a locale!!", "")
	assert.True(t, errors.Is(err, apierrors.ErrMalformedInput))

	_, err = NewLocaleParser("en", "HH:mm")
	assert.True(t, errors.Is(err, apierrors.ErrMalformedInput))
}

func TestParserForBag(t *testing.T) {
	p, err := ParserForBag(Bag{"locale": "de", "dateFormat": "dd.MM.yyyy"}, "en", "yyyy-MM-dd")
	require.NoError(t, err)
	assert.Equal(t, "dd.MM.yyyy", p.DateFormat())
	assert.Equal(t, "de", p.Locale().String())

	p, err = ParserForBag(Bag{}, "en", "yyyy-MM-dd")
	require.NoError(t, err)
	assert.Equal(t, "yyyy-MM-dd", p.DateFormat())

	_, err = ParserForBag(Bag{"locale": 12}, "en", "yyyy-MM-dd")
	assert.True(t, errors.Is(err, apierrors.ErrMalformedInput))
}

func TestFieldPresence(t *testing.T) {
	p := mustParser(t, "en", "")
	bag := Bag{"a": "10", "b": nil, "c": "oops", "d": "  "}

	a := ExtractDecimal(bag, "a", p)
	assert.True(t, a.Valid())

	b := ExtractDecimal(bag, "b", p)
	assert.True(t, b.Supplied)
	assert.True(t, b.Missing())

	c := ExtractDecimal(bag, "c", p)
	assert.True(t, c.Invalid())
	assert.Equal(t, "oops", c.Raw)

	d := ExtractDecimal(bag, "d", p)
	assert.True(t, d.Missing())

	e := ExtractDecimal(bag, "e", p)
	assert.False(t, e.Supplied)
	assert.True(t, e.Missing())
}

func TestNormalizeScheduleElementGate(t *testing.T) {
	p := mustParser(t, "en", "")
	bag := Bag{
		"principal": "1000",
		"charges": []interface{}{
			map[string]interface{}{"chargeId": 1, "amount": "10"},
			map[string]interface{}{"chargeId": 2, "amount": "10", "colour": "red"},
		},
	}

	_, err := NormalizeSchedule(bag, p)
	var malformed *apierrors.MalformedInputError
	require.True(t, errors.As(err, &malformed))
	assert.Equal(t, "charges[2]", malformed.Scope)
	assert.Equal(t, []string{"colour"}, malformed.Unsupported)
}

func TestNormalizeSchedule(t *testing.T) {
	p := mustParser(t, "en", "yyyy-MM-dd")
	bag := Bag{
		"productId":                "1",
		"principal":                "10,000.00",
		"expectedDisbursementDate": "2024-01-10",
		"charges": []interface{}{
			map[string]interface{}{"chargeId": 4, "amount": "25", "dueDate": "2024-02-10"},
		},
		"taxes": []interface{}{
			map[string]interface{}{"id": 1, "taxValue": "2.5", "type": "Percentage"},
		},
	}

	fields, err := NormalizeSchedule(bag, p)
	require.NoError(t, err)
	assert.Equal(t, int64(1), fields.ProductID.Value)
	assert.True(t, fields.Principal.Value.Equal(decimal.NewFromInt(10000)))
	assert.True(t, fields.ExpectedDisbursementDate.Value.Equal(datetime.Date(2024, time.January, 10)))
	assert.True(t, fields.RepaymentsStartingFromDate.Missing())
	require.Len(t, fields.Charges, 1)
	assert.Equal(t, int64(4), fields.Charges[0].ChargeID.Value)
	assert.True(t, fields.Charges[0].DueDate.Valid())
	require.Len(t, fields.Taxes, 1)
	assert.Equal(t, "Percentage", fields.Taxes[0].Type.Value)
}

func TestNormalizeTaxElementGate(t *testing.T) {
	p := mustParser(t, "en", "")
	bag := Bag{
		"principal": "1000",
		"taxes":     []interface{}{map[string]interface{}{"taxValue": "1", "type": "VAT", "rate": 3}},
	}
	_, err := NormalizeTax(bag, p)
	assert.True(t, errors.Is(err, apierrors.ErrMalformedInput))
}

func TestDecodeJSON(t *testing.T) {
	bag, err := DecodeJSON([]byte(`{"principal": 1000.10, "charges": [{"chargeId": 1}]}`))
	require.NoError(t, err)
	assert.Equal(t, json.Number("1000.10"), bag["principal"])

	charges, err := bag.Elements("charges")
	require.NoError(t, err)
	assert.Len(t, charges, 1)

	for name, payload := range map[string]string{
		"empty":    "  ",
		"array":    `[1, 2]`,
		"broken":   `{"principal": `,
		"trailing": `{"principal": 1} {"principal": 2}`,
	} {
		_, err := DecodeJSON([]byte(payload))
		assert.True(t, errors.Is(err, apierrors.ErrMalformedInput), name)
	}
}

func TestDecodeYAML(t *testing.T) {
	bag, err := DecodeYAML([]byte(`
principal: "1,000.50"
numberOfRepayments: 12
expectedDisbursementDate: "2024-01-10"
charges:
  - chargeId: 3
    amount: 25
`))
	require.NoError(t, err)

	p := mustParser(t, "en", "yyyy-MM-dd")
	fields, err := NormalizeSchedule(bag, p)
	require.NoError(t, err)
	assert.True(t, fields.Principal.Value.Equal(decimal.RequireFromString("1000.5")))
	assert.Equal(t, int64(12), fields.NumberOfRepayments.Value)
	assert.True(t, fields.ExpectedDisbursementDate.Valid())
	require.Len(t, fields.Charges, 1)
	assert.Equal(t, int64(3), fields.Charges[0].ChargeID.Value)

	_, err = DecodeYAML([]byte("- just\n- a list\n"))
	assert.True(t, errors.Is(err, apierrors.ErrMalformedInput))
}
