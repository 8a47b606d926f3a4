package params

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/iwvelando/loan-schedule/pkg/apierrors"
	"github.com/iwvelando/loan-schedule/pkg/constants"
	"github.com/iwvelando/loan-schedule/pkg/datetime"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Parser converts raw bag values into typed values. The engine depends on
// this interface only; locale and date-format handling live behind it.
type Parser interface {
	Decimal(raw interface{}) (decimal.Decimal, error)
	Integer(raw interface{}) (int64, error)
	Date(raw interface{}) (time.Time, error)
	Bool(raw interface{}) (bool, error)
	String(raw interface{}) (string, error)
}

// LocaleParser parses numbers with a locale's grouping and decimal
// separators and dates with a Java-style pattern.
type LocaleParser struct {
	tag        language.Tag
	pattern    string
	group      string
	decimalSep string
}

var (
	minInt64 = decimal.NewFromInt(math.MinInt64)
	maxInt64 = decimal.NewFromInt(math.MaxInt64)
)

// NewLocaleParser builds a parser for locale (BCP 47, "en", "de_DE", ...) and
// a Java-style date pattern. Empty arguments fall back to the defaults.
func NewLocaleParser(locale, dateFormat string) (*LocaleParser, error) {
	if strings.TrimSpace(locale) == "" {
		locale = constants.DefaultLocale
	}
	if strings.TrimSpace(dateFormat) == "" {
		dateFormat = constants.DefaultDateFormat
	}

	tag, err := language.Parse(strings.ReplaceAll(locale, "_", "-"))
	if err != nil {
		return nil, apierrors.NewMalformed(constants.LocaleParameter, fmt.Sprintf("invalid locale %q", locale))
	}
	if _, err := datetime.LayoutFromPattern(dateFormat); err != nil {
		return nil, apierrors.NewMalformed(constants.DateFormatParameter, err.Error())
	}

	group, dec := separators(tag)
	return &LocaleParser{
		tag:        tag,
		pattern:    dateFormat,
		group:      group,
		decimalSep: dec,
	}, nil
}

// ParserForBag builds a LocaleParser from the bag's locale and dateFormat
// keys, falling back to the supplied defaults.
func ParserForBag(bag Bag, defaultLocale, defaultDateFormat string) (*LocaleParser, error) {
	locale := defaultLocale
	if raw, ok := bag[constants.LocaleParameter]; ok && raw != nil {
		s, isString := raw.(string)
		if !isString {
			return nil, apierrors.NewMalformed(constants.LocaleParameter, "expected a string")
		}
		locale = s
	}
	dateFormat := defaultDateFormat
	if raw, ok := bag[constants.DateFormatParameter]; ok && raw != nil {
		s, isString := raw.(string)
		if !isString {
			return nil, apierrors.NewMalformed(constants.DateFormatParameter, "expected a string")
		}
		dateFormat = s
	}
	return NewLocaleParser(locale, dateFormat)
}

// separators derives the grouping and decimal separators of tag by
// formatting a known number with the locale's printer.
func separators(tag language.Tag) (group, dec string) {
	sample := message.NewPrinter(tag).Sprintf("%.1f", 1234.5)
	var seps []string
	for _, r := range sample {
		if !unicode.IsDigit(r) {
			seps = append(seps, string(r))
		}
	}
	switch len(seps) {
	case 0:
		return ",", "."
	case 1:
		if seps[0] == "." {
			return ",", "."
		}
		return ".", seps[0]
	default:
		return seps[0], seps[len(seps)-1]
	}
}

// Locale returns the resolved language tag.
func (p *LocaleParser) Locale() language.Tag {
	return p.tag
}

// DateFormat returns the Java-style date pattern in use.
func (p *LocaleParser) DateFormat() string {
	return p.pattern
}

// Decimal accepts JSON/YAML numbers and locale-formatted strings.
func (p *LocaleParser) Decimal(raw interface{}) (decimal.Decimal, error) {
	switch v := raw.(type) {
	case decimal.Decimal:
		return v, nil
	case json.Number:
		return decimal.NewFromString(v.String())
	case float64:
		return decimal.NewFromFloat(v), nil
	case float32:
		return decimal.NewFromFloat32(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case string:
		return p.parseLocalized(v)
	default:
		return decimal.Zero, fmt.Errorf("expected a number, got %T", raw)
	}
}

func (p *LocaleParser) parseLocalized(s string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return decimal.Zero, fmt.Errorf("empty number")
	}
	if p.group != "" {
		trimmed = strings.ReplaceAll(trimmed, p.group, "")
		// Locales grouping with a no-break space are often typed with a
		// plain space.
		if strings.TrimSpace(p.group) == "" {
			trimmed = strings.ReplaceAll(trimmed, " ", "")
		}
	}
	if p.decimalSep != "." {
		if strings.Contains(trimmed, ".") {
			return decimal.Zero, fmt.Errorf("unexpected '.' in %q for locale %s", s, p.tag)
		}
		trimmed = strings.ReplaceAll(trimmed, p.decimalSep, ".")
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid number %q for locale %s", s, p.tag)
	}
	return d, nil
}

// Integer accepts whole numbers only.
func (p *LocaleParser) Integer(raw interface{}) (int64, error) {
	switch v := raw.(type) {
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case int32:
		return int64(v), nil
	}
	d, err := p.Decimal(raw)
	if err != nil {
		return 0, err
	}
	if !d.IsInteger() {
		return 0, fmt.Errorf("expected a whole number, got %s", d)
	}
	if d.LessThan(minInt64) || d.GreaterThan(maxInt64) {
		return 0, fmt.Errorf("whole number %s is out of range", d)
	}
	return d.IntPart(), nil
}

// Date accepts a string in the configured pattern with month and weekday
// names in the parser's language, a [year, month, day] array, or a
// time.Time.
func (p *LocaleParser) Date(raw interface{}) (time.Time, error) {
	switch v := raw.(type) {
	case time.Time:
		return datetime.Truncate(v), nil
	case string:
		t, err := datetime.ParseDate(v, p.pattern, p.tag)
		if err != nil {
			return time.Time{}, fmt.Errorf("date %q does not match format %q for locale %s", v, p.pattern, p.tag)
		}
		return t, nil
	case []interface{}:
		if len(v) != 3 {
			return time.Time{}, fmt.Errorf("expected [year, month, day], got %d elements", len(v))
		}
		var parts [3]int64
		for i, item := range v {
			n, err := p.Integer(item)
			if err != nil {
				return time.Time{}, err
			}
			parts[i] = n
		}
		t := datetime.Date(int(parts[0]), time.Month(parts[1]), int(parts[2]))
		if t.Year() != int(parts[0]) || t.Month() != time.Month(parts[1]) || t.Day() != int(parts[2]) {
			return time.Time{}, fmt.Errorf("invalid date %v", v)
		}
		return t, nil
	default:
		return time.Time{}, fmt.Errorf("expected a date, got %T", raw)
	}
}

// Bool accepts booleans and the strings "true"/"false".
func (p *LocaleParser) Bool(raw interface{}) (bool, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return false, fmt.Errorf("expected true or false, got %q", v)
		}
		return b, nil
	default:
		return false, fmt.Errorf("expected a boolean, got %T", raw)
	}
}

// String accepts strings and formats scalars.
func (p *LocaleParser) String(raw interface{}) (string, error) {
	switch v := raw.(type) {
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case int, int64, float64, bool:
		return fmt.Sprint(v), nil
	default:
		return "", fmt.Errorf("expected a string, got %T", raw)
	}
}
