// Package datetime provides date and time utility functions.
package datetime

import (
	"fmt"
	"strings"
	"time"

	"github.com/iwvelando/loan-schedule/pkg/constants"
	"golang.org/x/text/language"
)

const (
	// DateLayout is the canonical output date format.
	DateLayout = constants.DateLayout

	secondsPerDay = 24 * 60 * 60
)

// Date returns midnight UTC for the given calendar day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Truncate drops the time-of-day and location so dates compare by calendar
// day only.
func Truncate(t time.Time) time.Time {
	y, m, d := t.Date()
	return Date(y, m, d)
}

// patternTokens maps Java-style date pattern letters, longest first, to
// their Go reference-layout equivalent.
var patternTokens = []struct {
	java string
	gol  string
}{
	{"yyyy", "2006"},
	{"yy", "06"},
	{"MMMM", "January"},
	{"MMM", "Jan"},
	{"MM", "01"},
	{"M", "1"},
	{"dd", "02"},
	{"d", "2"},
	{"EEEE", "Monday"},
	{"EEE", "Mon"},
}

// LayoutFromPattern converts a Java-style pattern such as "dd MMMM yyyy" into
// a Go layout. Text in single quotes is copied literally.
func LayoutFromPattern(pattern string) (string, error) {
	if strings.TrimSpace(pattern) == "" {
		return "", fmt.Errorf("empty date pattern")
	}

	var b strings.Builder
	for i := 0; i < len(pattern); {
		c := pattern[i]
		if c == '\'' {
			end := strings.IndexByte(pattern[i+1:], '\'')
			if end < 0 {
				return "", fmt.Errorf("unterminated quote in date pattern %q", pattern)
			}
			b.WriteString(pattern[i+1 : i+1+end])
			i += end + 2
			continue
		}
		if isLetter(c) {
			matched := false
			for _, tok := range patternTokens {
				if strings.HasPrefix(pattern[i:], tok.java) {
					b.WriteString(tok.gol)
					i += len(tok.java)
					matched = true
					break
				}
			}
			if !matched {
				return "", fmt.Errorf("unsupported letter %q in date pattern %q", c, pattern)
			}
			continue
		}
		b.WriteByte(c)
		i++
	}
	return b.String(), nil
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// ParseDate parses value with a Java-style pattern and returns midnight UTC.
// Month and weekday names are read in the language of locale; English names
// are accepted for every locale.
func ParseDate(value, pattern string, locale language.Tag) (time.Time, error) {
	layout, err := LayoutFromPattern(pattern)
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.Parse(layout, toEnglishNames(strings.TrimSpace(value), layout, locale))
	if err != nil {
		return time.Time{}, err
	}
	return Truncate(t), nil
}

// AddMonths adds n months, clamping to the last day of the target month
// instead of overflowing into the next one (31 Jan + 1 month = 28/29 Feb).
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := Date(y, m, 1).AddDate(0, n, 0)
	last := DaysInMonth(first.Year(), first.Month())
	if d > last {
		d = last
	}
	return Date(first.Year(), first.Month(), d)
}

// AddYears adds n years with the same month-end clamping as AddMonths.
func AddYears(t time.Time, n int) time.Time {
	return AddMonths(t, n*constants.MonthsPerYear)
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	return Date(year, month+1, 0).Day()
}

// DaysBetween returns the number of calendar days from a to b. The result is
// negative when b is before a. Unix seconds are used because time.Duration
// saturates for spans beyond about 292 years.
func DaysBetween(a, b time.Time) int {
	return int((Truncate(b).Unix() - Truncate(a).Unix()) / secondsPerDay)
}

// MaxDate returns the later of a and b.
func MaxDate(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}
