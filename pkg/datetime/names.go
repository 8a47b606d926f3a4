package datetime

import (
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/language"
)

// calendarNames maps lower-case month and weekday names of one language,
// full and abbreviated, to their calendar values.
type calendarNames struct {
	months   map[string]time.Month
	weekdays map[string]time.Weekday
}

func newCalendarNames(months [12][]string, weekdays [7]string) calendarNames {
	n := calendarNames{
		months:   make(map[string]time.Month),
		weekdays: make(map[string]time.Weekday),
	}
	for i, names := range months {
		for _, name := range names {
			n.months[name] = time.January + time.Month(i)
		}
	}
	for i, name := range weekdays {
		n.weekdays[name] = time.Sunday + time.Weekday(i)
	}
	return n
}

// calendars is keyed by base language. Weekdays run Sunday first.
var calendars = map[string]calendarNames{
	"fr": newCalendarNames([12][]string{
		{"janvier", "janv"},
		{"février", "fevrier", "févr", "fevr"},
		{"mars"},
		{"avril", "avr"},
		{"mai"},
		{"juin"},
		{"juillet", "juil"},
		{"août", "aout"},
		{"septembre", "sept"},
		{"octobre", "oct"},
		{"novembre", "nov"},
		{"décembre", "decembre", "déc", "dec"},
	}, [7]string{"dimanche", "lundi", "mardi", "mercredi", "jeudi", "vendredi", "samedi"}),
	"de": newCalendarNames([12][]string{
		{"januar", "jänner", "jan"},
		{"februar", "feb"},
		{"märz", "maerz", "mär"},
		{"april", "apr"},
		{"mai"},
		{"juni", "jun"},
		{"juli", "jul"},
		{"august", "aug"},
		{"september", "sep", "sept"},
		{"oktober", "okt"},
		{"november", "nov"},
		{"dezember", "dez"},
	}, [7]string{"sonntag", "montag", "dienstag", "mittwoch", "donnerstag", "freitag", "samstag"}),
	"es": newCalendarNames([12][]string{
		{"enero", "ene"},
		{"febrero", "feb"},
		{"marzo", "mar"},
		{"abril", "abr"},
		{"mayo", "may"},
		{"junio", "jun"},
		{"julio", "jul"},
		{"agosto", "ago"},
		{"septiembre", "setiembre", "sep", "sept"},
		{"octubre", "oct"},
		{"noviembre", "nov"},
		{"diciembre", "dic"},
	}, [7]string{"domingo", "lunes", "martes", "miércoles", "jueves", "viernes", "sábado"}),
	"pt": newCalendarNames([12][]string{
		{"janeiro", "jan"},
		{"fevereiro", "fev"},
		{"março", "marco", "mar"},
		{"abril", "abr"},
		{"maio", "mai"},
		{"junho", "jun"},
		{"julho", "jul"},
		{"agosto", "ago"},
		{"setembro", "set"},
		{"outubro", "out"},
		{"novembro", "nov"},
		{"dezembro", "dez"},
	}, [7]string{"domingo", "segunda", "terça", "quarta", "quinta", "sexta", "sábado"}),
	"it": newCalendarNames([12][]string{
		{"gennaio", "gen"},
		{"febbraio", "feb"},
		{"marzo", "mar"},
		{"aprile", "apr"},
		{"maggio", "mag"},
		{"giugno", "giu"},
		{"luglio", "lug"},
		{"agosto", "ago"},
		{"settembre", "set"},
		{"ottobre", "ott"},
		{"novembre", "nov"},
		{"dicembre", "dic"},
	}, [7]string{"domenica", "lunedì", "martedì", "mercoledì", "giovedì", "venerdì", "sabato"}),
	"nl": newCalendarNames([12][]string{
		{"januari", "jan"},
		{"februari", "feb"},
		{"maart", "mrt"},
		{"april", "apr"},
		{"mei"},
		{"juni", "jun"},
		{"juli", "jul"},
		{"augustus", "aug"},
		{"september", "sep", "sept"},
		{"oktober", "okt"},
		{"november", "nov"},
		{"december", "dec"},
	}, [7]string{"zondag", "maandag", "dinsdag", "woensdag", "donderdag", "vrijdag", "zaterdag"}),
}

// toEnglishNames rewrites the month and weekday names of locale's language
// in value to the English form layout expects. Words the language does not
// know are kept, so English input still parses.
func toEnglishNames(value, layout string, locale language.Tag) string {
	base, _ := locale.Base()
	names, ok := calendars[base.String()]
	if !ok {
		return value
	}
	longMonth := strings.Contains(layout, "January")
	longWeekday := strings.Contains(layout, "Monday")

	runes := []rune(value)
	var b strings.Builder
	for i := 0; i < len(runes); {
		if !unicode.IsLetter(runes[i]) {
			b.WriteRune(runes[i])
			i++
			continue
		}
		j := i
		for j < len(runes) && unicode.IsLetter(runes[j]) {
			j++
		}
		b.WriteString(names.english(string(runes[i:j]), longMonth, longWeekday))
		i = j
	}
	return b.String()
}

func (n calendarNames) english(word string, longMonth, longWeekday bool) string {
	lower := strings.ToLower(word)
	if m, ok := n.months[lower]; ok {
		return shorten(m.String(), longMonth)
	}
	if d, ok := n.weekdays[lower]; ok {
		return shorten(d.String(), longWeekday)
	}
	return word
}

func shorten(name string, long bool) string {
	if long {
		return name
	}
	return name[:3]
}
