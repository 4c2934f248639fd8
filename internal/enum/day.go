package enum

import (
	"errors"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Weekday keys used by the day-keyed menu catalog.
const (
	DayLunes     = "lunes"
	DayMartes    = "martes"
	DayMiercoles = "miercoles"
	DayJueves    = "jueves"
	DayViernes   = "viernes"
	DaySabado    = "sabado"
	DayDomingo   = "domingo"
)

// Days lists the weekday keys Monday first, the order the menu editor shows them.
var Days = []string{DayLunes, DayMartes, DayMiercoles, DayJueves, DayViernes, DaySabado, DayDomingo}

// ErrInvalidDay is returned by ParseDay for anything that is not a weekday key.
var ErrInvalidDay = errors.New("invalid day")

// ParseDay maps user input such as "Miércoles" or " SÁBADO " to its weekday key.
func ParseDay(s string) (string, error) {
	// Transformers and casers keep state; build them per call.
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(fold, strings.TrimSpace(s))
	if err != nil {
		return "", ErrInvalidDay
	}
	key := cases.Lower(language.Spanish).String(stripped)
	if !IsDay(key) {
		return "", ErrInvalidDay
	}
	return key, nil
}

// IsDay reports whether s is already a canonical weekday key.
func IsDay(s string) bool {
	for _, d := range Days {
		if d == s {
			return true
		}
	}
	return false
}

// DayOf returns the weekday key for t.
func DayOf(t time.Time) string {
	switch t.Weekday() {
	case time.Monday:
		return DayLunes
	case time.Tuesday:
		return DayMartes
	case time.Wednesday:
		return DayMiercoles
	case time.Thursday:
		return DayJueves
	case time.Friday:
		return DayViernes
	case time.Saturday:
		return DaySabado
	default:
		return DayDomingo
	}
}
