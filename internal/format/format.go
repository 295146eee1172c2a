// Package format renders numbers the way German readers expect them:
// "." groups thousands and "," separates decimals.
package format

import (
	"strings"
	"time"

	"github.com/Veraticus/immowert/internal/model"
	"github.com/shopspring/decimal"
)

// Number renders v rounded half away from zero to exactly places decimals.
func Number(v float64, places int32) string {
	return german(decimal.NewFromFloat(v).Round(places).StringFixed(places))
}

// Locale renders v with up to three decimals and no trailing zeros.
func Locale(v float64) string {
	return german(decimal.NewFromFloat(v).Round(3).String())
}

// Currency renders a whole-euro amount such as "420.000 €".
func Currency(v float64) string {
	return Number(v, 0) + " €"
}

// PerArea renders a euro-per-square-metre value such as "350,00 €/m²".
func PerArea(v float64) string {
	return Number(v, 2) + " €/m²"
}

// Value renders v according to its unit.
func Value(v float64, unit model.Unit) string {
	if unit == model.UnitEURPerSquareMeter {
		return PerArea(v)
	}
	return Currency(v)
}

// Date renders t as "15.10.2026".
func Date(t time.Time) string {
	return t.Format("02.01.2006")
}

// DateTime renders t as "15.10.2026, 14:30".
func DateTime(t time.Time) string {
	return t.Format("02.01.2006, 15:04")
}

func german(s string) string {
	negative := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, frac, hasFrac := strings.Cut(s, ".")
	out := group(intPart)
	if hasFrac {
		out += "," + frac
	}
	if negative {
		out = "-" + out
	}
	return out
}

func group(digits string) string {
	if len(digits) <= 3 {
		return digits
	}

	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
