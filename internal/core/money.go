// Package core holds the obras domain model and the pure operations the
// dashboard is built on: KPI aggregation, project filtering and the helpers
// shared by the report and export layers.
package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/dustin/go-humanize"
)

// Money is an amount in Mexican pesos, stored in cents.
type Money struct {
	Cents int64
}

var ErrInvalidAmount = errors.New("invalid amount")

// Pesos builds a Money from a whole-peso amount.
func Pesos(n int64) Money { return Money{Cents: n * 100} }

// Float returns the peso value for display math.
func (m Money) Float() float64 {
	return float64(m.Cents) / 100.0
}

func (m Money) Add(o Money) Money { return Money{Cents: m.Cents + o.Cents} }

// String formats the amount as "$450,000", with cents only when present
// ("$1,234.50").
func (m Money) String() string {
	whole := humanize.Comma(m.Cents / 100)
	frac := m.Cents % 100
	if frac < 0 {
		frac = -frac
	}
	if frac == 0 {
		return "$" + whole
	}
	return fmt.Sprintf("$%s.%02d", whole, frac)
}

// ParseAmount converts a peso amount as typed in a spreadsheet or seed file
// to cents. A leading "$" and "," thousands separators are accepted; the
// decimal separator is ".". Rounding is half-up on the third decimal.
// Zero is valid, negative values are not.
//
//	ParseAmount("450000")      -> 45000000
//	ParseAmount("$1,234.567")  -> 123457
func ParseAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" || strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	intPart, fracPart, _ := strings.Cut(s, ".")
	if strings.Contains(fracPart, ".") {
		return 0, ErrInvalidAmount
	}
	if intPart == "" {
		intPart = "0"
	}
	if !allDigits(intPart) || !allDigits(fracPart) {
		return 0, ErrInvalidAmount
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	const maxSafe = (1<<63 - 1) / 100
	if iv > maxSafe {
		return 0, ErrInvalidAmount
	}
	var frac int64
	if len(fracPart) > 0 {
		frac = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			frac += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				frac++
			}
		}
	}
	return iv*100 + frac, nil
}

func allDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
