// Package core provides money parsing and handling utilities.
//
// Amounts are kept as integer cents. Parsing goes through shopspring/decimal
// so that both "1.234,56" (pt-BR) and "1234.56" inputs round the same way.
package core

import (
	"errors"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidAmount = errors.New("invalid amount")

// Money is an amount in BRL cents.
type Money struct {
	Cents int64
}

var maxCents = decimal.NewFromInt(1<<63 - 1)

// dotThousands matches "1.234" or "12.345": a dot that may group thousands.
var dotThousands = regexp.MustCompile(`^[1-9][0-9]{0,2}\.[0-9]{3}$`)

// ParseMoney converts a user-entered amount to cents with half-up rounding.
//
// A comma marks the decimal separator when present, in which case dots are
// thousands separators. Without a comma the dot is the decimal separator,
// except that "1.234" is rejected: it reads as R$ 1.234,00 in pt-BR and as
// 1.234 elsewhere. A leading "R$" is ignored. Negative values are rejected;
// zero is allowed so callers decide whether it is meaningful.
//
// Examples:
//
//	ParseMoney("1.234,56") -> 123456
//	ParseMoney("1234.56")  -> 123456
//	ParseMoney("R$ 10")    -> 1000
//	ParseMoney("12,345")   -> 1235
//	ParseMoney("1.234")    -> ErrInvalidAmount
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSpace(strings.TrimPrefix(s, "R$"))
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	} else if dotThousands.MatchString(s) {
		return Money{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	if d.IsNegative() {
		return Money{}, ErrInvalidAmount
	}
	cents := d.Shift(2).Round(0)
	if cents.GreaterThan(maxCents) {
		return Money{}, ErrInvalidAmount
	}
	return Money{Cents: cents.IntPart()}, nil
}

// ParseOptionalMoney returns nil for blank input.
func ParseOptionalMoney(s string) (*Money, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	m, err := ParseMoney(s)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Decimal returns the amount in reais.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal().StringFixed(2)), nil
}

func (m *Money) UnmarshalJSON(b []byte) error {
	parsed, err := ParseMoney(strings.Trim(string(b), `"`))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// CentsOrZero treats a missing amount as zero.
func CentsOrZero(m *Money) int64 {
	if m == nil {
		return 0
	}
	return m.Cents
}
