// Package core holds the transaction domain model, validation rules, and
// the amount/summary arithmetic shared by the controllers.
package core

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ParseAmount converts raw form input to a positive amount.
//
// The input is what the user typed while the form was open, so the error
// cases are distinguished for field-level messages: ErrAmountBlank for
// empty/whitespace input, ErrAmountInvalid for anything that is not a plain
// decimal number, ErrAmountNotPositive for zero or negative values.
// A decimal comma is accepted as a separator alongside the dot.
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrAmountBlank
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		// Signs are rejected outright; a leading "-" would otherwise parse
		// and surface as the less helpful non-positive error.
		return 0, ErrAmountInvalid
	}
	for _, r := range s {
		if !unicode.IsDigit(r) && r != '.' {
			return 0, ErrAmountInvalid
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, ErrAmountInvalid
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrAmountInvalid
	}
	if v <= 0 {
		return 0, ErrAmountNotPositive
	}
	return v, nil
}
