// Package currency formats and parses Kenyan shilling amounts.
package currency

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const Code = "KES"

var printer = message.NewPrinter(language.English)

// Format renders v as "KES 1,234.5": grouped thousands, at most two
// fraction digits.
func Format(v float64) string {
	return Code + " " + printer.Sprint(number.Decimal(v, number.MaxFractionDigits(2)))
}

// Parse keeps only digits and the decimal point of s and parses the rest,
// so "KES 1,500,000" and "1500000" both yield 1500000.
func Parse(s string) (float64, error) {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' {
			return r
		}
		return -1
	}, s)
	if cleaned == "" {
		return 0, fmt.Errorf("amount %q has no digits", s)
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return v, nil
}
