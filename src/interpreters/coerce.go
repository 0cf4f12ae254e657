package interpreters

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var amountCleaner = strings.NewReplacer("$", "", ",", "", " ", "")

// parseAmount parses a currency or numeric string, stripping dollar signs
// and thousands separators. Accounting-style parentheses mean a negative
// amount.
func parseAmount(raw string) (decimal.Decimal, error) {
	cleaned := amountCleaner.Replace(raw)
	negative := false
	if strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") {
		negative = true
		cleaned = cleaned[1 : len(cleaned)-1]
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parsing amount %q: %w", raw, err)
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}

// parseYesNo parses the portal's boolean serializations. Data entry quality
// varies, so the common long forms are accepted alongside Y/N.
func parseYesNo(raw string) (bool, error) {
	switch strings.ToLower(raw) {
	case "y", "yes", "true", "t", "1":
		return true, nil
	case "n", "no", "false", "f", "0":
		return false, nil
	}
	return false, fmt.Errorf("%q is not a valid boolean string", raw)
}
