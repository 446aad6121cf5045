package lineitems

import (
	"strings"

	"github.com/shopspring/decimal"
)

// parseAmount reads a price written in the given style. Currency prefixes
// such as "Rp" and inner spaces are ignored.
// Examples: plain "1,500,000.50", european "1.500.000,50", both "750000".
func parseAmount(s string, style amountStyle) (decimal.Decimal, error) {
	clean := strings.TrimSpace(s)
	clean = strings.TrimPrefix(strings.TrimPrefix(clean, "Rp"), "IDR")
	clean = strings.ReplaceAll(clean, " ", "")

	switch style {
	case amountEuropean:
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.ReplaceAll(clean, ",", ".")
	case amountPlain:
		clean = strings.ReplaceAll(clean, ",", "")
	}

	return decimal.NewFromString(clean)
}
