package common

import (
	"fmt"
	"strings"

	"wallet-ledger-go/internal/models"

	"github.com/shopspring/decimal"
)

const (
	// Default separator widths
	DefaultWidth = 80
	WideWidth    = 100
)

// PrintSeparator prints a separator line with the specified character and width
func PrintSeparator(char string, width int) {
	fmt.Println(strings.Repeat(char, width))
}

// PrintHeader prints a formatted header with title and separators
func PrintHeader(title string, width int) {
	fmt.Println("\n" + strings.Repeat("=", width))
	fmt.Println(title)
	PrintSeparator("=", width)
}

// PrintFooter prints a formatted footer with message and separators
func PrintFooter(message string, width int) {
	fmt.Println("\n" + strings.Repeat("=", width))
	fmt.Println(message)
	fmt.Println(strings.Repeat("=", width) + "\n")
}

// BoxPrefix returns the appropriate box-drawing prefix for list items
func BoxPrefix(isLast bool) string {
	if isLast {
		return "└  "
	}
	return "│  "
}

// BoxDetailPrefix returns the prefix for detail lines under list items
func BoxDetailPrefix(isLast bool) string {
	if isLast {
		return "   "
	}
	return "│  "
}

// FormatAmount renders a wallet amount with two decimals, e.g. "NGN 1,250.00".
func FormatAmount(currency string, amount decimal.Decimal) string {
	fixed := amount.Abs().StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	sign := ""
	if amount.IsNegative() {
		sign = "-"
	}
	return fmt.Sprintf("%s %s%s.%s", currency, sign, b.String(), frac)
}

// PrintTransaction prints one transaction as a box-drawing list item.
func PrintTransaction(currency string, tx models.Transaction, isLast bool) {
	fmt.Printf("%s%s  %-6s %-8s %s\n", BoxPrefix(isLast), tx.Reference, tx.Type, tx.Status, FormatAmount(currency, tx.Amount))
	detail := BoxDetailPrefix(isLast)
	if tx.Narration != "" {
		fmt.Printf("%s  %s\n", detail, tx.Narration)
	}
	fmt.Printf("%s  id=%s created=%s\n", detail, tx.Id, tx.CreatedAt.Format("2006-01-02 15:04:05"))
}
