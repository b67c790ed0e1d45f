package utils

import "fmt"

// Plan prices are stored in whole rupees; gateways bill in paise.

func RupeesToPaise(rupees int) int {
	return rupees * 100
}

func PaiseToRupees(paise int) int {
	return paise / 100
}

// FormatAmount renders a paise amount for receipts, e.g. "₹900.00".
func FormatAmount(paise int, currency string) string {
	symbol := currency
	if currency == "INR" {
		symbol = "₹"
	}
	return fmt.Sprintf("%s%d.%02d", symbol, paise/100, paise%100)
}
