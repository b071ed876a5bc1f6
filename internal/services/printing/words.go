package printing

import "strings"

// AmountPlaceholder is returned for amounts the words formatter does not
// cover (1000 and above).
const AmountPlaceholder = "Amount exceeds limit"

var (
	onesWords = []string{"", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine"}
	teenWords = []string{"Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen", "Sixteen", "Seventeen", "Eighteen", "Nineteen"}
	tensWords = []string{"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy", "Eighty", "Ninety"}
)

// AmountInWords spells out a whole rupee amount from 0 to 999, e.g.
// 49 -> "Forty Nine Rupees only". Larger amounts get the placeholder.
func AmountInWords(amount int) string {
	if amount < 0 || amount > 999 {
		return AmountPlaceholder
	}
	if amount == 0 {
		return "Zero Rupees only"
	}
	return wordsBelowThousand(amount) + " Rupees only"
}

func wordsBelowThousand(n int) string {
	var parts []string
	if n >= 100 {
		parts = append(parts, onesWords[n/100], "Hundred")
		n %= 100
	}
	switch {
	case n >= 20:
		parts = append(parts, tensWords[n/10])
		if n%10 > 0 {
			parts = append(parts, onesWords[n%10])
		}
	case n >= 10:
		parts = append(parts, teenWords[n-10])
	case n > 0:
		parts = append(parts, onesWords[n])
	}
	return strings.Join(parts, " ")
}
