package logger

import "strings"

// RedactPhone masks a phone number for safe logging, keeping the last four
// digits. "+15551230000" → "********0000"
// Numbers with four or fewer digits are fully masked.
func RedactPhone(phone string) string {
	var digits []rune
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits = append(digits, r)
		}
	}
	if len(digits) == 0 {
		return phone
	}
	if len(digits) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(digits)-4) + string(digits[len(digits)-4:])
}
