package logger

// RedactPhone masks a phone number for safe logging, keeping the first two
// and last two digits.
// "+5511987654321" → "+55*********21"
// Numbers with fewer than six digits are fully masked.
func RedactPhone(number string) string {
	digits := 0
	for _, r := range number {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	if digits < 6 {
		return "***"
	}

	out := []rune(number)
	seen := 0
	for i, r := range out {
		if r < '0' || r > '9' {
			continue
		}
		seen++
		if seen <= 2 || digits-seen < 2 {
			continue
		}
		out[i] = '*'
	}
	return string(out)
}
