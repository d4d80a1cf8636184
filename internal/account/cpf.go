package account

import "strings"

// NormalizeCPF strips the usual punctuation ("123.456.789-09") and returns the bare digits.
func NormalizeCPF(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '.' || r == '-' || r == ' ' {
			return -1
		}

		return r
	}, s)
}

// ValidCPF reports whether s is an 11 digit cpf with correct check digits.
// Sequences of a single repeated digit pass the checksum but are not issued, so they are rejected.
func ValidCPF(s string) bool {
	if len(s) != 11 {
		return false
	}

	digits := make([]int, 11)
	repeated := true

	for i := range 11 {
		c := s[i]
		if c < '0' || c > '9' {
			return false
		}

		digits[i] = int(c - '0')

		if digits[i] != digits[0] {
			repeated = false
		}
	}

	if repeated {
		return false
	}

	return checkDigit(digits[:9]) == digits[9] && checkDigit(digits[:10]) == digits[10]
}

func checkDigit(digits []int) int {
	sum := 0
	weight := len(digits) + 1

	for _, d := range digits {
		sum += d * weight
		weight--
	}

	rest := (sum * 10) % 11
	if rest == 10 {
		return 0
	}

	return rest
}
