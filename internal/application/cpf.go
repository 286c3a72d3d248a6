package application

import "strings"

// CleanCPF strips every non-digit character from a CPF.
func CleanCPF(cpf string) string {
	var b strings.Builder
	b.Grow(len(cpf))
	for _, r := range cpf {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidCPF reports whether the cleaned CPF has the expected 11 digits.
func ValidCPF(cpf string) bool {
	cleaned := CleanCPF(cpf)
	return len(cleaned) == 11
}

// FormatCPF renders a cleaned CPF as 000.000.000-00 for display.
func FormatCPF(cpf string) string {
	cleaned := CleanCPF(cpf)
	if len(cleaned) != 11 {
		return cpf
	}
	return cleaned[:3] + "." + cleaned[3:6] + "." + cleaned[6:9] + "-" + cleaned[9:]
}
