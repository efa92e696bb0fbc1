package validation

import "regexp"

// Validation rule patterns shared by the auth service.
var (
	// EmailPattern validates email addresses
	EmailPattern = `^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,4}$`

	// PayrollNumberPattern validates payroll numbers: 1-20 alphanumerics
	PayrollNumberPattern = `^[A-Za-z0-9]{1,20}$`

	// PasswordMinLength is the minimum accepted password length
	PasswordMinLength = 8
)

// CompiledPatterns caches compiled regexes
var CompiledPatterns = struct {
	Email         *regexp.Regexp
	PayrollNumber *regexp.Regexp
}{
	Email:         regexp.MustCompile(EmailPattern),
	PayrollNumber: regexp.MustCompile(PayrollNumberPattern),
}
