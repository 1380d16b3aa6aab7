package validator

import (
	"regexp"
	"strings"
	"time"
)

type ValidationError struct {
	Field   string
	Message string
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var msgs []string
	for _, err := range v {
		msgs = append(msgs, err.Field+": "+err.Message)
	}
	return strings.Join(msgs, "; ")
}

func (v ValidationErrors) ToMap() map[string]string {
	result := make(map[string]string)
	for _, err := range v {
		result[err.Field] = err.Message
	}
	return result
}

// IsEmpty checks if a string is empty after trimming whitespace.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

// UUIDv7 regex: version 7 (the 15th character must be '7'), all lowercase hex digits.
var uuidv7Regex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-7[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

// UUIDv7 validation
func IsValidUUID(uuid string) bool {
	return uuidv7Regex.MatchString(strings.ToLower(uuid))
}

// Numeric validation
var numericRegex = regexp.MustCompile(`^[0-9]+$`)

func IsNumeric(s string) bool {
	return numericRegex.MatchString(s)
}

// Date validation
func IsValidDate(dateStr string) (time.Time, bool) {
	date, err := time.Parse("2006-01-02", dateStr)
	return date, err == nil
}

// PAN: five letters, four digits, one letter. The fourth letter is the holder type.
var panRegex = regexp.MustCompile(`^[A-Z]{3}[ABCFGHLJPT][A-Z][0-9]{4}[A-Z]$`)

func IsValidPAN(pan string) bool {
	return panRegex.MatchString(strings.ToUpper(strings.TrimSpace(pan)))
}

// IFSC: four letter bank code, a zero, six alphanumeric branch characters.
var ifscRegex = regexp.MustCompile(`^[A-Z]{4}0[A-Z0-9]{6}$`)

func IsValidIFSC(ifsc string) bool {
	return ifscRegex.MatchString(strings.ToUpper(strings.TrimSpace(ifsc)))
}

// UAN validation (EPFO universal account number)
func IsValidUAN(uan string) bool {
	return len(uan) == 12 && IsNumeric(uan)
}

// ESIC insurance numbers are 10 or 17 digits.
func IsValidESICNumber(n string) bool {
	return (len(n) == 10 || len(n) == 17) && IsNumeric(n)
}
