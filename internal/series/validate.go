package series

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf16"
)

// MaxNameLength is the longest series name the contract accepts.
const MaxNameLength = 255

// disallowedNameChars matches any character a series name may not contain:
// whitespace and the contract's reserved punctuation. Only "-" and "_" are
// allowed as separators.
var disallowedNameChars = regexp.MustCompile("[\\s|^%#*@`+=?:;'\"{}\\[\\]<>/\\\\]")

// pricePattern matches a whole non-negative integer amount.
var pricePattern = regexp.MustCompile(`^\d+$`)

// ValidationError reports a rejected series name or price. It is surfaced
// to the user and never creates a journal record.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// NormalizeName canonicalizes a user-entered series name the way the
// contract expects it: trimmed and lowercased.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// nameLength counts UTF-16 code units. The contract measures names the
// same way, so a multibyte name near the limit is judged identically on
// both sides.
func nameLength(name string) int {
	return len(utf16.Encode([]rune(name)))
}

// ValidateName checks a normalized series name against the contract's
// naming rules.
func ValidateName(name string) error {
	if len(name) == 0 {
		return &ValidationError{Field: "series name", Message: "must not be empty"}
	}
	if nameLength(name) > MaxNameLength {
		return &ValidationError{
			Field:   "series name",
			Message: fmt.Sprintf("must be at most %d characters", MaxNameLength),
		}
	}
	if disallowedNameChars.MatchString(name) {
		return &ValidationError{
			Field:   "series name",
			Message: "no special characters like: |^%#*@`+=?:;'\". Only \"-\" and \"_\"",
		}
	}
	return nil
}

// ValidatePrice checks a unit price string. Prices are whole token amounts;
// fractions, signs, and non-digits are rejected.
func ValidatePrice(price string) error {
	if !pricePattern.MatchString(price) {
		return &ValidationError{Field: "price", Message: "must be a whole number"}
	}
	return nil
}
