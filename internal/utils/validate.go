package utils

import "regexp"

// postalCodeRe matches the fixed five-digit numeric postal code format.
var postalCodeRe = regexp.MustCompile(`^[0-9]{5}$`)

// ValidPostalCode reports whether s is exactly five ASCII digits.
func ValidPostalCode(s string) bool {
    return postalCodeRe.MatchString(s)
}
