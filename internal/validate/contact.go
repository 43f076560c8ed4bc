package validate

import (
	"net/mail"
	"regexp"
)

var mobilePattern = regexp.MustCompile(`^[0-9]{10}$`)

// ValidateMobile accepts exactly ten digits, the format consignee contact
// numbers are recorded in.
func ValidateMobile(number string) bool {
	return mobilePattern.MatchString(number)
}

func ValidateEmail(address string) bool {
	if address == "" {
		return false
	}
	_, err := mail.ParseAddress(address)
	return err == nil
}
