package auth

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// NormalizePhoneNumber formats raw as E.164 when it parses as a valid number
// for region. Anything else is kept as given.
func NormalizePhoneNumber(raw, region string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return raw
	}

	if region == "" {
		region = "NG"
	}

	num, err := phonenumbers.Parse(raw, strings.ToUpper(region))
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return raw
	}

	return phonenumbers.Format(num, phonenumbers.E164)
}
