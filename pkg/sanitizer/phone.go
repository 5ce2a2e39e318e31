package sanitizer

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// NormalizePhone returns phone in E.164 form. Numbers without a country prefix are
// read as national numbers of region. An unparseable or impossible number yields "".
func NormalizePhone(phone, region string) string {
	phone = strings.TrimSpace(phone)

	if phone == "" {
		return ""
	}

	parsedNumber, err := phonenumbers.Parse(phone, strings.ToUpper(region))
	if err != nil || !phonenumbers.IsPossibleNumber(parsedNumber) {
		return ""
	}
	return phonenumbers.Format(parsedNumber, phonenumbers.E164)
}
