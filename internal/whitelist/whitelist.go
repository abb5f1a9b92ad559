package whitelist

import (
	"strings"
	"unicode"

	"github.com/nyaruka/phonenumbers"
	"go.uber.org/zap"
)

// Checker reports whether a sender address is trusted
type Checker struct {
	addresses map[string]struct{}
	region    string
	logger    *zap.Logger
}

// NewChecker creates a new whitelist checker. region is the ISO 3166 code
// assumed for phone numbers written without a country code.
func NewChecker(addresses []string, region string, logger *zap.Logger) *Checker {
	normalized := make(map[string]struct{}, len(addresses))
	for _, address := range addresses {
		if n := Normalize(address, region); n != "" {
			normalized[n] = struct{}{}
		}
	}

	if len(normalized) > 0 && logger != nil {
		logger.Info("Initialized whitelist checker",
			zap.Int("addresses", len(normalized)),
			zap.String("region", region))
	}

	return &Checker{
		addresses: normalized,
		region:    region,
		logger:    logger,
	}
}

// IsWhitelisted checks if the address is in the whitelist
func (c *Checker) IsWhitelisted(address string) bool {
	if len(c.addresses) == 0 {
		return false
	}

	n := Normalize(address, c.region)
	if _, ok := c.addresses[n]; ok {
		if c.logger != nil {
			c.logger.Debug("Address is whitelisted", zap.String("address", address))
		}
		return true
	}
	return false
}

// Normalize canonicalises an address. Phone numbers are formatted as E.164
// when they parse as a possible number; anything else, such as short codes
// and alphanumeric sender ids, loses its formatting characters and is
// lowercased.
func Normalize(address, region string) string {
	address = strings.TrimSpace(address)
	if address == "" {
		return ""
	}

	if isPhoneLike(address) {
		if num, err := phonenumbers.Parse(address, region); err == nil && phonenumbers.IsPossibleNumber(num) {
			return phonenumbers.Format(num, phonenumbers.E164)
		}
	}

	var b strings.Builder
	for _, r := range address {
		switch r {
		case ' ', '-', '(', ')', '.':
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

func isPhoneLike(address string) bool {
	digits := false
	for _, r := range address {
		switch {
		case unicode.IsDigit(r):
			digits = true
		case unicode.IsLetter(r):
			return false
		}
	}
	return digits
}
