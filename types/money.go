package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Price is a non-negative monetary amount held as cents so arithmetic
// and comparisons stay exact. It marshals as a decimal string with two
// fraction digits, e.g. "15000.00".
type Price int64

// ErrInvalidPrice is returned when a price string cannot be parsed.
var ErrInvalidPrice = errors.New("invalid price")

// maxPriceDigits bounds the integer part, mirroring the NUMERIC(10,2)
// column the amount is validated against.
const maxPriceDigits = 8

// ParsePrice parses a decimal string into a Price. At most two
// fraction digits are accepted and the amount must not be negative.
func ParsePrice(raw string) (Price, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, ErrInvalidPrice
	}

	whole, frac := raw, ""
	if idx := strings.IndexByte(raw, '.'); idx >= 0 {
		whole, frac = raw[:idx], raw[idx+1:]
	}
	if whole == "" || len(whole) > maxPriceDigits || len(frac) > 2 {
		return 0, ErrInvalidPrice
	}

	var cents int64
	for _, r := range whole {
		if r < '0' || r > '9' {
			return 0, ErrInvalidPrice
		}
		cents = cents*10 + int64(r-'0')
	}
	cents *= 100

	scale := int64(10)
	for _, r := range frac {
		if r < '0' || r > '9' {
			return 0, ErrInvalidPrice
		}
		cents += int64(r-'0') * scale
		scale /= 10
	}

	return Price(cents), nil
}

// String formats the price with two fraction digits.
func (p Price) String() string {
	return fmt.Sprintf("%d.%02d", int64(p)/100, int64(p)%100)
}

// MarshalJSON encodes the price as a decimal string.
func (p Price) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON decodes a decimal string into the price.
func (p *Price) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParsePrice(raw)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
