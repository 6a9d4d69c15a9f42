package domain

import (
	"fmt"
	"math"
	"strconv"
)

// MagnitudeCategory is the colour bucket of a magnitude.
type MagnitudeCategory int

const (
	Magnitude1 MagnitudeCategory = iota + 1
	Magnitude2
	Magnitude3
	Magnitude4
	Magnitude5
	Magnitude6
	Magnitude7
	Magnitude8
	Magnitude9
	Magnitude10Plus
)

// Categories lists every category in ascending order.
var Categories = []MagnitudeCategory{
	Magnitude1, Magnitude2, Magnitude3, Magnitude4, Magnitude5,
	Magnitude6, Magnitude7, Magnitude8, Magnitude9, Magnitude10Plus,
}

// CategoryOf buckets a magnitude by its integer floor: 0 and 1 share bucket 1,
// 2 through 9 map to themselves, everything else (≥10, negative, infinite)
// goes to 10+. NaN falls in bucket 1.
func CategoryOf(magnitude float64) MagnitudeCategory {
	if math.IsNaN(magnitude) {
		return Magnitude1
	}
	floor := math.Floor(magnitude)
	switch {
	case floor >= 0 && floor <= 1:
		return Magnitude1
	case floor >= 2 && floor <= 9:
		return MagnitudeCategory(int(floor))
	default:
		return Magnitude10Plus
	}
}

func (c MagnitudeCategory) String() string {
	if c == Magnitude10Plus {
		return "10+"
	}
	return strconv.Itoa(int(c))
}

// ParseMagnitudeCategory is the inverse of String.
func ParseMagnitudeCategory(s string) (MagnitudeCategory, error) {
	if s == "10+" {
		return Magnitude10Plus, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < int(Magnitude1) || n > int(Magnitude9) {
		return 0, fmt.Errorf("invalid magnitude category %q", s)
	}
	return MagnitudeCategory(n), nil
}

// MarshalText encodes the category as "1".."9" or "10+".
func (c MagnitudeCategory) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes the form produced by MarshalText.
func (c *MagnitudeCategory) UnmarshalText(text []byte) error {
	parsed, err := ParseMagnitudeCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
