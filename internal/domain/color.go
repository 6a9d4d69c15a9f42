package domain

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

var hexColorRe = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// ColorTable maps a magnitude category to a "#RRGGBB" colour.
type ColorTable map[MagnitudeCategory]string

// DefaultColorTable returns the stock magnitude palette, cool blue for minor
// quakes through deep red for 10+.
func DefaultColorTable() ColorTable {
	return ColorTable{
		Magnitude1:      "#4A7BA7",
		Magnitude2:      "#04B4B3",
		Magnitude3:      "#10CAC9",
		Magnitude4:      "#F5A623",
		Magnitude5:      "#FF7D50",
		Magnitude6:      "#FC6644",
		Magnitude7:      "#E75F40",
		Magnitude8:      "#E13A20",
		Magnitude9:      "#D93218",
		Magnitude10Plus: "#C03823",
	}
}

// Color returns the colour for a category, falling back to the stock palette
// for categories the table does not cover.
func (t ColorTable) Color(c MagnitudeCategory) string {
	if color, ok := t[c]; ok {
		return color
	}
	return DefaultColorTable()[c]
}

// LoadColorTable reads a YAML colour table from path. An empty path yields
// the stock palette.
func LoadColorTable(path string) (ColorTable, error) {
	if path == "" {
		return DefaultColorTable(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read color table: %w", err)
	}
	return ParseColorTable(data)
}

// ParseColorTable decodes YAML of the form
//
//	"1": "#4A7BA7"
//	"10+": "#C03823"
//
// and layers the entries over the stock palette.
func ParseColorTable(data []byte) (ColorTable, error) {
	var entries map[string]string
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse color table: %w", err)
	}

	table := DefaultColorTable()
	for key, value := range entries {
		category, err := ParseMagnitudeCategory(strings.TrimSpace(key))
		if err != nil {
			return nil, fmt.Errorf("parse color table: %w", err)
		}
		value = strings.TrimSpace(value)
		if !hexColorRe.MatchString(value) {
			return nil, fmt.Errorf("parse color table: category %s: invalid color %q", category, value)
		}
		table[category] = strings.ToUpper(value)
	}
	return table, nil
}

// ParseHexColor splits "#RRGGBB" into its channels.
func ParseHexColor(s string) (r, g, b int, err error) {
	if !hexColorRe.MatchString(s) {
		return 0, 0, 0, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return int(v >> 16 & 0xFF), int(v >> 8 & 0xFF), int(v & 0xFF), nil
}
