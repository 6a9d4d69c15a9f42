package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// offsetSeparator is matched as a bare substring, not as the word " of ".
const offsetSeparator = "of"

// Formatter renders records for one locale and time zone. The zero value is
// not usable; build one with NewFormatter. A Formatter is immutable and safe
// for concurrent use.
type Formatter struct {
	locale Locale
	zone   *time.Location
}

// NewFormatter binds a locale and a time zone. A nil zone means UTC.
func NewFormatter(locale Locale, zone *time.Location) Formatter {
	if zone == nil {
		zone = time.UTC
	}
	return Formatter{locale: locale, zone: zone}
}

// Locale returns the formatter's locale.
func (f Formatter) Locale() Locale { return f.locale }

// Zone returns the formatter's time zone.
func (f Formatter) Zone() *time.Location { return f.zone }

// FormatRow maps one record to the strings its list row displays.
func (f Formatter) FormatRow(rec EarthquakeRecord) DisplayRow {
	offset, primary := splitLocation(rec.Location, f.locale.NearThe)
	return DisplayRow{
		MagnitudeText:     FormatMagnitude(rec.Magnitude),
		MagnitudeCategory: CategoryOf(rec.Magnitude),
		PrimaryLocation:   primary,
		OffsetLocation:    offset,
		DateText:          f.FormatDate(rec.TimeInMillis),
		TimeText:          f.FormatTime(rec.TimeInMillis),
	}
}

// FormatDate renders the date part, e.g. "Feb 02, 2016".
func (f Formatter) FormatDate(epochMillis int64) string {
	t := time.UnixMilli(epochMillis).In(f.zone)
	return fmt.Sprintf("%s %02d, %04d", f.locale.Months[t.Month()-1], t.Day(), t.Year())
}

// FormatTime renders the time part on a 12-hour clock, e.g. "4:30 PM".
func (f Formatter) FormatTime(epochMillis int64) string {
	t := time.UnixMilli(epochMillis).In(f.zone)
	hour := t.Hour() % 12
	if hour == 0 {
		hour = 12
	}
	marker := f.locale.AM
	if t.Hour() >= 12 {
		marker = f.locale.PM
	}
	return fmt.Sprintf("%d:%02d %s", hour, t.Minute(), marker)
}

// SplitLocation splits a location at the first "of" into an offset phrase
// and a primary location, using the English fallback offset.
func SplitLocation(raw string) (offset, primary string) {
	return splitLocation(raw, English.NearThe)
}

func splitLocation(raw, nearThe string) (string, string) {
	before, after, found := strings.Cut(raw, offsetSeparator)
	if !found {
		return nearThe, raw
	}
	return before + offsetSeparator, after
}

// FormatMagnitude renders a magnitude with exactly one fractional digit,
// rounding half-up on the shortest decimal representation of the value.
// Results that round to zero carry no sign.
func FormatMagnitude(magnitude float64) string {
	switch {
	case math.IsNaN(magnitude):
		return "NaN"
	case math.IsInf(magnitude, 1):
		return "∞"
	case math.IsInf(magnitude, -1):
		return "-∞"
	}

	s := strconv.FormatFloat(magnitude, 'f', -1, 64)
	negative := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	whole, frac, _ := strings.Cut(s, ".")
	frac += "00"
	digits := []byte(whole + frac[:1])
	if frac[1] >= '5' {
		digits = incrementDigits(digits)
	}

	n := len(digits)
	out := string(digits[:n-1]) + "." + string(digits[n-1:])
	if negative && strings.Trim(string(digits), "0") != "" {
		out = "-" + out
	}
	return out
}

// incrementDigits adds one to a string of decimal digits.
func incrementDigits(digits []byte) []byte {
	for i := len(digits) - 1; i >= 0; i-- {
		if digits[i] < '9' {
			digits[i]++
			return digits
		}
		digits[i] = '0'
	}
	return append([]byte{'1'}, digits...)
}
