// Package domain turns earthquake records into list display rows.
//
// # Data Source
//
// Records arrive as USGS GeoJSON features, the format served by the USGS
// earthquake feed (https://earthquake.usgs.gov/fdsnws/event/1/). Only three
// properties matter for display:
//
//	properties.mag    magnitude, any real value (negative and ≥10 occur)
//	properties.place  free text, e.g. "5km N of Cairo, Egypt"
//	properties.time   epoch milliseconds, UTC
//
// The feature "id" is carried through as a message key. Features without one
// get a deterministic name-based UUID so replays produce the same key.
//
// # Display Conventions
//
// Magnitude text:
//
//	One fractional digit, rounded half-up on the shortest decimal form of the
//	value: 5.04 → "5.0", 6.95 → "7.0", 0.25 → "0.3". The decimal point is
//	always "." regardless of locale.
//
// Magnitude category (colour key):
//
//	floor(mag) 0–1 → 1 | 2–9 → same | anything else → 10+
//
//	Negative magnitudes land in 10+, the same bucket as great earthquakes.
//	Colours live in a ColorTable supplied by the caller.
//
// Location split:
//
//	"5km N of Cairo, Egypt"   → offset "5km N of", primary " Cairo, Egypt"
//	"Pacific-Antarctic Ridge" → offset "Near the", primary unchanged
//
//	The separator is the bare, case-sensitive two-letter sequence "of", so it
//	also matches inside words: "offshore Bio-Bio, Chile" splits into "of" and
//	"fshore Bio-Bio, Chile". Clients depend on this output; keep it.
//
// Date and time:
//
//	Date "Feb 02, 2016" (abbreviated month, 2-digit day, 4-digit year).
//	Time "4:30 PM" (12-hour clock, no leading zero on the hour).
//	Both are rendered in an explicit time zone with the month names and
//	AM/PM markers of an explicit Locale.
package domain
