package domain

import "strings"

// Locale carries the locale-dependent words used in a display row.
type Locale struct {
	Tag     string
	Months  [12]string // abbreviated, January first
	AM      string
	PM      string
	NearThe string // offset shown when the location has no "of"
}

// English is the default locale.
var English = Locale{
	Tag:     "en",
	Months:  [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"},
	AM:      "AM",
	PM:      "PM",
	NearThe: "Near the",
}

// Japanese follows the month table and markers of the ja locale.
var Japanese = Locale{
	Tag:     "ja",
	Months:  [12]string{"1月", "2月", "3月", "4月", "5月", "6月", "7月", "8月", "9月", "10月", "11月", "12月"},
	AM:      "午前",
	PM:      "午後",
	NearThe: "付近",
}

var locales = map[string]Locale{
	English.Tag:  English,
	Japanese.Tag: Japanese,
}

// LookupLocale resolves a language tag such as "en", "en-US" or "ja_JP.UTF-8"
// by its primary language subtag.
func LookupLocale(tag string) (Locale, bool) {
	lang := strings.ToLower(strings.TrimSpace(tag))
	if i := strings.IndexAny(lang, "-_."); i >= 0 {
		lang = lang[:i]
	}
	l, ok := locales[lang]
	return l, ok
}
