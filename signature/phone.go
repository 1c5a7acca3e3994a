package signature

import (
	"strings"
	"unicode"
)

const DomesticCountry = "FR"

// alternateCountries use the 3-3-4 grouping.
var alternateCountries = map[string]bool{
	"CA": true,
	"US": true,
}

// FormatPhone strips whitespace and separators and groups the digits for
// country. Domestic numbers of 9 digits get their leading zero back and are
// grouped in pairs; CA and US numbers are grouped 3-3-4. Lengths that do not
// fit the pattern end with a shorter remainder group. Numbers entered in
// international form (leading +) are only stripped.
func FormatPhone(raw, country string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '.', '-', '/', '(', ')':
			return -1
		}
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)
	if cleaned == "" || strings.HasPrefix(cleaned, "+") {
		return cleaned
	}

	if alternateCountries[strings.ToUpper(country)] {
		return group(cleaned, []int{3, 3, 4})
	}
	if len(cleaned) == 9 {
		cleaned = "0" + cleaned
	}
	return group(cleaned, []int{2})
}

// group splits s into groups of the given sizes; the last size repeats until
// at most one remainder group is left.
func group(s string, sizes []int) string {
	var parts []string
	for i := 0; s != ""; i++ {
		size := sizes[len(sizes)-1]
		if i < len(sizes) {
			size = sizes[i]
		}
		if size > len(s) {
			size = len(s)
		}
		parts = append(parts, s[:size])
		s = s[size:]
	}
	return strings.Join(parts, " ")
}
