package v1

import (
	"strings"

	"golang.org/x/text/language"
)

// UnknownCountry replaces country codes that are not a recognized region.
const UnknownCountry = "Unknown"

// countryAliases maps exceptionally reserved codes still sent by clients
// to their assigned ISO 3166-1 code.
var countryAliases = map[string]string{
	"UK": "GB",
}

// nonCountryCodes are reserved or withdrawn codes that x/text still parses
// as regions. None is an assigned ISO 3166-1 country.
var nonCountryCodes = map[string]struct{}{
	"AC": {}, "AN": {}, "BU": {}, "CP": {}, "CS": {}, "DD": {},
	"DG": {}, "EA": {}, "EU": {}, "EZ": {}, "FX": {}, "IC": {},
	"SU": {}, "TA": {}, "TP": {}, "UN": {}, "YU": {}, "ZR": {},
}

// NormalizeCountry upper-cases a two-letter ISO 3166-1 code and returns
// UnknownCountry for anything else, including numeric and three-letter codes
// and reserved or withdrawn codes. UK is folded into GB.
func NormalizeCountry(raw string) string {
	code := strings.ToUpper(strings.TrimSpace(raw))
	if len(code) != 2 || !isASCIILetter(code[0]) || !isASCIILetter(code[1]) {
		return UnknownCountry
	}
	if alias, ok := countryAliases[code]; ok {
		return alias
	}
	if _, ok := nonCountryCodes[code]; ok {
		return UnknownCountry
	}

	region, err := language.ParseRegion(code)
	if err != nil || !region.IsCountry() || region.Canonicalize().String() != code {
		return UnknownCountry
	}
	return code
}

func isASCIILetter(b byte) bool {
	return b >= 'A' && b <= 'Z'
}
