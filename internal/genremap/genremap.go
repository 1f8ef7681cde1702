// Package genremap canonicalizes genre names coming out of the playback
// exports. Collectors disagree on spelling ("Hip-Hop/Rap", "rnb", "EDM"),
// and letting each variant become its own dimension row would fragment the
// genre dimension. Aliases collapse to a fixed canonical set; unknown names
// pass through so new genres still get a row.
package genremap

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.Und)

// aliases maps collapsed lowercase variants to their canonical genre.
var aliases = map[string]string{
	"hip-hop/rap": "hip hop",
	"hip hop/rap": "hip hop",
	"hip-hop":     "hip hop",

	"rnb":              "r&b",
	"r and b":          "r&b",
	"rhythm and blues": "r&b",

	"alt":              "alternative",
	"alt rock":         "alternative",
	"alternative rock": "alternative",

	"edm":           "electronic",
	"electronica":   "electronic",
	"electro":       "electronic",
	"ambient":       "electronic",
	"downtempo":     "electronic",
	"drum and bass": "electronic",
	"dnb":           "electronic",
	"dubstep":       "electronic",

	"dance pop": "dance",
	"dance-pop": "dance",

	"indie rock": "indie",
	"indie pop":  "indie",

	"hard rock":    "rock",
	"soft rock":    "rock",
	"classic rock": "rock",

	"heavy metal":  "metal",
	"black metal":  "metal",
	"death metal":  "metal",
	"thrash metal": "metal",
	"metalcore":    "metal",

	"punk rock": "punk",
	"pop punk":  "punk",

	"reggaeton":  "latin",
	"latin pop":  "latin",
	"latin rock": "latin",

	"afrobeat":    "world",
	"afrobeats":   "world",
	"world music": "world",

	"trap": "rap",

	"deep house": "house",
}

// norm collapses whitespace and lowercases.
func norm(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// Canonical resolves a raw genre name to its canonical, display-cased form
// ("Hip-Hop/Rap" -> "Hip Hop"). Empty input stays empty.
func Canonical(raw string) string {
	n := norm(raw)
	if n == "" {
		return ""
	}
	if c, ok := aliases[n]; ok {
		n = c
	}
	return titleCaser.String(n)
}
