package geocode

import (
	"sort"
	"strings"

	"github.com/antzucaro/matchr"
)

// FallbackThreshold is the Jaro-Winkler similarity a misspelt place name needs
// to match a fallback entry of the same length and initial.
const FallbackThreshold = 0.95

// DefaultFallback holds postcodes for places the geocoder is known to miss
var DefaultFallback = map[string]string{
	"Amberg":   "92224",
	"Hannover": "30159",
	"München":  "80331",
	"Leipzig":  "04109",
	"Berlin":   "10115",
}

// Fallback is a static place → postcode table
type Fallback struct {
	table map[string]string
	byKey map[string]string // normalized name → table name
	names []string
}

// NewFallback creates a Fallback from table; nil uses DefaultFallback
func NewFallback(table map[string]string) *Fallback {
	if table == nil {
		table = DefaultFallback
	}

	f := &Fallback{
		table: make(map[string]string, len(table)),
		byKey: make(map[string]string, len(table)),
	}
	for name, plz := range table {
		name = strings.TrimSpace(name)
		f.table[name] = strings.TrimSpace(plz)
		f.byKey[normalizeName(name)] = name
		f.names = append(f.names, name)
	}
	sort.Strings(f.names)

	return f
}

func normalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// Lookup returns the postcode for city. Names match exactly, then ignoring
// case and spacing. A misspelling only matches an entry with the same initial
// and length scoring at least FallbackThreshold.
func (f *Fallback) Lookup(city string) (string, bool) {
	city = strings.TrimSpace(city)
	if city == "" {
		return "", false
	}
	if plz, ok := f.table[city]; ok {
		return plz, true
	}

	key := normalizeName(city)
	if name, ok := f.byKey[key]; ok {
		return f.table[name], true
	}

	runes := []rune(key)
	best, bestScore := "", 0.0
	for _, name := range f.names {
		candidate := []rune(normalizeName(name))
		if len(candidate) != len(runes) || candidate[0] != runes[0] {
			continue
		}
		score := matchr.JaroWinkler(key, string(candidate), false)
		if score > bestScore {
			best, bestScore = name, score
		}
	}

	if bestScore >= FallbackThreshold {
		return f.table[best], true
	}
	return "", false
}
