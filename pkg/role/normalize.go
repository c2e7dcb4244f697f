package role

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize maps a raw role string from any identity source onto a canonical Role.
// Matching ignores case, accents, surrounding whitespace and the choice of
// separator (space, dash or underscore). Unknown or empty input yields Default.
func Normalize(raw string) Role {
	key := fold(raw)
	if key == "" {
		return Default
	}
	if r, ok := aliasIndex[key]; ok {
		return r
	}
	return Default
}

// Resolve picks the role of a principal from several optional sources given in
// precedence order. The first non-blank source decides and is normalized; later
// sources are never consulted once an earlier one carries a value, so a bogus
// high-precedence value cannot be upgraded by a lower one.
func Resolve(sources ...string) Role {
	for _, src := range sources {
		if strings.TrimSpace(src) == "" {
			continue
		}
		return Normalize(src)
	}
	return Default
}

// fold produces the lookup key for a raw alias.
// Transformers are stateful, so a fresh chain is built per call.
func fold(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, raw)
	if err != nil {
		stripped = raw
	}

	folded := cases.Fold().String(stripped)
	parts := strings.FieldsFunc(folded, func(r rune) bool {
		return unicode.IsSpace(r) || r == '-' || r == '_' || r == '.'
	})
	return strings.Join(parts, "_")
}
