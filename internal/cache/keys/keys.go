// Package keys builds the cache key namespace shared by the feature store
// and the parse cache.
package keys

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"
)

// FeatureKey identifies one stored feature: feat:<table>:<id>. Table and id
// are sanitized to a safe ASCII subset so user-provided names cannot break
// the key syntax.
func FeatureKey(table, id string) string {
	return "feat:" + sanitize(strings.TrimSpace(table)) + ":" + sanitize(strings.TrimSpace(id))
}

// ParseKey identifies one parse-cache entry. The raw WKT is folded in as an
// xxhash suffix, so a changed raw string can never resolve to a stale
// geometry: the old entry simply stops being addressable.
func ParseKey(table, id, rawWKT string) string {
	sum := xxhash.Sum64String(rawWKT)
	return fmt.Sprintf("%s:w=%016x", FeatureKey(table, id), sum)
}

// HotKey identifies a feature in the hotness tracker. Same namespace as
// FeatureKey without the prefix, so invalidation can reset both from one
// table/id pair.
func HotKey(table, id string) string {
	return sanitize(strings.TrimSpace(table)) + ":" + sanitize(strings.TrimSpace(id))
}

// sanitize maps whitespace to '_', keeps alphanumerics and ':', '_', '-',
// turns anything else (including non-ASCII) into '-', and collapses runs of
// replacement characters.
func sanitize(s string) string {
	if s == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s))
	var prev rune
	for _, r := range s {
		var out rune
		switch {
		case isASCIIWhitespace(r):
			out = '_'
		case isAlphaNum(r) || r == ':' || r == '_' || r == '-':
			out = r
		default:
			out = '-'
		}
		if (out == '_' || out == '-') && out == prev {
			continue
		}
		b.WriteRune(out)
		prev = out
	}
	return b.String()
}

func isASCIIWhitespace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\v' || r == '\f'
}

func isAlphaNum(r rune) bool {
	return (r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		unicode.IsDigit(r)
}
