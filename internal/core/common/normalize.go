package common

import (
	"strconv"
	"strings"
	"unicode"
)

// Normalize trims surrounding whitespace and lowercases a name. It is the
// comparison key used everywhere two entity names are matched against each
// other, and is idempotent: Normalize(Normalize(s)) == Normalize(s).
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Slugify lowercases the input, collapses every run of non-alphanumeric
// characters into a single hyphen, and trims leading/trailing hyphens.
func Slugify(name string) string {
	var b strings.Builder
	lastHyphen := true // suppress a leading hyphen
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastHyphen = false
			continue
		}
		if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// RefID extracts a record id from a polymorphic reference value as it appears
// in itinerary documents: a bare numeric id, a bare string id, or an object
// carrying an "id" field. Returns "" when no id can be extracted.
func RefID(ref interface{}) string {
	switch v := ref.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatInt(int64(v), 10)
	case int:
		return strconv.Itoa(v)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case map[string]interface{}:
		if inner, ok := v["id"]; ok {
			return RefID(inner)
		}
		return ""
	default:
		return ""
	}
}
