package thought

import (
	"regexp"
	"strings"
)

var tagRe = regexp.MustCompile(`#?([a-zA-Z0-9_]{1,32})`)

// NormalizeTag reduces raw input to its first hashtag-like token,
// lower-cased and without the leading '#'. It returns "" when nothing
// usable remains.
func NormalizeTag(raw string) string {
	m := tagRe.FindStringSubmatch(strings.TrimSpace(raw))
	if len(m) < 2 {
		return ""
	}
	return strings.ToLower(m[1])
}

func optional(s *string, normalize func(string) string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if normalize != nil {
		v = normalize(v)
	}
	if v == "" {
		return nil
	}
	return &v
}
