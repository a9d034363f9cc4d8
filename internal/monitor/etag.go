package monitor

import "strings"

const (
	etagHeader = "ETag"
	weakPrefix = "W/"
)

// NormalizeETag strips one pair of surrounding double quotes from an entity tag.
// A weak validator keeps its W/ marker: `W/"xyz"` becomes `W/xyz`. Quotes inside
// the tag are left alone.
func NormalizeETag(raw string) string {
	tag := strings.TrimSpace(raw)

	prefix := ""
	if strings.HasPrefix(tag, weakPrefix) {
		prefix = weakPrefix
		tag = tag[len(weakPrefix):]
	}

	if len(tag) >= 2 && tag[0] == '"' && tag[len(tag)-1] == '"' {
		tag = tag[1 : len(tag)-1]
	}
	return prefix + tag
}
