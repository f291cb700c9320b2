package retrieval

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/papercomputeco/mnemo/pkg/memory"
)

// NormalizeQuery canonicalizes query text for cache key derivation.
func NormalizeQuery(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// CacheKey derives the deterministic cache key for a search. Filter entries
// are serialized sorted by key so insertion order never changes the key.
//
// Format: "search:" + normalizedQuery + ":" + topK, with ":" + canonical
// filter appended when a filter is present.
func CacheKey(text string, topK int, filter memory.Metadata) string {
	var b strings.Builder
	b.WriteString("search:")
	b.WriteString(NormalizeQuery(text))
	b.WriteString(":")
	b.WriteString(strconv.Itoa(topK))

	if len(filter) > 0 {
		b.WriteString(":")
		b.WriteString(canonicalFilter(filter))
	}

	return b.String()
}

func canonicalFilter(filter memory.Metadata) string {
	keys := make([]string, 0, len(filter))
	for key := range filter {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", key, filter[key]))
	}
	return strings.Join(parts, ",")
}
