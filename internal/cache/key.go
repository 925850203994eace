package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"
	"strings"

	"github.com/rshade/datatable/internal/query"
)

// KeyFor returns the cache key for a request, scoped by namespace
// (typically the list endpoint). Extra parameters are sorted so map
// iteration order never changes the key.
func KeyFor(namespace string, params query.Parameters) string {
	var b strings.Builder
	fmt.Fprintf(&b, "ns=%s\nlimit=%d\noffset=%d\nsort=%s\norder=%s\nkeyword=%s\n",
		namespace, params.Limit, params.Offset, params.SortField, params.SortOrder, params.Keyword)

	extra := params.Extra()
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "x.%s=%s\n", k, extra[k])
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
