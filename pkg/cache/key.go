package cache

import (
	"sort"
	"strings"

	"github.com/traslados/commute-ranker/pkg/matrix"
)

// Key identifies a cached Distance Matrix response.
type Key struct {
	// Endpoint is the request endpoint without scheme
	// (e.g., "maps.googleapis.com/maps/api/distancematrix/json")
	Endpoint string

	// Params are the percent-encoded query parameters, credential excluded
	Params map[string]string
}

// KeyFor derives the cache key of req. The "key" parameter is dropped.
func KeyFor(req matrix.Request) Key {
	endpoint := req.Endpoint
	if _, rest, ok := strings.Cut(endpoint, "://"); ok {
		endpoint = rest
	}

	params := make(map[string]string, len(req.Params))
	for _, p := range req.Params {
		if p.Name == "key" {
			continue
		}
		params[p.Name] = p.Value
	}

	return Key{Endpoint: endpoint, Params: params}
}

// String generates a deterministic cache key string.
// Format: matrix:endpoint:param1=val1:param2=val2
//
// Example:
//
//	matrix:maps.googleapis.com/maps/api/distancematrix/json:destinations=X%7CY:language=es:mode=driving:origins=A
//
// Values stay percent-encoded, so they cannot contain the ':' separator.
func (k Key) String() string {
	parts := []string{"matrix"}

	endpoint := strings.Trim(k.Endpoint, "/")
	if endpoint != "" {
		parts = append(parts, endpoint)
	}

	names := make([]string, 0, len(k.Params))
	for name := range k.Params {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		parts = append(parts, name+"="+k.Params[name])
	}

	return strings.Join(parts, ":")
}
