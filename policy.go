package fetchdedupe

import (
	"fmt"
	"net/http"
	"strings"
)

// CachePolicy governs whether the cache may answer a request.
type CachePolicy string

const (
	// CacheFirst answers from the cache when possible and otherwise goes
	// to the network, caching the result.
	CacheFirst CachePolicy = "cache-first"
	// CacheOnly answers from the cache or fails with a CacheMissError.
	CacheOnly CachePolicy = "cache-only"
	// NetworkOnly always goes to the network. Successful results are
	// still written to the cache.
	NetworkOnly CachePolicy = "network-only"
)

// Valid reports whether p is a known policy.
func (p CachePolicy) Valid() bool {
	switch p {
	case CacheFirst, CacheOnly, NetworkOnly:
		return true
	}
	return false
}

// readsCache reports whether a cached entry may satisfy the request.
func (p CachePolicy) readsCache() bool {
	return p == CacheFirst || p == CacheOnly
}

// usesNetwork reports whether a miss may fall through to the transport.
func (p CachePolicy) usesNetwork() bool {
	return p != CacheOnly
}

// persists reports whether a successful network result is cached.
func (p CachePolicy) persists() bool {
	return p == CacheFirst || p == NetworkOnly
}

// ParseCachePolicy maps a configuration string onto a CachePolicy.
func ParseCachePolicy(s string) (CachePolicy, error) {
	p := CachePolicy(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("unknown cache policy %q", s)
	}
	return p, nil
}

// IsReadMethod reports whether method is a read-style method whose
// responses are cached by default.
func IsReadMethod(method string) bool {
	switch strings.ToUpper(method) {
	case "", http.MethodGet, http.MethodHead:
		return true
	}
	return false
}

// resolvePolicy returns the explicit policy when set, otherwise the
// client default for the method class.
func (c *Client) resolvePolicy(method string, explicit CachePolicy) CachePolicy {
	if explicit != "" {
		return explicit
	}
	if IsReadMethod(method) {
		return c.readPolicy
	}
	return c.writePolicy
}
