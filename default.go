package fetchdedupe

import "context"

// Default is the process-wide client used by the package-level
// functions.
var Default = New()

// Fetch calls Default.Fetch.
func Fetch(ctx context.Context, rawURL string, init *Init, opts ...Options) (*Response, error) {
	return Default.Fetch(ctx, rawURL, init, opts...)
}

// FetchRequest calls Default.FetchRequest.
func FetchRequest(ctx context.Context, req *Request, init *Init, opts ...Options) (*Response, error) {
	return Default.FetchRequest(ctx, req, init, opts...)
}

// IsRequestInFlight reports whether Default has an outstanding request for key.
func IsRequestInFlight(key string) bool {
	return Default.IsRequestInFlight(key)
}

// IsResponseCached reports whether Default caches a response for key.
func IsResponseCached(key string) bool {
	return Default.IsResponseCached(key)
}

// GetCachedResponse returns Default's cached response for key, or nil.
func GetCachedResponse(key string) *Response {
	return Default.GetCachedResponse(key)
}

// WriteToCache stores resp in Default's cache.
func WriteToCache(key string, resp *Response) {
	Default.WriteToCache(key, resp)
}

// InvalidateCache removes key from Default's cache.
func InvalidateCache(key string) {
	Default.InvalidateCache(key)
}

// ClearRequestCache forgets Default's in-flight requests.
func ClearRequestCache() {
	Default.ClearRequestCache()
}

// ClearResponseCache empties Default's cache.
func ClearResponseCache() {
	Default.ClearResponseCache()
}
