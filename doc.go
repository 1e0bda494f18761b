// Package fetchdedupe sits in front of an HTTP transport and adds two
// independent guarantees:
//
//   - Identical in-flight requests are coalesced into one transport call;
//     every caller receives the same *Response or the same error.
//   - Completed responses are kept in an in-memory cache and served
//     according to a per-call CachePolicy.
//
// Requests are identified by a key derived from the uppercased method and
// a canonical serialization of the URL, headers, body and extra options
// (see DeriveKey). A caller may supply its own key instead.
//
// Default policies: GET and HEAD are CacheFirst, every other method is
// NetworkOnly. CacheOnly never touches the network and fails with a
// *CacheMissError when nothing is cached. NetworkOnly still writes
// successful responses through to the cache.
//
// Typical usage:
//
//	client := fetchdedupe.New(
//	    fetchdedupe.WithHTTPClient(&http.Client{Timeout: 10 * time.Second}),
//	    fetchdedupe.WithMetrics(),
//	)
//	resp, err := client.Fetch(ctx, "https://api.example.com/books", nil)
//	// resp.Data holds the decoded JSON body, resp.FromCache reports a hit.
//
// The cache never expires entries. Use InvalidateCache, ClearResponseCache
// or WriteToCache to manage it explicitly. The package-level functions
// operate on Default.
package fetchdedupe
