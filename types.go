package fetchdedupe

import (
	"net/http"
	"strings"
)

// Request describes a logical HTTP request. It is the input to key
// derivation and to the transport.
type Request struct {
	URL    string
	Method string
	Header http.Header
	// Body is sent as-is when it is a []byte or string; any other value
	// is encoded as canonical JSON. Values encoding/json cannot encode,
	// such as channels and funcs, are keyed by their %#v text; give such
	// requests an explicit Options.RequestKey.
	Body any
	// Extra holds caller-supplied request options that take part in the
	// request key but are not sent on the wire.
	Extra map[string]any
	// ResponseType is the body kind the caller expects. It takes part in
	// the request key unless it is empty or BodyJSON, so callers asking
	// for different shapes never share an entry.
	ResponseType BodyKind
}

// Init carries per-call transport fields and, optionally, the dedupe
// options. Fields set here override the matching fields of a Request.
type Init struct {
	Method string
	Header http.Header
	Body   any
	Extra  map[string]any

	Options
}

// Options controls deduplication and caching for a single call.
type Options struct {
	// RequestKey, when set, is used verbatim instead of a derived key.
	RequestKey string
	// Dedupe defaults to true. Use Bool(false) to opt out.
	Dedupe *bool
	// ResponseType selects how the body is parsed. Defaults to the
	// client default. A ResponseTypeFunc cannot be serialized and is left
	// out of the derived key; pair it with RequestKey when the same
	// request is also fetched with another response type.
	ResponseType ResponseType
	// CachePolicy overrides the method-derived default.
	CachePolicy CachePolicy
}

func (o Options) dedupe() bool {
	return o.Dedupe == nil || *o.Dedupe
}

// Bool returns a pointer to b, for use with Options.Dedupe.
func Bool(b bool) *bool {
	return &b
}

// Response is the normalized envelope returned to callers and stored
// in the cache.
type Response struct {
	Data       any         `json:"data" yaml:"data"`
	Status     int         `json:"status" yaml:"status"`
	StatusText string      `json:"statusText" yaml:"statusText"`
	OK         bool        `json:"ok" yaml:"ok"`
	BodyUsed   bool        `json:"bodyUsed" yaml:"bodyUsed"`
	Header     http.Header `json:"headers,omitempty" yaml:"headers,omitempty"`
	FromCache  bool        `json:"fromCache,omitempty" yaml:"fromCache,omitempty"`
}

// BodyKind is a fixed body parsing discriminator.
type BodyKind string

const (
	BodyJSON  BodyKind = "json"
	BodyText  BodyKind = "text"
	BodyEmpty BodyKind = "empty"
)

// ResponseType decides how a raw response body is parsed. A BodyKind is
// a fixed choice; a ResponseTypeFunc picks per response.
type ResponseType interface {
	BodyKind(resp *http.Response) BodyKind
}

// BodyKind implements ResponseType.
func (k BodyKind) BodyKind(*http.Response) BodyKind {
	return k
}

// ResponseTypeFunc picks a BodyKind from the raw response, for example
// JSON on success and text on failure.
type ResponseTypeFunc func(resp *http.Response) BodyKind

// BodyKind implements ResponseType.
func (f ResponseTypeFunc) BodyKind(resp *http.Response) BodyKind {
	return f(resp)
}

// ParseBodyKind maps a configuration string onto a BodyKind.
func ParseBodyKind(s string) (BodyKind, bool) {
	switch BodyKind(strings.ToLower(strings.TrimSpace(s))) {
	case BodyJSON:
		return BodyJSON, true
	case BodyText:
		return BodyText, true
	case BodyEmpty:
		return BodyEmpty, true
	}
	return "", false
}

// Middleware wraps the transport call.
type Middleware func(req *http.Request, next RoundTripper) (*http.Response, error)

// RoundTripper performs the network round trip. *http.Client does not
// satisfy it directly; wrap its Do method with RoundTripperFunc.
type RoundTripper interface {
	RoundTrip(*http.Request) (*http.Response, error)
}

// RoundTripperFunc is a helper type for transports and middleware
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// Option represents a configuration option
type Option func(*Client)
