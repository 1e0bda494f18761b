package fetchdedupe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ambiyansyah-risyal/fetchdedupe/internal/inflight"
)

var errTransportPanicked = errors.New("fetchdedupe: transport panicked")

// Client coalesces identical in-flight requests and serves completed
// responses from its cache according to a per-call policy. It is safe
// for concurrent use.
type Client struct {
	transport    RoundTripper
	middleware   []Middleware
	cache        *ResponseCache
	inflight     *inflight.Group[*Response]
	readPolicy   CachePolicy
	writePolicy  CachePolicy
	responseType ResponseType
	prefetchMax  int
	logger       logrus.FieldLogger
	metrics      *MetricsCollector

	// decideMu makes the in-flight lookup, the cache decision and the
	// registration of a new call one atomic step.
	decideMu sync.Mutex

	validationError error
}

// Stats is a point-in-time snapshot of client state.
type Stats struct {
	InFlight int
	Cached   int
}

// New constructs a Client using the provided functional options. A best
// effort validation is performed; see IsValid and ValidationError.
func New(options ...Option) *Client {
	client := &Client{
		transport:    RoundTripperFunc(http.DefaultClient.Do),
		middleware:   []Middleware{},
		cache:        NewResponseCache(),
		inflight:     inflight.New[*Response](),
		readPolicy:   CacheFirst,
		writePolicy:  NetworkOnly,
		responseType: BodyJSON,
		prefetchMax:  8,
		logger:       logrus.StandardLogger(),
		metrics:      nil,
	}

	for _, option := range options {
		option(client)
	}

	if err := client.ValidateConfiguration(); err != nil {
		client.validationError = err
	}

	return client
}

// Fetch requests rawURL. Fields in init override the defaults (GET, no
// headers, no body). Dedupe options come from opts when given, and from
// init's embedded Options otherwise.
func (c *Client) Fetch(ctx context.Context, rawURL string, init *Init, opts ...Options) (*Response, error) {
	return c.FetchRequest(ctx, &Request{URL: rawURL}, init, opts...)
}

// FetchRequest is Fetch for a prebuilt Request whose fields act as
// defaults for init.
func (c *Client) FetchRequest(ctx context.Context, req *Request, init *Init, opts ...Options) (*Response, error) {
	if c.validationError != nil {
		return nil, c.validationError
	}

	start := time.Now()
	desc := mergeRequest(req, init)
	o := resolveOptions(init, opts)
	if o.CachePolicy != "" && !o.CachePolicy.Valid() {
		return nil, fmt.Errorf("fetchdedupe: unknown cache policy %q", o.CachePolicy)
	}

	rt := o.ResponseType
	if rt == nil && desc.ResponseType != "" {
		rt = desc.ResponseType
	}
	if rt == nil {
		rt = c.responseType
	}
	desc.ResponseType = ""
	if kind, ok := rt.(BodyKind); ok {
		desc.ResponseType = kind
	}

	key := o.RequestKey
	if key == "" {
		key = DeriveKey(desc)
	}
	policy := c.resolvePolicy(desc.Method, o.CachePolicy)
	dedupe := o.dedupe()

	log := c.logger.WithFields(logrus.Fields{
		"key":    key,
		"method": desc.Method,
		"url":    desc.URL,
		"policy": string(policy),
	})

	c.decideMu.Lock()

	if dedupe {
		if call, ok := c.inflight.Join(key); ok {
			c.decideMu.Unlock()
			return c.wait(ctx, call, desc.Method, start, log)
		}
	}

	if policy.readsCache() {
		if cached, ok := c.cache.Get(key); ok {
			c.decideMu.Unlock()
			if cached == nil {
				cached = &Response{}
			}
			cached.FromCache = true
			c.metrics.RecordCacheHit(desc.Method)
			c.metrics.RecordRequest(desc.Method, OutcomeCacheHit, cached.Status, time.Since(start))
			log.WithField("outcome", OutcomeCacheHit).Debug("served from cache")
			return cached, nil
		}
		c.metrics.RecordCacheMiss(desc.Method)

		if !policy.usesNetwork() {
			c.decideMu.Unlock()
			c.metrics.RecordRequest(desc.Method, OutcomeCacheMiss, 0, time.Since(start))
			log.WithField("outcome", OutcomeCacheMiss).Debug("cache-only request missed")
			return nil, &CacheMissError{Key: key}
		}
	}

	var call *inflight.Call[*Response]
	if dedupe {
		var owner bool
		call, owner = c.inflight.Acquire(key)
		if !owner {
			c.decideMu.Unlock()
			return c.wait(ctx, call, desc.Method, start, log)
		}
	}
	c.decideMu.Unlock()

	resp, err := c.dispatch(ctx, key, desc, rt, policy, call)

	c.metrics.RecordRequest(desc.Method, OutcomeNetwork, statusOf(resp), time.Since(start))
	if err != nil {
		log.WithError(err).WithField("outcome", OutcomeNetwork).Warn("request failed")
	} else {
		fields := logrus.Fields{
			"outcome": OutcomeNetwork,
			"status":  resp.Status,
		}
		if call != nil {
			fields["waiters"] = call.Waiters()
		}
		log.WithFields(fields).Debug("dispatched request")
	}

	return resp, err
}

// wait attaches the caller to an outstanding call.
func (c *Client) wait(ctx context.Context, call *inflight.Call[*Response], method string, start time.Time, log logrus.FieldLogger) (*Response, error) {
	c.metrics.RecordDeduplicationHit(method)
	log.WithField("outcome", OutcomeJoined).Debug("joined in-flight request")

	resp, err := call.Wait(ctx)
	c.metrics.RecordRequest(method, OutcomeJoined, statusOf(resp), time.Since(start))
	return resp, err
}

// dispatch performs the transport call, writes through to the cache and
// settles call. call is nil when dedupe is disabled.
func (c *Client) dispatch(ctx context.Context, key string, desc *Request, rt ResponseType, policy CachePolicy, call *inflight.Call[*Response]) (resp *Response, err error) {
	c.metrics.RecordDispatch(desc.Method)

	settled := false
	defer func() {
		if !settled {
			if call != nil {
				c.inflight.Settle(key, call, nil, errTransportPanicked)
			}
			c.metrics.RecordSettle(desc.Method, errTransportPanicked)
		}
	}()

	resp, err = c.roundTrip(ctx, desc, rt)

	if err == nil && policy.persists() && resp.OK {
		c.cache.Set(key, resp)
		c.metrics.RecordCacheWrite(desc.Method, c.cache.Len())
	}

	if call != nil {
		c.inflight.Settle(key, call, resp, err)
	}
	settled = true
	c.metrics.RecordSettle(desc.Method, err)

	return resp, err
}

func (c *Client) roundTrip(ctx context.Context, desc *Request, rt ResponseType) (*Response, error) {
	body, err := encodeBody(desc.Body)
	if err != nil {
		return nil, fmt.Errorf("fetchdedupe: encode request body: %w", err)
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, desc.Method, desc.URL, reader)
	if err != nil {
		return nil, err
	}
	for name, values := range desc.Header {
		req.Header[http.CanonicalHeaderKey(name)] = append([]string(nil), values...)
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", UserAgent())
	}

	raw, err := c.executeMiddleware(req)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, errors.New("fetchdedupe: transport returned no response")
	}
	if raw.Request == nil {
		raw.Request = req
	}

	return Normalize(raw, rt)
}

func (c *Client) executeMiddleware(req *http.Request) (*http.Response, error) {
	if len(c.middleware) == 0 {
		return c.transport.RoundTrip(req)
	}

	current := RoundTripperFunc(c.transport.RoundTrip)

	for i := len(c.middleware) - 1; i >= 0; i-- {
		middleware := c.middleware[i]
		next := current
		current = RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			return middleware(r, next)
		})
	}

	return current.RoundTrip(req)
}

// IsRequestInFlight reports whether a request for key is outstanding.
func (c *Client) IsRequestInFlight(key string) bool {
	return c.inflight.InFlight(key)
}

// IsResponseCached reports whether a response is cached under key.
func (c *Client) IsResponseCached(key string) bool {
	return c.cache.Has(key)
}

// GetCachedResponse returns a copy of the cached response for key, or
// nil when there is none.
func (c *Client) GetCachedResponse(key string) *Response {
	resp, ok := c.cache.Get(key)
	if !ok {
		return nil
	}
	return resp
}

// WriteToCache stores resp under key, replacing any existing entry.
func (c *Client) WriteToCache(key string, resp *Response) {
	c.cache.Set(key, resp)
	c.metrics.RecordCacheSize(c.cache.Len())
}

// InvalidateCache removes the cached response for key.
func (c *Client) InvalidateCache(key string) {
	c.cache.Delete(key)
	c.metrics.RecordCacheSize(c.cache.Len())
}

// ClearRequestCache forgets every in-flight request. Callers already
// waiting still receive their result.
func (c *Client) ClearRequestCache() {
	c.inflight.Clear()
}

// ClearResponseCache removes every cached response.
func (c *Client) ClearResponseCache() {
	c.cache.Clear()
	c.metrics.RecordCacheSize(0)
}

// Stats returns the number of in-flight requests and cached responses.
func (c *Client) Stats() Stats {
	return Stats{
		InFlight: c.inflight.Len(),
		Cached:   c.cache.Len(),
	}
}

// IsValid reports whether configuration validation passed at construction.
func (c *Client) IsValid() bool {
	return c.validationError == nil
}

// ValidationError returns the configuration validation error, if any.
func (c *Client) ValidationError() error {
	return c.validationError
}

// mergeRequest builds the effective request. init wins for Method and
// Body, replaces the header set when it carries one, and overrides Extra
// per key. An empty method becomes GET.
func mergeRequest(req *Request, init *Init) *Request {
	out := &Request{}
	if req != nil {
		out.URL = req.URL
		out.Method = req.Method
		out.Header = req.Header.Clone()
		out.Body = req.Body
		out.Extra = copyExtra(req.Extra, nil)
		out.ResponseType = req.ResponseType
	}

	if init != nil {
		if init.Method != "" {
			out.Method = init.Method
		}
		if init.Header != nil {
			out.Header = init.Header.Clone()
		}
		if init.Body != nil {
			out.Body = init.Body
		}
		if len(init.Extra) > 0 {
			out.Extra = copyExtra(out.Extra, init.Extra)
		}
	}

	if out.Method == "" {
		out.Method = http.MethodGet
	}
	out.Method = strings.ToUpper(out.Method)

	return out
}

func copyExtra(base, override map[string]any) map[string]any {
	if len(base) == 0 && len(override) == 0 {
		return nil
	}
	out := make(map[string]any, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		out[k] = v
	}
	return out
}

// resolveOptions folds opts in order, later non-zero fields winning.
// Without opts, the options embedded in init apply.
func resolveOptions(init *Init, opts []Options) Options {
	if len(opts) == 0 {
		if init != nil {
			return init.Options
		}
		return Options{}
	}

	var out Options
	for _, o := range opts {
		if o.RequestKey != "" {
			out.RequestKey = o.RequestKey
		}
		if o.Dedupe != nil {
			out.Dedupe = o.Dedupe
		}
		if o.ResponseType != nil {
			out.ResponseType = o.ResponseType
		}
		if o.CachePolicy != "" {
			out.CachePolicy = o.CachePolicy
		}
	}
	return out
}

func statusOf(resp *Response) int {
	if resp == nil {
		return 0
	}
	return resp.Status
}
