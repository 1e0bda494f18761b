package fetchdedupe

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// WithTransport sets the function that performs the network round trip.
func WithTransport(rt RoundTripper) Option {
	return func(c *Client) {
		c.transport = rt
	}
}

// WithHTTPClient routes requests through client.Do.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client == nil {
			c.transport = nil
			return
		}
		c.transport = RoundTripperFunc(client.Do)
	}
}

// WithMiddleware adds middleware around the transport
func WithMiddleware(middleware ...Middleware) Option {
	return func(c *Client) {
		c.middleware = append(c.middleware, middleware...)
	}
}

// WithCache shares cache between clients instead of creating a new one.
func WithCache(cache *ResponseCache) Option {
	return func(c *Client) {
		c.cache = cache
	}
}

// WithShards sets the number of shards of a fresh response cache.
func WithShards(n int) Option {
	return func(c *Client) {
		c.cache = NewResponseCacheWithShards(n)
	}
}

// WithDefaultPolicies sets the policies used when a call does not name
// one: read applies to GET and HEAD, write to every other method.
func WithDefaultPolicies(read, write CachePolicy) Option {
	return func(c *Client) {
		c.readPolicy = read
		c.writePolicy = write
	}
}

// WithDefaultResponseType sets the response type used when a call does
// not name one.
func WithDefaultResponseType(rt ResponseType) Option {
	return func(c *Client) {
		c.responseType = rt
	}
}

// WithPrefetchConcurrency bounds the number of concurrent Prefetch calls.
func WithPrefetchConcurrency(n int) Option {
	return func(c *Client) {
		c.prefetchMax = n
	}
}

// WithLogger sets the logger. Decisions are logged at debug level and
// failed requests at warn level.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithMetrics enables Prometheus metrics collection on the default registerer
func WithMetrics() Option {
	return func(c *Client) {
		c.metrics = NewMetricsCollector()
	}
}

// WithMetricsRegistry enables metrics on the given registerer.
func WithMetricsRegistry(registry prometheus.Registerer) Option {
	return func(c *Client) {
		c.metrics = NewMetricsCollectorWithRegistry(registry)
	}
}

// WithMetricsCollector sets a custom metrics collector
func WithMetricsCollector(collector *MetricsCollector) Option {
	return func(c *Client) {
		c.metrics = collector
	}
}

// ValidateConfiguration validates the client configuration and returns an error if invalid
func (c *Client) ValidateConfiguration() error {
	var problems []string

	problems = append(problems, c.validateTransportConfig()...)
	problems = append(problems, c.validatePolicyConfig()...)
	problems = append(problems, c.validateMiddlewareConfig()...)

	if c.cache == nil {
		problems = append(problems, "response cache cannot be nil")
	}
	if c.logger == nil {
		problems = append(problems, "logger cannot be nil")
	}

	if len(problems) > 0 {
		return &ConfigError{Problems: problems}
	}
	return nil
}

func (c *Client) validateTransportConfig() []string {
	var problems []string

	if c.transport == nil {
		problems = append(problems, "transport cannot be nil")
	}
	if c.prefetchMax <= 0 {
		problems = append(problems, "prefetch concurrency must be positive")
	}

	return problems
}

func (c *Client) validatePolicyConfig() []string {
	var problems []string

	if !c.readPolicy.Valid() {
		problems = append(problems, fmt.Sprintf("unknown read cache policy %q", c.readPolicy))
	}
	if !c.writePolicy.Valid() {
		problems = append(problems, fmt.Sprintf("unknown write cache policy %q", c.writePolicy))
	}
	if c.responseType == nil {
		problems = append(problems, "default response type cannot be nil")
	} else if kind, ok := c.responseType.(BodyKind); ok {
		switch kind {
		case BodyJSON, BodyText, BodyEmpty:
		default:
			problems = append(problems, fmt.Sprintf("unknown response type %q", kind))
		}
	}

	return problems
}

func (c *Client) validateMiddlewareConfig() []string {
	var problems []string

	for i, middleware := range c.middleware {
		if middleware == nil {
			problems = append(problems, fmt.Sprintf("middleware[%d] cannot be nil", i))
		}
	}

	return problems
}
