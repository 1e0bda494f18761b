package fetchdedupe

import (
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	client := New()

	require.True(t, client.IsValid())
	assert.NotNil(t, client.transport)
	assert.NotNil(t, client.cache)
	assert.Equal(t, CacheFirst, client.readPolicy)
	assert.Equal(t, NetworkOnly, client.writePolicy)
	assert.Equal(t, BodyJSON, client.responseType)
	assert.Equal(t, 8, client.prefetchMax)
	assert.Nil(t, client.metrics)
}

func TestOptions(t *testing.T) {
	cache := NewResponseCache()
	logger := quietLogger()
	registry := prometheus.NewRegistry()

	client := New(
		WithHTTPClient(&http.Client{}),
		WithCache(cache),
		WithDefaultPolicies(CacheOnly, CacheFirst),
		WithDefaultResponseType(BodyText),
		WithPrefetchConcurrency(3),
		WithLogger(logger),
		WithMetricsRegistry(registry),
	)

	require.True(t, client.IsValid())
	assert.Same(t, cache, client.cache)
	assert.Equal(t, CacheOnly, client.readPolicy)
	assert.Equal(t, CacheFirst, client.writePolicy)
	assert.Equal(t, BodyText, client.responseType)
	assert.Equal(t, 3, client.prefetchMax)
	assert.Equal(t, logger, client.logger)
	require.NotNil(t, client.metrics)
	assert.Equal(t, registry, client.metrics.Registerer())
}

func TestWithSharedCache(t *testing.T) {
	cache := NewResponseCache()
	a := New(WithCache(cache), WithLogger(quietLogger()))
	b := New(WithCache(cache), WithLogger(quietLogger()))

	a.WriteToCache("shared", &Response{Data: "x"})
	assert.True(t, b.IsResponseCached("shared"))
}

func TestWithShards(t *testing.T) {
	client := New(WithShards(2), WithLogger(quietLogger()))
	assert.Equal(t, 2, client.cache.numShards)
}

func TestValidateConfiguration(t *testing.T) {
	tests := []struct {
		name    string
		options []Option
		problem string
	}{
		{"nil transport", []Option{WithTransport(nil)}, "transport cannot be nil"},
		{"nil http client", []Option{WithHTTPClient(nil)}, "transport cannot be nil"},
		{"prefetch concurrency", []Option{WithPrefetchConcurrency(0)}, "prefetch concurrency must be positive"},
		{"read policy", []Option{WithDefaultPolicies("sometimes", NetworkOnly)}, `unknown read cache policy "sometimes"`},
		{"write policy", []Option{WithDefaultPolicies(CacheFirst, "")}, `unknown write cache policy ""`},
		{"nil response type", []Option{WithDefaultResponseType(nil)}, "default response type cannot be nil"},
		{"unknown response type", []Option{WithDefaultResponseType(BodyKind("JSON"))}, `unknown response type "JSON"`},
		{"nil middleware", []Option{WithMiddleware(nil)}, "middleware[0] cannot be nil"},
		{"nil cache", []Option{WithCache(nil)}, "response cache cannot be nil"},
		{"nil logger", []Option{WithLogger(nil)}, "logger cannot be nil"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := New(tt.options...)
			assert.False(t, client.IsValid())

			var configErr *ConfigError
			require.ErrorAs(t, client.ValidationError(), &configErr)
			assert.Contains(t, configErr.Problems, tt.problem)
		})
	}
}

func TestValidateConfigurationCollectsAllProblems(t *testing.T) {
	client := New(WithTransport(nil), WithPrefetchConcurrency(-1), WithCache(nil))

	var configErr *ConfigError
	require.ErrorAs(t, client.ValidationError(), &configErr)
	assert.Len(t, configErr.Problems, 3)
}

func TestResponseTypeFuncAccepted(t *testing.T) {
	client := New(WithDefaultResponseType(ResponseTypeFunc(func(*http.Response) BodyKind { return BodyText })))
	assert.True(t, client.IsValid())
}
