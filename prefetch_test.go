package fetchdedupe

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrefetchWarmsCache(t *testing.T) {
	transport := &stubTransport{}
	client := newTestClient(t, transport, WithPrefetchConcurrency(2))

	urls := []string{testURL, testURL + "?page=2", testURL + "?page=3"}
	require.NoError(t, client.Prefetch(context.Background(), urls...))

	for _, u := range urls {
		assert.True(t, client.IsResponseCached(getKey(u)), u)
	}
	assert.Equal(t, 3, transport.Calls())

	resp, err := client.Fetch(context.Background(), urls[1], nil)
	require.NoError(t, err)
	assert.True(t, resp.FromCache)
	assert.Equal(t, 3, transport.Calls())
}

func TestPrefetchCoalescesDuplicates(t *testing.T) {
	transport := &stubTransport{}
	client := newTestClient(t, transport)

	require.NoError(t, client.Prefetch(context.Background(), testURL, testURL, testURL))
	assert.Equal(t, 1, transport.Calls())
}

func TestPrefetchReturnsFirstError(t *testing.T) {
	boom := errors.New("dial tcp: refused")
	var calls int32
	transport := RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
		atomic.AddInt32(&calls, 1)
		return nil, boom
	})
	client := newTestClient(t, transport, WithPrefetchConcurrency(1))

	err := client.Prefetch(context.Background(), testURL, testURL+"?b", testURL+"?c")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, client.Stats().Cached)
}

func TestPrefetchNothing(t *testing.T) {
	client := newTestClient(t, &stubTransport{})
	assert.NoError(t, client.Prefetch(context.Background()))
}
