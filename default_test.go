package fetchdedupe

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultClientFunctions(t *testing.T) {
	saved := Default
	defer func() { Default = saved }()

	transport := &stubTransport{}
	Default = newTestClient(t, transport)
	ctx := context.Background()
	key := getKey(testURL)

	_, err := Fetch(ctx, testURL, nil)
	require.NoError(t, err)
	assert.True(t, IsResponseCached(key))
	assert.False(t, IsRequestInFlight(key))

	resp, err := FetchRequest(ctx, &Request{URL: testURL}, nil)
	require.NoError(t, err)
	assert.True(t, resp.FromCache)
	assert.Equal(t, 1, transport.Calls())

	WriteToCache("manual", &Response{Data: "m"})
	assert.Equal(t, "m", GetCachedResponse("manual").Data)

	InvalidateCache("manual")
	assert.Nil(t, GetCachedResponse("manual"))

	ClearRequestCache()
	ClearResponseCache()
	assert.False(t, IsResponseCached(key))
}
