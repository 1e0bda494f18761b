package fetchdedupe

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
)

// Normalize reads and closes resp.Body and converts resp into the
// envelope shape. Bodiless responses yield Data "" whatever rt asks for.
// A nil rt parses JSON. FromCache is never set here.
func Normalize(resp *http.Response, rt ResponseType) (*Response, error) {
	out := &Response{
		Status:     resp.StatusCode,
		StatusText: statusText(resp),
		OK:         resp.StatusCode >= 200 && resp.StatusCode < 300,
		Header:     resp.Header.Clone(),
		Data:       "",
	}

	var body []byte
	if resp.Body != nil {
		defer resp.Body.Close()
		if !bodiless(resp) {
			b, err := io.ReadAll(resp.Body)
			if err != nil {
				return nil, fmt.Errorf("fetchdedupe: read response body: %w", err)
			}
			body = b
		}
	}
	if len(body) == 0 {
		return out, nil
	}

	if rt == nil {
		rt = BodyJSON
	}

	switch kind := rt.BodyKind(resp); kind {
	case BodyJSON:
		data, err := decodeJSON(body)
		if err != nil {
			return nil, fmt.Errorf("fetchdedupe: decode json body: %w", err)
		}
		out.Data = data
		out.BodyUsed = true
	case BodyText:
		out.Data = string(body)
		out.BodyUsed = true
	case BodyEmpty:
	default:
		return nil, fmt.Errorf("fetchdedupe: unknown response type %q", kind)
	}

	return out, nil
}

func bodiless(resp *http.Response) bool {
	switch resp.StatusCode {
	case http.StatusNoContent, http.StatusResetContent, http.StatusNotModified:
		return true
	}
	return resp.Request != nil && resp.Request.Method == http.MethodHead
}

// statusText prefers the reason phrase sent by the server.
func statusText(resp *http.Response) string {
	code := strconv.Itoa(resp.StatusCode)
	if reason, ok := strings.CutPrefix(resp.Status, code+" "); ok {
		return reason
	}
	if resp.Status != "" && resp.Status != code {
		return resp.Status
	}
	return http.StatusText(resp.StatusCode)
}
