package fetchdedupe

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/mailru/easyjson/jlexer"
	"github.com/mailru/easyjson/jwriter"
)

// DeriveKey builds the request key for req. The method is uppercased,
// with an empty method keyed as GET, and every other field is written as
// canonical JSON with sorted object keys, so equal requests always share
// a key regardless of map order or header name casing. A ResponseType
// other than BodyJSON adds a "responseType" member. A nil req yields the
// key of a GET with no URL.
//
// Body values encoding/json rejects fall back to their %#v text, which
// for channels and funcs embeds a pointer. Distinct values then never
// share a key; use an explicit request key for them.
func DeriveKey(req *Request) string {
	if req == nil {
		req = &Request{}
	}

	w := &jwriter.Writer{}
	w.RawByte('{')
	if req.Body != nil {
		w.RawString(`"body":`)
		writeBody(w, req.Body)
		w.RawByte(',')
	}
	if len(req.Extra) > 0 {
		w.RawString(`"extra":`)
		writeCanonical(w, req.Extra)
		w.RawByte(',')
	}
	if len(req.Header) > 0 {
		w.RawString(`"headers":`)
		writeHeader(w, req.Header)
		w.RawByte(',')
	}
	w.RawString(`"method":`)
	w.String(keyMethod(req.Method))
	if req.ResponseType != "" && req.ResponseType != BodyJSON {
		w.RawString(`,"responseType":`)
		w.String(string(req.ResponseType))
	}
	w.RawString(`,"url":`)
	w.String(req.URL)
	w.RawByte('}')

	return string(w.Buffer.BuildBytes())
}

func keyMethod(method string) string {
	if method == "" {
		return http.MethodGet
	}
	return strings.ToUpper(method)
}

// GetRequestKey is DeriveKey under the name used by the package API.
func GetRequestKey(req *Request) string {
	return DeriveKey(req)
}

// encodeBody returns the bytes sent on the wire for body.
func encodeBody(body any) ([]byte, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return b, nil
	case json.RawMessage:
		return b, nil
	case string:
		return []byte(b), nil
	}

	w := &jwriter.Writer{}
	writeCanonical(w, body)
	return w.BuildBytes()
}

func writeBody(w *jwriter.Writer, body any) {
	switch b := body.(type) {
	case []byte:
		w.String(string(b))
	case json.RawMessage:
		w.String(string(b))
	default:
		writeCanonical(w, body)
	}
}

func writeHeader(w *jwriter.Writer, h http.Header) {
	merged := make(map[string][]string, len(h))
	for name, values := range h {
		canonical := http.CanonicalHeaderKey(name)
		merged[canonical] = append(merged[canonical], values...)
	}
	writeStringSlices(w, merged)
}

func writeStringSlices(w *jwriter.Writer, m map[string][]string) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	w.RawByte('{')
	for i, k := range keys {
		if i > 0 {
			w.RawByte(',')
		}
		w.String(k)
		w.RawByte(':')
		w.RawByte('[')
		for j, v := range m[k] {
			if j > 0 {
				w.RawByte(',')
			}
			w.String(v)
		}
		w.RawByte(']')
	}
	w.RawByte('}')
}

func writeObject(w *jwriter.Writer, m map[string]any) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	w.RawByte('{')
	for i, k := range keys {
		if i > 0 {
			w.RawByte(',')
		}
		w.String(k)
		w.RawByte(':')
		writeCanonical(w, m[k])
	}
	w.RawByte('}')
}

// writeCanonical writes v as JSON with sorted object keys. Values of
// types it does not know are round-tripped through encoding/json first.
func writeCanonical(w *jwriter.Writer, v any) {
	switch x := v.(type) {
	case nil:
		w.RawString("null")
	case string:
		w.String(x)
	case bool:
		w.Bool(x)
	case int:
		w.Int(x)
	case int8:
		w.Int8(x)
	case int16:
		w.Int16(x)
	case int32:
		w.Int32(x)
	case int64:
		w.Int64(x)
	case uint:
		w.Uint(x)
	case uint8:
		w.Uint8(x)
	case uint16:
		w.Uint16(x)
	case uint32:
		w.Uint32(x)
	case uint64:
		w.Uint64(x)
	case float32:
		w.Float32(x)
	case float64:
		w.Float64(x)
	case json.Number:
		w.RawString(x.String())
	case []byte:
		w.String(string(x))
	case []string:
		w.RawByte('[')
		for i, s := range x {
			if i > 0 {
				w.RawByte(',')
			}
			w.String(s)
		}
		w.RawByte(']')
	case []any:
		w.RawByte('[')
		for i, item := range x {
			if i > 0 {
				w.RawByte(',')
			}
			writeCanonical(w, item)
		}
		w.RawByte(']')
	case map[string]any:
		writeObject(w, x)
	case map[string]string:
		m := make(map[string]any, len(x))
		for k, s := range x {
			m[k] = s
		}
		writeObject(w, m)
	case map[string][]string:
		writeStringSlices(w, x)
	case url.Values:
		writeStringSlices(w, x)
	case http.Header:
		writeHeader(w, x)
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			w.String(fmt.Sprintf("%#v", v))
			return
		}
		decoded, err := decodeJSON(raw)
		if err != nil {
			w.String(string(raw))
			return
		}
		writeCanonical(w, decoded)
	}
}

// decodeJSON parses data into plain Go values: map[string]any, []any,
// float64, string, bool and nil.
func decodeJSON(data []byte) (any, error) {
	l := &jlexer.Lexer{Data: data}
	v := l.Interface()
	l.Consumed()
	if err := l.Error(); err != nil {
		return nil, err
	}
	return v, nil
}
