package fetchdedupe

import (
	"encoding/json"
	"net/http"
	"testing"
)

const typesTestStatusFormat = "Expected status 200, got %d"

func TestOptionsDedupeDefault(t *testing.T) {
	var opts Options
	if !opts.dedupe() {
		t.Error("Expected dedupe to default to true")
	}

	opts.Dedupe = Bool(false)
	if opts.dedupe() {
		t.Error("Expected Bool(false) to disable dedupe")
	}

	opts.Dedupe = Bool(true)
	if !opts.dedupe() {
		t.Error("Expected Bool(true) to enable dedupe")
	}
}

func TestBodyKindIsResponseType(t *testing.T) {
	var rt ResponseType = BodyText
	if got := rt.BodyKind(&http.Response{StatusCode: 500}); got != BodyText {
		t.Errorf("Expected %q, got %q", BodyText, got)
	}
}

func TestParseBodyKind(t *testing.T) {
	tests := []struct {
		in   string
		want BodyKind
		ok   bool
	}{
		{"json", BodyJSON, true},
		{" Text ", BodyText, true},
		{"EMPTY", BodyEmpty, true},
		{"xml", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseBodyKind(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseBodyKind(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestRoundTripperFunc(t *testing.T) {
	callCount := 0

	roundTripper := RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
		callCount++
		return &http.Response{StatusCode: 200}, nil
	})

	req, _ := http.NewRequest("GET", testURL, nil)
	resp, err := roundTripper.RoundTrip(req)

	if err != nil {
		t.Fatalf("RoundTrip failed: %v", err)
	}
	if callCount != 1 {
		t.Errorf("Expected 1 call, got %d", callCount)
	}
	if resp.StatusCode != 200 {
		t.Errorf(typesTestStatusFormat, resp.StatusCode)
	}
}

func TestMiddlewareType(t *testing.T) {
	callOrder := []string{}

	middleware := Middleware(func(req *http.Request, next RoundTripper) (*http.Response, error) {
		callOrder = append(callOrder, "middleware")
		return next.RoundTrip(req)
	})

	next := RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
		callOrder = append(callOrder, "next")
		return &http.Response{StatusCode: 200}, nil
	})

	req, _ := http.NewRequest("GET", testURL, nil)
	resp, err := middleware(req, next)

	if err != nil {
		t.Fatalf("Middleware failed: %v", err)
	}
	if len(callOrder) != 2 || callOrder[0] != "middleware" || callOrder[1] != "next" {
		t.Errorf("Expected call order [middleware next], got %v", callOrder)
	}
	if resp.StatusCode != 200 {
		t.Errorf(typesTestStatusFormat, resp.StatusCode)
	}
}

func TestResponseJSONShape(t *testing.T) {
	resp := Response{Data: "hi", Status: 200, StatusText: "OK", OK: true, BodyUsed: true}

	raw, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	want := `{"data":"hi","status":200,"statusText":"OK","ok":true,"bodyUsed":true}`
	if string(raw) != want {
		t.Errorf("Expected %s, got %s", want, raw)
	}
}
