package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

// ServeRequest runs req through h and returns the recorded response.
func ServeRequest(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// Serve builds a request for method and path and runs it through h.
func Serve(h http.Handler, method, path string, body io.Reader) *httptest.ResponseRecorder {
	return ServeRequest(h, httptest.NewRequest(method, path, body))
}

// TickRequest builds POST /tick, adding a bearer token when secret is set.
func TickRequest(secret string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/tick", nil)
	if secret != "" {
		req.Header.Set("Authorization", "Bearer "+secret)
	}
	return req
}

// AssertStatus fails the test when the recorded status differs from want.
func AssertStatus(t testing.TB, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected status %d, got %d (body %s)", want, rec.Code, rec.Body.String())
	}
}

// DecodeJSON decodes the recorded body into dest.
func DecodeJSON(t testing.TB, rec *httptest.ResponseRecorder, dest any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(dest); err != nil {
		t.Fatalf("decoding %d response: %v", rec.Code, err)
	}
}
