package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWithCORS(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	h := WithCORS(ok, []string{"https://app.example.com"})

	cases := []struct {
		origin string
		want   string
	}{
		{origin: "https://app.example.com", want: "https://app.example.com"},
		{origin: "https://evil.example.com", want: ""},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodOptions, "/expenses", nil)
		req.Header.Set("Origin", tc.origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPut)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != tc.want {
			t.Fatalf("origin %s: Access-Control-Allow-Origin=%q, want %q", tc.origin, got, tc.want)
		}
	}
}
