package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestBearer(t *testing.T) {
	tests := []struct {
		name      string
		token     string
		header    string
		wantCode  int
		wantBody  string
		wantCalls bool
	}{
		{name: "disabled without token", token: "", wantCode: http.StatusTeapot, wantCalls: true},
		{name: "rejects missing token", token: "sekrit", wantCode: http.StatusUnauthorized, wantBody: "missing scrape token"},
		{name: "rejects invalid token", token: "sekrit", header: "Bearer wrong", wantCode: http.StatusForbidden, wantBody: "invalid scrape token"},
		{name: "allows valid token", token: "sekrit", header: "Bearer sekrit", wantCode: http.StatusTeapot, wantCalls: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			handled := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handled = true
				w.WriteHeader(http.StatusTeapot)
			})
			req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rr := httptest.NewRecorder()
			Bearer(tc.token)(next).ServeHTTP(rr, req)

			if rr.Code != tc.wantCode {
				t.Fatalf("expected status %d got %d", tc.wantCode, rr.Code)
			}
			if handled != tc.wantCalls {
				t.Fatalf("next handler called = %v, want %v", handled, tc.wantCalls)
			}
			if tc.wantBody != "" && strings.TrimSpace(rr.Body.String()) != tc.wantBody {
				t.Fatalf("unexpected body %q", rr.Body.String())
			}
		})
	}
}
