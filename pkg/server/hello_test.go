package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHello(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		method     string
		target     string
		wantStatus int
		wantBody   string
	}{
		{name: "root", method: http.MethodGet, target: "/", wantStatus: http.StatusOK, wantBody: Greeting},
		{name: "any path", method: http.MethodGet, target: "/some/deep/path", wantStatus: http.StatusOK, wantBody: Greeting},
		{name: "query string", method: http.MethodGet, target: "/x?y=z", wantStatus: http.StatusOK, wantBody: Greeting},
		{name: "head", method: http.MethodHead, target: "/", wantStatus: http.StatusOK, wantBody: ""},
		{name: "post", method: http.MethodPost, target: "/", wantStatus: http.StatusMethodNotAllowed},
		{name: "delete", method: http.MethodDelete, target: "/a", wantStatus: http.StatusMethodNotAllowed},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			Hello().ServeHTTP(rec, httptest.NewRequest(tc.method, tc.target, nil))

			if rec.Code != tc.wantStatus {
				t.Errorf("status = %d; want %d", rec.Code, tc.wantStatus)
			}
			if tc.wantStatus == http.StatusOK && rec.Body.String() != tc.wantBody {
				t.Errorf("body = %q; want %q", rec.Body.String(), tc.wantBody)
			}
			if tc.wantStatus == http.StatusMethodNotAllowed && rec.Header().Get("Allow") != "GET, HEAD" {
				t.Errorf("Allow = %q", rec.Header().Get("Allow"))
			}
		})
	}
}
