package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRequireJSON(t *testing.T) {
	tests := []struct {
		name        string
		method      string
		contentType string
		body        string
		wantStatus  int
	}{
		{
			name:        "post with json",
			method:      http.MethodPost,
			contentType: "application/json",
			body:        `{"product_id":"p1"}`,
			wantStatus:  http.StatusOK,
		},
		{
			name:        "post with json and charset",
			method:      http.MethodPost,
			contentType: "application/json; charset=utf-8",
			body:        `{"product_id":"p1"}`,
			wantStatus:  http.StatusOK,
		},
		{
			name:        "post with form data rejected",
			method:      http.MethodPost,
			contentType: "application/x-www-form-urlencoded",
			body:        "product_id=p1",
			wantStatus:  http.StatusUnsupportedMediaType,
		},
		{
			name:        "put with text plain rejected",
			method:      http.MethodPut,
			contentType: "text/plain",
			body:        "hello",
			wantStatus:  http.StatusUnsupportedMediaType,
		},
		{
			name:        "post with missing content type rejected",
			method:      http.MethodPost,
			contentType: "",
			body:        `{"product_id":"p1"}`,
			wantStatus:  http.StatusUnsupportedMediaType,
		},
		{
			name:       "get passes without content type",
			method:     http.MethodGet,
			wantStatus: http.StatusOK,
		},
		{
			name:       "delete passes without content type",
			method:     http.MethodDelete,
			wantStatus: http.StatusOK,
		},
		{
			name:       "post with empty body passes",
			method:     http.MethodPost,
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := RequireJSON(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			var req *http.Request
			if tt.body != "" {
				req = httptest.NewRequest(tt.method, "/api/v1/cart/items", strings.NewReader(tt.body))
			} else {
				req = httptest.NewRequest(tt.method, "/api/v1/cart/items", nil)
			}
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}
