package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestBearerToken(t *testing.T) {
	cases := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi", true},
		{"bearer abc.def.ghi", "abc.def.ghi", true},
		{"BEARER abc.def.ghi", "abc.def.ghi", true},
		{"", "", false},
		{"abc.def.ghi", "", false},
		{"Basic dXNlcjpwYXNz", "", false},
		{"Bearer", "", false},
		{"Bearer one two", "", false},
	}

	e := echo.New()
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		c := e.NewContext(req, httptest.NewRecorder())

		token, ok := BearerToken(c)
		if ok != tc.ok || token != tc.token {
			t.Fatalf("header %q: expected (%q, %v), got (%q, %v)", tc.header, tc.token, tc.ok, token, ok)
		}
	}
}
