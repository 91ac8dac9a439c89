package middleware

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestSecurityHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name   string
		opt    SecurityOptions
		path   string
		tls    bool
		proto  string
		expose string // pre-set Access-Control-Expose-Headers
		want   map[string]string
	}{
		{
			name: "api defaults",
			path: "/api/v1/communities",
			want: map[string]string{
				"X-Content-Type-Options":        "nosniff",
				"X-Frame-Options":               "DENY",
				"Referrer-Policy":               "no-referrer",
				"Content-Security-Policy":       apiCSP,
				"Access-Control-Expose-Headers": requestIDHeader,
				"Permissions-Policy":            "",
				"Cache-Control":                 "",
				"Strict-Transport-Security":     "",
			},
		},
		{
			name: "swagger ui csp",
			opt:  SecurityOptions{UIPrefixes: []string{"/swagger/"}},
			path: "/swagger/index.html",
			want: map[string]string{"Content-Security-Policy": uiCSP},
		},
		{
			name: "policy and no-store",
			opt:  SecurityOptions{EnablePolicy: true, NoStore: true},
			path: "/api/v1/communities",
			want: map[string]string{
				"X-Permitted-Cross-Domain-Policies": "none",
				"Cache-Control":                     "no-store",
				"Pragma":                            "no-cache",
				"Expires":                           "0",
			},
		},
		{
			name: "hsts over tls",
			opt:  SecurityOptions{EnableHSTS: true, HSTSMaxAge: 24 * time.Hour},
			path: "/health",
			tls:  true,
			want: map[string]string{"Strict-Transport-Security": "max-age=86400; includeSubDomains; preload"},
		},
		{
			name:  "hsts behind proxy with default max age",
			opt:   SecurityOptions{EnableHSTS: true},
			path:  "/health",
			proto: "HTTPS",
			want:  map[string]string{"Strict-Transport-Security": "max-age=15552000; includeSubDomains; preload"},
		},
		{
			name: "no hsts over plain http",
			opt:  SecurityOptions{EnableHSTS: true},
			path: "/health",
			want: map[string]string{"Strict-Transport-Security": ""},
		},
		{
			name:   "expose header appended once",
			path:   "/health",
			expose: "ETag",
			want:   map[string]string{"Access-Control-Expose-Headers": "ETag, " + requestIDHeader},
		},
		{
			name:   "expose header not duplicated",
			path:   "/health",
			expose: requestIDHeader + ", ETag",
			want:   map[string]string{"Access-Control-Expose-Headers": requestIDHeader + ", ETag"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.Use(func(c *gin.Context) {
				c.Header(requestIDHeader, "rid-1")
				if tc.expose != "" {
					c.Header("Access-Control-Expose-Headers", tc.expose)
				}
				c.Next()
			})
			r.Use(SecurityHeaders(tc.opt))
			r.NoRoute(func(c *gin.Context) { c.Status(http.StatusOK) })

			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.tls {
				req.TLS = &tls.ConnectionState{}
			}
			if tc.proto != "" {
				req.Header.Set("X-Forwarded-Proto", tc.proto)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			for k, v := range tc.want {
				if got := w.Header().Get(k); got != v {
					t.Errorf("%s = %q; want %q", k, got, v)
				}
			}
		})
	}
}

func Test_isUIPath(t *testing.T) {
	prefixes := []string{"/swagger/", ""}
	if !isUIPath("/swagger/doc.json", prefixes) {
		t.Fatalf("swagger path not matched")
	}
	if isUIPath("/api/v1/communities", prefixes) || isUIPath("/swagger", prefixes) {
		t.Fatalf("non-UI path matched")
	}
}
