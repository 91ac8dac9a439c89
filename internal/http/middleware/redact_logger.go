// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements RedactingLogger, the admin API access log. Bodies are
// never logged. Credential headers and credential query parameters are masked
// outright; every other header and query value is pattern-scrubbed for bot
// tokens, UUIDs, emails and phone numbers.
package middleware

import (
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const redacted = "[REDACTED]"

// RedactOptions extends the built-in mask lists. Names match
// case-insensitively.
type RedactOptions struct {
	MaskHeaders     []string
	MaskQueryParams []string
}

// Order matters: tokens and UUIDs go before the phone pattern, which would
// otherwise eat their digit runs.
var scrubbers = []struct {
	re   *regexp.Regexp
	repl string
}{
	// Telegram bot tokens: "<bot id>:<35 url-safe chars>".
	{regexp.MustCompile(`\b\d{5,12}:[A-Za-z0-9_-]{30,}`), "[REDACTED:token]"},
	{regexp.MustCompile(`(?i)\b[0-9a-f]{8}-[0-9a-f]{4}-[1-5][0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}\b`), "[REDACTED:id]"},
	{regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`), "[REDACTED:email]"},
	{regexp.MustCompile(`\b(?:\+?\d{1,3}[ .-]?)?(?:\(?\d{2,4}\)?[ .-]?)?\d{3,4}[ .-]?\d{4}\b`), "[REDACTED:phone]"},
}

func scrub(s string) string {
	for _, sc := range scrubbers {
		s = sc.re.ReplaceAllString(s, sc.repl)
	}
	return s
}

func lowerSet(base []string, extra []string) map[string]struct{} {
	set := make(map[string]struct{}, len(base)+len(extra))
	for _, list := range [][]string{base, extra} {
		for _, v := range list {
			if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
				set[v] = struct{}{}
			}
		}
	}
	return set
}

// redactQuery masks credential parameters and scrubs the rest. Output keys
// are sorted so identical queries log identically. An unparsable query is
// scrubbed as a whole.
func redactQuery(raw string, mask map[string]struct{}) string {
	if raw == "" {
		return ""
	}
	vals, err := url.ParseQuery(raw)
	if err != nil {
		return scrub(raw)
	}
	keys := make([]string, 0, len(vals))
	for k := range vals {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		_, masked := mask[strings.ToLower(k)]
		for _, v := range vals[k] {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(k)
			b.WriteByte('=')
			if masked {
				b.WriteString(redacted)
			} else {
				b.WriteString(scrub(v))
			}
		}
	}
	return b.String()
}

// RedactingLogger logs one line per request and installs the request-scoped
// logger returned by LoggerFrom. Level is info, warn for 4xx, error for 5xx
// or when handlers attached errors with c.Error.
func RedactingLogger(opts RedactOptions) gin.HandlerFunc {
	maskHeaders := lowerSet([]string{"authorization", "cookie", "set-cookie", "x-telegram-bot-api-secret-token"}, opts.MaskHeaders)
	maskParams := lowerSet([]string{"token", "access_token", "api_key", "secret"}, opts.MaskQueryParams)

	return func(c *gin.Context) {
		start := time.Now()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}

		headers := make(map[string]string, len(c.Request.Header))
		for k, vv := range c.Request.Header {
			if _, ok := maskHeaders[strings.ToLower(k)]; ok {
				headers[k] = redacted
				continue
			}
			headers[k] = scrub(strings.Join(vv, ", "))
		}

		reqID := asString(c.Value(requestIDKey))
		if reqID == "" {
			reqID = c.Writer.Header().Get(requestIDHeader)
		}
		if rid := c.GetHeader(requestIDHeader); reqID == "" && validRequestID(rid) {
			reqID = rid
		}

		l := log.With().
			Str("component", "admin_http").
			Str("request_id", reqID).
			Str("method", c.Request.Method).
			Str("route", route).
			Logger()
		c.Set(loggerKey, &l)

		c.Next()

		status := c.Writer.Status()
		ev := l.Info()
		switch {
		case len(c.Errors) > 0 || status >= 500:
			ev = l.Error()
		case status >= 400:
			ev = l.Warn()
		}
		if len(c.Errors) > 0 {
			ev = ev.Strs("errors", c.Errors.Errors())
		}

		ev.
			Str("principal", c.GetString(PrincipalKey)).
			Str("query", redactQuery(c.Request.URL.RawQuery, maskParams)).
			Int("status", status).
			Int("bytes", c.Writer.Size()).
			Dur("latency", time.Since(start)).
			Interface("headers", headers).
			Msg("http_request")
	}
}
