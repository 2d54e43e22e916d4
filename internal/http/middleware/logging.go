// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file provides request correlation, the access log and panic recovery:
//
//   - RequestID() reuses or mints the X-Request-ID correlation id.
//   - AccessLog() attaches a request-scoped zerolog.Logger and writes one
//     structured line per request with credentials scrubbed from the query
//     string and headers.
//   - Recovery() turns panics into the JSON error envelope.
//   - LoggerFrom() hands the request-scoped logger to handlers.
//
// Order: RequestID → AccessLog → Recovery, so panics carry the id.
package middleware

import (
	"net/http"
	"regexp"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	requestIDKey      = "requestID"
	requestIDHeader   = "X-Request-ID"
	loggerKey         = "logger"
	maxQueryLogLength = 2048
	redacted          = "[REDACTED]"
)

// RequestID attaches (or propagates) a correlation identifier per request.
// An incoming X-Request-ID is reused; otherwise a UUIDv4 is generated.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if rid == "" || len(rid) > 128 {
			rid = uuid.NewString()
		}
		c.Set(requestIDKey, rid)
		c.Writer.Header().Set(requestIDHeader, rid)
		c.Next()
	}
}

// LogOptions configures AccessLog.
//
// MaskHeaders adds header names whose values are replaced with "[REDACTED]".
// Authorization, Cookie, Set-Cookie and the upstream key headers are always
// masked. LogHeaders includes the scrubbed request headers in each line.
type LogOptions struct {
	MaskHeaders []string
	LogHeaders  bool
	// SkipPaths are logged at debug level only (probes and scrapes).
	SkipPaths []string
}

var (
	// key=..., token=..., api_key=... in query strings
	secretParamRE = regexp.MustCompile(`(?i)\b((?:api[_-]?)?key|token|secret|access_token|bearer)=([^&]*)`)
	emailRE       = regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`)
)

// scrub removes credentials and e-mail addresses from s.
func scrub(s string) string {
	if s == "" {
		return s
	}
	s = secretParamRE.ReplaceAllString(s, "$1="+redacted)
	return emailRE.ReplaceAllString(s, "[REDACTED:email]")
}

// AccessLog writes a structured access log for each request.
//
// Level follows the outcome: error for 5xx or gin errors, warn for 4xx,
// info otherwise.
func AccessLog(opts LogOptions) gin.HandlerFunc {
	mask := map[string]struct{}{
		"authorization":       {},
		"proxy-authorization": {},
		"cookie":              {},
		"set-cookie":          {},
		"x-rapidapi-key":      {},
		"x-api-key":           {},
	}
	for _, h := range opts.MaskHeaders {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			mask[h] = struct{}{}
		}
	}
	skip := make(map[string]struct{}, len(opts.SkipPaths))
	for _, p := range opts.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		start := time.Now()

		rid, _ := c.Get(requestIDKey)
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		l := log.With().
			Str("request_id", asString(rid)).
			Str("method", c.Request.Method).
			Str("path", path).
			Logger()
		c.Set(loggerKey, &l)

		c.Next()

		status := c.Writer.Status()
		ctx := l.With().
			Str("query", truncate(scrub(c.Request.URL.RawQuery), maxQueryLogLength)).
			Str("remote_ip", c.ClientIP()).
			Str("user_agent", c.Request.UserAgent()).
			Int("status", status).
			Int("bytes_out", c.Writer.Size()).
			Dur("latency", time.Since(start))
		if src, ok := c.Get(feedSourceKey); ok {
			ctx = ctx.Str("source", asString(src))
		}
		if opts.LogHeaders {
			hdrs := make(map[string]string, len(c.Request.Header))
			for k, vv := range c.Request.Header {
				if _, ok := mask[strings.ToLower(k)]; ok {
					hdrs[k] = redacted
					continue
				}
				hdrs[k] = scrub(strings.Join(vv, ", "))
			}
			ctx = ctx.Interface("headers", hdrs)
		}
		ev := ctx.Logger()

		_, quiet := skip[path]
		switch {
		case len(c.Errors) > 0:
			ev.Error().Str("errors", c.Errors.String()).Msg("http_request")
		case status >= 500:
			ev.Error().Msg("http_request")
		case status >= 400:
			ev.Warn().Msg("http_request")
		case quiet:
			ev.Debug().Msg("http_request")
		default:
			ev.Info().Msg("http_request")
		}
	}
}

// Recovery logs the panic with its stack and answers with a JSON 500 in the
// API error envelope when nothing has been written yet.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				rid, _ := c.Get(requestIDKey)
				LoggerFrom(c).Error().
					Interface("panic", rec).
					Bytes("stack", debug.Stack()).
					Msg("panic recovered")

				if c.Writer.Written() {
					c.AbortWithStatus(http.StatusInternalServerError)
					return
				}
				c.Header(requestIDHeader, asString(rid))
				abortJSON(c, http.StatusInternalServerError, "internal_error", "internal server error")
			}
		}()
		c.Next()
	}
}

// LoggerFrom returns the request-scoped logger, or the global one when
// AccessLog did not run.
func LoggerFrom(c *gin.Context) *zerolog.Logger {
	if v, ok := c.Get(loggerKey); ok {
		if lg, ok := v.(*zerolog.Logger); ok {
			return lg
		}
	}
	l := log.With().Logger()
	return &l
}

// abortJSON writes the same envelope handlers.fail produces. The handlers
// package imports this one, so the shape is duplicated rather than shared.
func abortJSON(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success":    false,
		"request_id": c.Writer.Header().Get(requestIDHeader),
		"code":       code,
		"message":    msg,
	})
}

func asString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// truncate caps s at max bytes; max <= 0 disables it.
func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max] + "…"
}
