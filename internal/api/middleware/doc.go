/*
Package middleware provides the gin middleware stack of the shell API.

  - CORS: cross-origin access for browser clients (gin-contrib/cors)
  - RateLimit / GlobalRateLimit: token-bucket limits per client IP or for
    the whole server (golang.org/x/time/rate)
  - RequestID: X-Request-ID tagging with generated UUIDs, also placed on
    the request context for the session server (tracing)
  - Logger: one structured zap line per request
*/
package middleware
