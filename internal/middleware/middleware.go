// Package middleware holds the echo middleware stack: request ids, the
// request-scoped logger, New Relic tracing, rate limiting, authentication
// and the global error handler that renders every failure as an HTTPError.
package middleware
