// Package middleware stores global and route-specific middleware.
//
// These intercept requests to handle cross-cutting concerns
// such as authentication (Clerk or Firebase ID tokens), request
// logging, tracing, CORS, panic recovery and the payment gate.
package middleware
