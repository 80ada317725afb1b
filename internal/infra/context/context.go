// Package context holds request-scoped values shared between the transport
// layer, the services and the log handlers.
package context

type contextKey string
