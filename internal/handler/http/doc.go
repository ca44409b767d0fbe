// Package http implements the HTTP transport layer of the host.
// It provides middleware, route handlers, and request/response utilities
// for the perimeter and host-diagnostics API. Tracing, logging, and
// peer-auth concerns are all handled at this layer before requests are
// forwarded to the perimeter and transit services.
package http
