// Package api adapts the recitation service to HTTP. Handlers decode and
// validate JSON requests, call the service as the authenticated requester
// and map service errors to status codes with sanitized messages.
package api
