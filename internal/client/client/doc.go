// Package client talks to the folder sharing HTTP API.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface) covering
//     folders, files, password verification, signed URLs and the two
//     diagnostics endpoints (Ping, TestDB).
//  2. A concrete HTTP/JSON implementation (see HTTPClient) that keeps the
//     session cookie in a cookie jar, tags every request with an
//     X-Request-ID, streams multipart uploads with progress callbacks and
//     maps failures to *APIError values.
//  3. A circuit-breaking RoundTripper (gobreaker) that fails fast while the
//     API is unreachable, and optional Prometheus request metrics.
//
// # Error Handling
//
// Every failure is an *APIError whose Kind tells the three failure classes
// apart: KindSetup (nothing was sent), KindNetwork (no response) and
// KindResponse (the server answered with an error status). Common conditions
// can be matched with errors.Is: ErrUnavailable, ErrUnauthorized,
// ErrForbidden, ErrNotFound. Setup errors also match common.ErrValidation.
//
// Concurrency & Contexts
//
// HTTPClient is safe for concurrent use. All operations accept
// context.Context; non-upload calls are additionally bounded by the
// configured request timeout.
//
// See Also
//
//   - Interface: Client
//   - HTTP impl: HTTPClient, NewHTTPClient
//   - Errors:    APIError, StatusCode, ServerMessage, IsNetwork
package client
