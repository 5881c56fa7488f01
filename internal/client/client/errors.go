package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/foldershare/internal/common"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
)

// Kind classifies how a call failed.
type Kind int

const (
	// KindSetup means the request was rejected before being sent.
	KindSetup Kind = iota + 1
	// KindNetwork means no response was received.
	KindNetwork
	// KindResponse means the server answered with an error.
	KindResponse
)

func (k Kind) String() string {
	switch k {
	case KindSetup:
		return "setup"
	case KindNetwork:
		return "network"
	case KindResponse:
		return "response"
	default:
		return "unknown"
	}
}

// APIError describes a failed API call.
type APIError struct {
	Op         string
	Kind       Kind
	StatusCode int
	// Message is the server's error text, verbatim. For setup errors it is
	// the client-side reason.
	Message string
	// Body is the raw error payload, if any.
	Body []byte
	Err  error
}

func (e *APIError) Error() string {
	switch e.Kind {
	case KindResponse:
		if e.Message != "" {
			return fmt.Sprintf("%s: %s (status %d)", e.Op, e.Message, e.StatusCode)
		}
		if e.Err != nil {
			return fmt.Sprintf("%s: status %d: %v", e.Op, e.StatusCode, e.Err)
		}
		return fmt.Sprintf("%s: status %d", e.Op, e.StatusCode)
	case KindNetwork:
		return fmt.Sprintf("%s: no response: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
}

func (e *APIError) Unwrap() error { return e.Err }

func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnavailable:
		return e.Kind == KindNetwork
	case ErrUnauthorized:
		return e.Kind == KindResponse && e.StatusCode == http.StatusUnauthorized
	case ErrForbidden:
		return e.Kind == KindResponse && e.StatusCode == http.StatusForbidden
	case ErrNotFound:
		return e.Kind == KindResponse && e.StatusCode == http.StatusNotFound
	}
	return false
}

// DecodeBody unmarshals the raw error payload into v.
func (e *APIError) DecodeBody(v any) error {
	if len(e.Body) == 0 {
		return errors.New("empty error body")
	}
	return json.Unmarshal(e.Body, v)
}

func setupError(op, msg string) *APIError {
	return &APIError{Op: op, Kind: KindSetup, Message: msg, Err: common.ErrValidation}
}

// mapError converts an error status and its payload into an *APIError.
func mapError(op string, status int, body []byte) *APIError {
	e := &APIError{Op: op, Kind: KindResponse, StatusCode: status, Body: body}

	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &payload) == nil {
		e.Message = payload.Error
		if e.Message == "" {
			e.Message = payload.Message
		}
	}
	return e
}

func asAPIError(err error) (*APIError, bool) {
	var ae *APIError
	ok := errors.As(err, &ae)
	return ae, ok
}

// StatusCode returns the HTTP status of a response error, or 0.
func StatusCode(err error) int {
	if ae, ok := asAPIError(err); ok && ae.Kind == KindResponse {
		return ae.StatusCode
	}
	return 0
}

// ServerMessage returns the server-supplied error text of err, or fallback
// when there is none.
func ServerMessage(err error, fallback string) string {
	if ae, ok := asAPIError(err); ok && ae.Kind == KindResponse && ae.Message != "" {
		return ae.Message
	}
	return fallback
}

// IsNetwork reports whether err means no response was received.
func IsNetwork(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

// IsSetup reports whether err was raised before anything was sent.
func IsSetup(err error) bool {
	ae, ok := asAPIError(err)
	return ok && ae.Kind == KindSetup
}
