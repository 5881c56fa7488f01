// Package common defines shared constants, sentinel errors and small helpers
// used across the foldershare client layers. Callers should use errors.Is to
// match the sentinel values.
package common

import "errors"

// ErrValidation marks a client-side validation failure: the request was
// blocked before anything was sent to the server.
var ErrValidation = errors.New("validation error")

// ErrBusy is returned when an action is triggered while the same action is
// still in flight. Callers treat it as "the control is disabled".
var ErrBusy = errors.New("operation already in progress")
