package services

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/foldershare/internal/client/client"
)

const (
	msgNoResponse     = "No response received from server."
	msgSessionExpired = "Session expired or invalid. Please re-enter password."
)

var ErrNoDeleteTarget = errors.New("no delete in progress")

// errorMessage is the user-facing text for err: the server's message when
// there is one, a fixed text for network failures, fallback otherwise.
func errorMessage(err error, fallback string) string {
	if msg := client.ServerMessage(err, ""); msg != "" {
		return msg
	}
	if client.IsNetwork(err) {
		return msgNoResponse
	}
	return fallback
}

// CreateErrorMessage describes a failed folder creation.
func CreateErrorMessage(err error) string {
	if msg := client.ServerMessage(err, ""); msg != "" {
		return fmt.Sprintf("%s (Status: %d)", msg, client.StatusCode(err))
	}
	if client.IsNetwork(err) {
		return msgNoResponse
	}
	var ae *client.APIError
	if errors.As(err, &ae) && ae.Kind == client.KindSetup {
		return ae.Message
	}
	if err != nil {
		return err.Error()
	}
	return "An unknown error occurred."
}

func asAPIError(err error, target **client.APIError) bool {
	return errors.As(err, target)
}
