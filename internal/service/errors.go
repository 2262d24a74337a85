package service

import (
	"errors"
	"fmt"
)

// Messages shown to the user by the connection form.
const (
	MsgChannelIDRequired = "Please enter a Channel ID."
	MsgAccessKeyRequired = "Please enter a Password for the Private connection."
	MsgNetworkError      = "Network error. Please try again."
	MsgConnectionFailed  = "Connection failed. Check your channel ID or password."
)

var (
	ErrSessionNotFound = errors.New("dashboard session not found")
	ErrTooManySessions = errors.New("too many dashboard sessions")
	ErrNotMounted      = errors.New("dashboard is not mounted")
)

// ValidationError is a user input problem detected before any network call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ConnectivityError means the feed API could not confirm the channel. Message is user facing;
// Status is the HTTP status when one was received.
type ConnectivityError struct {
	Message string
	Status  int
	Err     error
}

func (e *ConnectivityError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *ConnectivityError) Unwrap() error { return e.Err }
