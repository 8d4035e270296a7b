package ideas

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrAuthRequired is returned, before any request is made, when no bearer
	// token is available. The view surfaces it as "please sign in".
	ErrAuthRequired = errors.New("ideas: authentication required")

	// ErrNetworkUnavailable matches every *NetworkError under errors.Is.
	ErrNetworkUnavailable = errors.New("ideas: network unavailable")
)

// ValidationError reports a local precondition failure; no request was made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "ideas: invalid input: " + e.Message
	}
	return fmt.Sprintf("ideas: invalid %s: %s", e.Field, e.Message)
}

// RemoteRejectedError is a non-2xx response from the backend. Callers can
// use errors.As to extract it:
//
//	var rejected *RemoteRejectedError
//	if errors.As(err, &rejected) && rejected.Status == http.StatusNotFound { ... }
type RemoteRejectedError struct {
	// Status is the HTTP status code.
	Status int
	// Message is the body's "detail" when present, else a generic message
	// derived from Status.
	Message string
}

func (e *RemoteRejectedError) Error() string {
	return fmt.Sprintf("ideas: rejected (%d): %s", e.Status, e.Message)
}

// NetworkError is a request that produced no response: transport failure,
// timeout or cancellation.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("ideas: %s: network unavailable: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) Is(target error) bool { return target == ErrNetworkUnavailable }

func genericMessage(status int) string {
	if text := http.StatusText(status); text != "" {
		return fmt.Sprintf("request failed with status %d (%s)", status, text)
	}
	return fmt.Sprintf("request failed with status %d", status)
}

// ErrorKind tags an error with its place in the taxonomy.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindAuthRequired
	KindValidation
	KindRemoteRejected
	KindNetworkUnavailable
	KindUnknown
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindAuthRequired:
		return "auth_required"
	case KindValidation:
		return "validation"
	case KindRemoteRejected:
		return "remote_rejected"
	case KindNetworkUnavailable:
		return "network_unavailable"
	}
	return "unknown"
}

// KindOf classifies err so callers switch on a tag instead of inspecting
// error shapes.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	var validation *ValidationError
	var rejected *RemoteRejectedError
	switch {
	case errors.Is(err, ErrAuthRequired):
		return KindAuthRequired
	case errors.As(err, &validation):
		return KindValidation
	case errors.As(err, &rejected):
		return KindRemoteRejected
	case errors.Is(err, ErrNetworkUnavailable):
		return KindNetworkUnavailable
	}
	return KindUnknown
}

// UserMessage is the text the view shows for err.
func UserMessage(err error) string {
	switch KindOf(err) {
	case KindNone:
		return ""
	case KindAuthRequired:
		return "Please sign in to continue."
	case KindValidation:
		var validation *ValidationError
		errors.As(err, &validation)
		return validation.Message
	case KindRemoteRejected:
		var rejected *RemoteRejectedError
		errors.As(err, &rejected)
		return rejected.Message
	case KindNetworkUnavailable:
		return "Could not reach the server. Check your connection and try again."
	}
	return "Something went wrong. Please try again."
}
