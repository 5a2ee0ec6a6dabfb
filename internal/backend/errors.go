package backend

import (
	"errors"
	"fmt"
)

// NetworkError is returned when the request never produced a response.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPError is a non-2xx response whose body carried nothing usable.
type HTTPError struct {
	Op         string
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

// ApplicationError is a response whose body reports a failure.
type ApplicationError struct {
	Op      string
	Message string
}

func (e *ApplicationError) Error() string {
	if e.Message == "" {
		return e.Op + ": failed"
	}
	return e.Message
}

// Reason is the short text shown to users for a failed call.
func Reason(err error) string {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Error()
	}
	var appErr *ApplicationError
	if errors.As(err, &appErr) {
		return appErr.Error()
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return "network error"
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

func outcome(err error) string {
	var (
		httpErr *HTTPError
		appErr  *ApplicationError
		netErr  *NetworkError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &httpErr):
		return "http_error"
	case errors.As(err, &appErr):
		return "app_error"
	case errors.As(err, &netErr):
		return "network_error"
	default:
		return "decode_error"
	}
}
