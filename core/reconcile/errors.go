package reconcile

import (
	"errors"
	"fmt"
	"net/http"
)

// TransportError is a failure to reach the platform at all.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// UpstreamError is a non-success response from the platform.
type UpstreamError struct {
	Status  int
	Reason  string
	Message string
}

// NewUpstreamError builds an UpstreamError whose reason is the status' reason phrase.
func NewUpstreamError(status int, message string) *UpstreamError {
	return &UpstreamError{Status: status, Reason: http.StatusText(status), Message: message}
}

func (e *UpstreamError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("upstream error: %d %s: %s", e.Status, e.Reason, e.Message)
	}
	return fmt.Sprintf("upstream error: %d %s", e.Status, e.Reason)
}

// MalformedRecordError is an external record that breaks an assumed invariant.
type MalformedRecordError struct {
	Kind       Kind
	ExternalID string
	Reason     string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed %s %s: %s", e.Kind, e.ExternalID, e.Reason)
}

// NotConnectedError means the tenant has no access token on file.
type NotConnectedError struct {
	TenantID string
}

func (e *NotConnectedError) Error() string {
	return fmt.Sprintf("tenant %s has no platform connection", e.TenantID)
}

// StageError reports the stage a job failed in along with the cause.
type StageError struct {
	Stage State
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("sync failed during %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// IsMalformed reports whether err carries a MalformedRecordError.
func IsMalformed(err error) bool {
	var m *MalformedRecordError
	return errors.As(err, &m)
}
