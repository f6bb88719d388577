package qbittorrent

import (
	"errors"
	"fmt"
)

// Sentinel errors for failure classification. Structured failures
// (UnsupportedError, StatusError, ...) match these via errors.Is so
// callers can branch on the class without reaching for errors.As.
var (
	ErrInvalidHash      = errors.New("invalid torrent hash")
	ErrEmptySet         = errors.New("empty selection")
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrAuthFailed       = errors.New("authentication failed")
	ErrUnsupported      = errors.New("operation not supported by this qBittorrent version")
	ErrRequestFailed    = errors.New("request failed")
	ErrDecode           = errors.New("malformed response")
	ErrDetectionFailed  = errors.New("api detection failed")
	ErrTransport        = errors.New("transport error")
)

// UnsupportedError is returned when the detected daemon cannot serve an
// operation: either the operation has no endpoint for the detected API
// generation, or the daemon's API version is below the operation's minimum.
// No request is sent when this error is returned.
type UnsupportedError struct {
	Op       string
	Required string // generation or "generation >= version" the operation needs
	Actual   Capability
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("%s requires %s, daemon speaks %s", e.Op, e.Required, e.Actual)
}

func (e *UnsupportedError) Is(target error) bool {
	return target == ErrUnsupported
}

// StatusError is returned when the daemon answers with a non-success HTTP
// status. The body is kept for diagnostics; qBittorrent often explains the
// failure there in plain text.
type StatusError struct {
	Op   string
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: daemon returned status %d", e.Op, e.Code)
	}
	return fmt.Sprintf("%s: daemon returned status %d: %s", e.Op, e.Code, e.Body)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrRequestFailed
}

// DecodeError is returned when a success response body does not match the
// shape the operation declares.
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: decoding response: %v", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}

// DetectionError is returned when the capability probe itself fails. It is
// never memoized; the next operation retries detection from scratch.
type DetectionError struct {
	Err error
}

func (e *DetectionError) Error() string {
	return fmt.Sprintf("detecting qBittorrent api: %v", e.Err)
}

func (e *DetectionError) Unwrap() error { return e.Err }

func (e *DetectionError) Is(target error) bool {
	return target == ErrDetectionFailed
}

// TransportError wraps connection-level failures (refused, timeout, TLS) so
// they stay distinguishable from daemon-reported statuses. Context
// cancellation is not wrapped; it propagates as context.Canceled.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}
