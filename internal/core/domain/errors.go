package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthenticated   = errors.New("no authenticated user")
	ErrRemoteUnavailable = errors.New("remote store unavailable")
	ErrUserNotFound      = errors.New("user not found")
	ErrEmailTaken        = errors.New("email already registered")
	ErrInvalidUserID     = errors.New("invalid user id")
	ErrSelfConversation  = errors.New("sender and receiver must differ")
	ErrInvalidToken      = errors.New("invalid or expired token")
)

// RemoteError wraps a failure of the backing store or an external service.
// Status carries the upstream status code when one exists, zero otherwise.
type RemoteError struct {
	Status  int
	Message string
	Err     error
}

func (e *RemoteError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("remote error (status %d): %s", e.Status, e.Message)
	}
	return "remote error: " + e.Message
}

func (e *RemoteError) Unwrap() error { return e.Err }

// Remote converts an arbitrary store failure into a RemoteError, leaving
// already-classified errors untouched.
func Remote(err error) error {
	if err == nil {
		return nil
	}
	var re *RemoteError
	if errors.As(err, &re) {
		return err
	}
	return &RemoteError{Message: err.Error(), Err: err}
}

// SendError marks a rejected message send. The caller keeps the input for
// manual resubmission.
type SendError struct {
	Reason string
	Err    error
}

func (e *SendError) Error() string { return "send failed: " + e.Reason }

func (e *SendError) Unwrap() error { return e.Err }

// ValidationError is raised for malformed local input before any remote
// call is attempted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
