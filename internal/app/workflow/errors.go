package workflow

import (
	"errors"
	"fmt"
)

// ErrorKind classifies workflow failures.
type ErrorKind string

const (
	KindNoFileSelected     ErrorKind = "no_file_selected"
	KindCredentialFetch    ErrorKind = "credential_fetch"
	KindUpload             ErrorKind = "upload"
	KindPollAttempt        ErrorKind = "poll_attempt"
	KindParse              ErrorKind = "parse"
	KindCredentialsExpired ErrorKind = "credentials_expired"
)

// Error is a classified workflow failure.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same kind, so errors.Is(err, ErrNoFileSelected) works.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrNoFileSelected     = &Error{Kind: KindNoFileSelected, Message: "no file selected"}
	ErrCredentialFetch    = &Error{Kind: KindCredentialFetch, Message: "credential fetch failed"}
	ErrUpload             = &Error{Kind: KindUpload, Message: "upload failed"}
	ErrPollAttempt        = &Error{Kind: KindPollAttempt, Message: "poll attempt failed"}
	ErrParse              = &Error{Kind: KindParse, Message: "transcript could not be parsed"}
	ErrCredentialsExpired = &Error{Kind: KindCredentialsExpired, Message: "credentials expired"}
)

func NewNoFileSelectedError() *Error {
	return &Error{Kind: KindNoFileSelected, Message: "no file selected"}
}

func NewCredentialFetchError(err error) *Error {
	return &Error{Kind: KindCredentialFetch, Message: "failed to get temporary credentials", Err: err}
}

func NewUploadError(fileName string, err error) *Error {
	return &Error{Kind: KindUpload, Message: fmt.Sprintf("failed to upload %s", fileName), Err: err}
}

func NewPollAttemptError(key string, err error) *Error {
	return &Error{Kind: KindPollAttempt, Message: fmt.Sprintf("failed to check %s", key), Err: err}
}

func NewParseError(key string, err error) *Error {
	return &Error{Kind: KindParse, Message: fmt.Sprintf("failed to parse %s", key), Err: err}
}

func NewCredentialsExpiredError(fileName string) *Error {
	return &Error{Kind: KindCredentialsExpired, Message: fmt.Sprintf("credentials expired while waiting for the transcript of %s", fileName)}
}

// KindOf returns the kind of a workflow error anywhere in err's chain, or "" if there is none.
func KindOf(err error) ErrorKind {
	var we *Error
	if errors.As(err, &we) {
		return we.Kind
	}
	return ""
}
