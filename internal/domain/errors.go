package domain

import (
	"errors"
	"fmt"
)

var (
	ErrSiteNotFound   = errors.New("site not found")
	ErrSecretNotFound = errors.New("secret not found")
)

// Panel failure categories. Every typed error below matches exactly one of
// these through errors.Is.
var (
	ErrTransport    = errors.New("panel transport failure")
	ErrStructure    = errors.New("unexpected panel page structure")
	ErrFormat       = errors.New("malformed panel value")
	ErrUpload       = errors.New("panel rejected upload")
	ErrVerification = errors.New("certificate verification failed")
)

// TransportError reports a failed request or a non-success HTTP status.
type TransportError struct {
	Op         string
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s %s: status %d", e.Op, e.URL, e.StatusCode)
	default:
		return fmt.Sprintf("%s %s: transport failure", e.Op, e.URL)
	}
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// StructureError means an expected element was missing from a panel page,
// which usually means the vendor changed the UI.
type StructureError struct {
	Page    string
	Element string
}

func (e *StructureError) Error() string {
	return fmt.Sprintf("%s: missing %s", e.Page, e.Element)
}

func (e *StructureError) Is(target error) bool { return target == ErrStructure }

type FormatError struct {
	Field string
	Value string
	Err   error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed %s %q: %v", e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("malformed %s %q", e.Field, e.Value)
}

func (e *FormatError) Unwrap() error { return e.Err }

func (e *FormatError) Is(target error) bool { return target == ErrFormat }

// UploadError carries the message the panel returned when it refused an upload.
type UploadError struct {
	Message string
}

func (e *UploadError) Error() string {
	if e.Message == "" {
		return "error uploading certificate"
	}
	return "error uploading certificate: " + e.Message
}

func (e *UploadError) Is(target error) bool { return target == ErrUpload }

// VerificationError is returned when the upload went through but the panel
// does not report the submitted material afterwards.
type VerificationError struct {
	Component string
	Reason    string
}

func (e *VerificationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s was not updated on server: %s", e.Component, e.Reason)
	}
	return fmt.Sprintf("%s was not updated on server", e.Component)
}

func (e *VerificationError) Is(target error) bool { return target == ErrVerification }
