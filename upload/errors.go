package upload

import (
	"fmt"
	"net/http"
)

// Kind classifies upload failures.
type Kind int

const (
	// NoFiles means the request carried no file.
	NoFiles Kind = iota
	// InvalidFile means the file or its name is unusable.
	InvalidFile
	// TooLarge means the file exceeds the configured size limit.
	TooLarge
	// UnsupportedType means the file extension is not allowed.
	UnsupportedType
	// Processing means the file was valid but could not be cleaned.
	Processing
)

// String returns the kind's name.
func (k Kind) String() string {
	switch k {
	case NoFiles:
		return "no files"
	case InvalidFile:
		return "invalid file"
	case TooLarge:
		return "too large"
	case UnsupportedType:
		return "unsupported type"
	case Processing:
		return "processing"
	default:
		return "unknown"
	}
}

// Status returns the HTTP status code reported for the kind.
func (k Kind) Status() int {
	switch k {
	case NoFiles, InvalidFile:
		return http.StatusBadRequest
	case TooLarge:
		return http.StatusRequestEntityTooLarge
	case UnsupportedType:
		return http.StatusUnsupportedMediaType
	default:
		return http.StatusInternalServerError
	}
}

// Error is an upload failure. Message is shown to the client as is.
type Error struct {
	Kind    Kind
	Message string
}

// Sentinel errors for use with errors.Is. They match any *Error of the
// same kind.
var (
	ErrNoFiles         = &Error{Kind: NoFiles}
	ErrInvalidFile     = &Error{Kind: InvalidFile}
	ErrTooLarge        = &Error{Kind: TooLarge}
	ErrUnsupportedType = &Error{Kind: UnsupportedType}
	ErrProcessing      = &Error{Kind: Processing}
)

func (e *Error) Error() string {
	if e.Message == "" {
		return "upload: " + e.Kind.String()
	}
	return e.Message
}

// Status returns the HTTP status code for the error.
func (e *Error) Status() int {
	return e.Kind.Status()
}

// Is reports whether target is a sentinel of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Message == "" && t.Kind == e.Kind
}

func newError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
