package pdf

import "context"

// Converter defines the interface for converting rendered HTML into a
// PDF document. baseURL, when non-empty, is the directory URI that
// relative asset references in the HTML resolve against.
type Converter interface {
	Convert(ctx context.Context, html string, baseURL string) ([]byte, error)
	// Close releases any resources held by the converter
	Close() error
}

// ErrorKind distinguishes asset-resolution failures from rendering
// failures so callers can surface the difference.
type ErrorKind string

const (
	KindURLFetch ErrorKind = "URL_FETCH"
	KindRender   ErrorKind = "RENDER"
)

// ConversionError represents an error during HTML to PDF conversion
type ConversionError struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *ConversionError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ConversionError) Unwrap() error {
	return e.Cause
}

// NewConversionError creates a new ConversionError
func NewConversionError(kind ErrorKind, message string, cause error) *ConversionError {
	return &ConversionError{Kind: kind, Message: message, Cause: cause}
}
