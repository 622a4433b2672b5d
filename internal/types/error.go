package types

import "fmt"

// CustomError carries an HTTP-mappable status code, a caller-facing message
// and a dotted error type string (e.g. "documents.validation.extension").
type CustomError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

func (e *CustomError) Error() string {
	return fmt.Sprintf("%d: %s [type: %s]", e.Code, e.Message, e.Type)
}

// Taxonomy constructors. Every error the services return belongs to one of
// these kinds; the global error handler maps Code straight to the HTTP status.

func Unauthenticated(message, errorType string) *CustomError {
	return &CustomError{Code: 401, Message: message, Type: errorType}
}

func Forbidden(message, errorType string) *CustomError {
	return &CustomError{Code: 403, Message: message, Type: errorType}
}

func NotFound(message, errorType string) *CustomError {
	return &CustomError{Code: 404, Message: message, Type: errorType}
}

func Validation(message, errorType string) *CustomError {
	return &CustomError{Code: 400, Message: message, Type: errorType}
}

func Conflict(message, errorType string) *CustomError {
	return &CustomError{Code: 409, Message: message, Type: errorType}
}

func Internal(message, errorType string) *CustomError {
	return &CustomError{Code: 500, Message: message, Type: errorType}
}
