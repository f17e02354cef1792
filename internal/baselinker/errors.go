package baselinker

import "fmt"

// TransportError wraps a network-level failure: the request never produced
// a usable API response.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("baselinker transport: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// APIError is a response the API itself rejected (status != SUCCESS).
type APIError struct {
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("baselinker api: %s", e.Message)
}

// DecodeError marks a response whose overall shape could not be decoded.
// Failures of individual records are skipped at the parser, not raised.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("baselinker decode: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
