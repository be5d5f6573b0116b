package gateway

import (
	"errors"
	"fmt"
)

// Error kinds. Test with errors.Is against an error returned by the Gateway.
var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrUpload              = errors.New("upload failed")
	ErrChainCall           = errors.New("chain call failed")
	ErrMetadataUnavailable = errors.New("metadata unavailable")
)

// OpError records the gateway operation, the error kind and the underlying cause.
type OpError struct {
	Op   string
	Kind error
	Err  error
}

func (e *OpError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *OpError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func opErr(op string, kind, err error) error {
	return &OpError{Op: op, Kind: kind, Err: err}
}

// Kind returns the error kind of err, or nil when err did not come from the Gateway.
func Kind(err error) error {
	for _, k := range []error{ErrInvalidInput, ErrUpload, ErrChainCall, ErrMetadataUnavailable} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
