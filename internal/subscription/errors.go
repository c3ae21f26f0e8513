package subscription

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedType      = errors.New("unsupported proxy type")
	ErrIncompleteDescriptor = errors.New("incomplete proxy descriptor")
	ErrMalformedPayload     = errors.New("malformed structured payload")
	ErrNoDescriptors        = errors.New("no proxy descriptors")
	ErrMalformedBase64      = errors.New("malformed base64")
	ErrUnchanged            = errors.New("decoding had no effect")
	ErrNoHiddenNodes        = errors.New("decoding uncovered no new nodes")
	ErrNoNodes              = errors.New("no nodes found")
	ErrPlainNodeText        = errors.New("payload already holds plain node lines")
)

// ConvertError reports why a descriptor produced no URI.
type ConvertError struct {
	Type string
	Err  error
}

func (e *ConvertError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("convert: %v", e.Err)
	}
	return fmt.Sprintf("convert %s: %v", e.Type, e.Err)
}

func (e *ConvertError) Unwrap() error { return e.Err }

// DecodeError reports why a decode strategy yielded nothing.
type DecodeError struct {
	Strategy Strategy
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s strategy: %v", e.Strategy, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
