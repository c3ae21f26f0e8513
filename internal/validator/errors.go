package validator

import "errors"

var (
	// ErrUnknownScheme indicates a URI whose scheme is not a node protocol
	ErrUnknownScheme = errors.New("unknown scheme")

	// ErrMalformedNode indicates a URI that does not carry a usable endpoint
	ErrMalformedNode = errors.New("malformed node")
)
