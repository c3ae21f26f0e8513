package collector

import "errors"

var (
	ErrSourceUnavailable = errors.New("source unavailable")
	ErrInvalidSources    = errors.New("invalid sources file")
)
