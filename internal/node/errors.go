package node

import "errors"

var (
	ErrNoNodesAvailable = errors.New("no nodes available")
	ErrUnknownFormat    = errors.New("unknown export format")
)
