package gameserver

import (
	"errors"
	"fmt"
)

// Dispatch errors. Their messages are sent verbatim in error replies.
var (
	ErrNotConnected       = errors.New("Not connected")
	ErrAlreadyConnected   = errors.New("Already connected")
	ErrHostOnly           = errors.New("Host only")
	ErrInvalidPlayerCount = errors.New("Invalid player count")
)

// PlayerCountRangeError rejects a player count outside the configured bounds.
type PlayerCountRangeError struct {
	Min, Max int
}

func (e *PlayerCountRangeError) Error() string {
	return fmt.Sprintf("Player count must be %d-%d", e.Min, e.Max)
}
