package sessionerrors

import "errors"

// Room lookup sentinel errors. Used by both the lobby and ws packages to
// avoid circular imports.
var (
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomClosed   = errors.New("room closed")
	ErrRoomFull     = errors.New("room full")
	ErrInvalidToken = errors.New("invalid rejoin token")
)
