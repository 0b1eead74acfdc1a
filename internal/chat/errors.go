package chat

import "errors"

var (
	// ErrNotFound is returned when the requested chat does not exist.
	ErrNotFound = errors.New("chat not found")

	// ErrLastChat is returned when deleting the only remaining chat.
	// The last chat can be cleared, never deleted.
	ErrLastChat = errors.New("cannot delete the last remaining chat")

	// ErrInvalidRole is returned when appending a message with a role
	// other than user or assistant.
	ErrInvalidRole = errors.New("invalid message role")
)
