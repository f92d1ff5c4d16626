package api

import "fmt"

// Error is a client-side transport or encoding failure.
type Error struct {
	Msg string
}

func (e *Error) Error() string {
	return fmt.Sprintf("crimson api: %s", e.Msg)
}

// ServerError is an error response reported by the server envelope.
type ServerError struct {
	Status int
	Msg    string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("crimson api: server error (%d): %s", e.Status, e.Msg)
}
