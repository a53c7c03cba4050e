// Package playerr carries the single rejection type produced while resolving
// a player's action. A rejected action leaves the game document untouched.
package playerr

import (
	"errors"
	"fmt"

	"redplanet.games/internal/protocol"
)

type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return e.Code + ": " + e.Message
}

func New(code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

func Newf(code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CardPlay is the common "this decision is not valid against the live state" rejection.
func CardPlay(format string, args ...any) *Error {
	return Newf(protocol.ErrCardPlay, format, args...)
}

func As(err error) (*Error, bool) {
	var pe *Error
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// CodeOf maps any error to a wire code.
func CodeOf(err error) string {
	if err == nil {
		return ""
	}
	if pe, ok := As(err); ok {
		return pe.Code
	}
	return protocol.ErrInternal
}
