package core

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures reported back to the originating connection.
type ErrorKind string

const (
	KindInvalidArgument ErrorKind = "InvalidArgument"
	KindRoomNotFound    ErrorKind = "RoomNotFound"
	KindNotAMember      ErrorKind = "NotAMember"
	KindAlreadyClosed   ErrorKind = "AlreadyClosed"
	KindRateLimited     ErrorKind = "RateLimited"
	KindBadPayload      ErrorKind = "BadPayload"
	KindUnauthenticated ErrorKind = "Unauthenticated"
	KindInternal        ErrorKind = "Internal"
)

// Error is an intent failure. Two errors match under errors.Is when their kinds match.
type Error struct {
	Kind   ErrorKind
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return string(e.Kind)
	}
	return string(e.Kind) + ": " + e.Detail
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func Errorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

var (
	ErrInvalidArgument = &Error{Kind: KindInvalidArgument}
	ErrEmptyMessage    = &Error{Kind: KindInvalidArgument, Detail: "empty message"}
	ErrRoomNotFound    = &Error{Kind: KindRoomNotFound}
	ErrNotAMember      = &Error{Kind: KindNotAMember}
	ErrAlreadyClosed   = &Error{Kind: KindAlreadyClosed, Detail: "connection closed"}
	ErrRateLimited     = &Error{Kind: KindRateLimited, Detail: "too many messages"}
	ErrUnauthenticated = &Error{Kind: KindUnauthenticated}

	// ErrBackpressure is returned by SignalConnection.TrySend when the outbound queue is full.
	ErrBackpressure = errors.New("backpressure")
	// ErrConnClosed is returned by SignalConnection.TrySend after Close.
	ErrConnClosed = errors.New("connection closed")
)

// KindOf extracts the kind of err, KindInternal for foreign errors.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
