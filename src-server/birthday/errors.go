package birthday

import "errors"

// Code is the machine-readable reason of a failed operation.
type Code string

const (
	CodeInvalidEventName   Code = "INVALID_EVENT_NAME"
	CodePastDateNotAllowed Code = "PAST_DATE_NOT_ALLOWED"
	CodeEventPassed        Code = "EVENT_PASSED"
	CodeTooManyRSVPs       Code = "TOO_MANY_RSVPS"
	CodeTooManyComments    Code = "TOO_MANY_COMMENTS"
	CodeInvalidComment     Code = "INVALID_COMMENT"
	CodeUnauthorized       Code = "UNAUTHORIZED"
	CodeCommentNotFound    Code = "COMMENT_NOT_FOUND"
	CodeEventNotFound      Code = "EVENT_NOT_FOUND"
	CodeInvalidDate        Code = "INVALID_DATE"
)

// Error is a business-rule violation. Every failure of this package is one of
// the sentinels below; they are expected outcomes, not crashes.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is reports whether target is a domain error with the same code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

var (
	ErrInvalidEventName   = &Error{Code: CodeInvalidEventName, Message: "Event name must be 1-32 bytes"}
	ErrPastDateNotAllowed = &Error{Code: CodePastDateNotAllowed, Message: "Event date must be in the future"}
	ErrEventPassed        = &Error{Code: CodeEventPassed, Message: "Event has already passed"}
	ErrTooManyRSVPs       = &Error{Code: CodeTooManyRSVPs, Message: "Maximum 5 RSVPs allowed for this event"}
	ErrTooManyComments    = &Error{Code: CodeTooManyComments, Message: "Maximum 5 comments allowed for this event"}
	ErrInvalidComment     = &Error{Code: CodeInvalidComment, Message: "Comment content must be 1-500 bytes"}
	ErrUnauthorized       = &Error{Code: CodeUnauthorized, Message: "Only comment author can delete"}
	ErrCommentNotFound    = &Error{Code: CodeCommentNotFound, Message: "Comment not found"}

	// Raised by the store when a key doesn't resolve to a record.
	ErrEventNotFound = &Error{Code: CodeEventNotFound, Message: "Event not found"}
	// Raised by front ends that accept human-readable dates.
	ErrInvalidDate = &Error{Code: CodeInvalidDate, Message: "Invalid date format"}
)

// CodeOf returns the domain code carried by err, or "" if err isn't a domain
// error.
func CodeOf(err error) Code {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ""
}
