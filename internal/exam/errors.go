package exam

import (
	"errors"
	"fmt"
)

// ErrorCode classifies domain failures so the API layer can map them to
// HTTP statuses without string matching.
type ErrorCode string

const (
	CodeNotFound          ErrorCode = "NOT_FOUND"
	CodeAlreadyScored     ErrorCode = "ALREADY_SCORED"
	CodeExamUnavailable   ErrorCode = "EXAM_UNAVAILABLE"
	CodeInvalidSubmission ErrorCode = "INVALID_SUBMISSION"
	CodeEmptyExam         ErrorCode = "EMPTY_EXAM"
)

type Error struct {
	Code    ErrorCode
	Message string
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %s", e.Code, e.Message) }

func NewError(code ErrorCode, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

func Errorf(code ErrorCode, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf returns the domain code carried by err, or "" for infrastructure
// failures.
func CodeOf(err error) ErrorCode {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}
