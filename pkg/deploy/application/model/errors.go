package model

import (
	"fmt"
	"strings"
)

// Error is the single fatal pipeline failure kind.
type Error struct {
	Reason      string
	Remediation []string
	cause       error
}

func NewError(reason string, remediation ...string) *Error {
	return &Error{Reason: reason, Remediation: remediation}
}

func WrapError(cause error, reason string, remediation ...string) *Error {
	return &Error{Reason: reason, Remediation: remediation, cause: cause}
}

func (e *Error) Error() string {
	if e.cause == nil {
		return e.Reason
	}
	return e.Reason + ": " + e.cause.Error()
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Hint renders remediation lines as a numbered list.
func (e *Error) Hint() string {
	var sb strings.Builder
	for i, line := range e.Remediation {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "%d. %s", i+1, line)
	}
	return sb.String()
}
