package validation

import (
	"errors"
	"fmt"
)

// ErrNotFound marks a referenced entity that does not exist (or is deleted).
var ErrNotFound = errors.New("not found")

// ErrNotImplemented marks an operation the system explicitly does not
// perform yet, as opposed to one that silently succeeds.
var ErrNotImplemented = errors.New("not implemented")

// Result is the uniform outcome envelope every public operation returns to
// API callers: either success with a message, or failure with the full list
// of problems found.
type Result struct {
	Success bool     `json:"success"`
	Message string   `json:"message,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

func OK(message string) *Result {
	return &Result{Success: true, Message: message}
}

func Fail(message string, errs ...string) *Result {
	return &Result{Success: false, Message: message, Errors: errs}
}

// Errors accumulates validation failures without short-circuiting, so a
// caller sees every problem with a request in one round trip.
type Errors struct {
	list []string
}

func (e *Errors) Add(msg string) {
	e.list = append(e.list, msg)
}

func (e *Errors) Addf(format string, args ...interface{}) {
	e.list = append(e.list, fmt.Sprintf(format, args...))
}

func (e *Errors) Empty() bool {
	return len(e.list) == 0
}

func (e *Errors) List() []string {
	return e.list
}

// Result converts the accumulated errors into a Result. An empty accumulator
// yields success with okMessage; otherwise failure with failMessage and the
// collected error list.
func (e *Errors) Result(okMessage, failMessage string) *Result {
	if e.Empty() {
		return OK(okMessage)
	}
	return Fail(failMessage, e.list...)
}
