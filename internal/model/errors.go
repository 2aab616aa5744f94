package model

import (
	"fmt"
	"strings"
)

// LineError is a failure attached to a single transaction row.
type LineError struct {
	Account string
	Lineno  int
	Msg     string
}

func (e *LineError) Error() string {
	return fmt.Sprintf("%s: line %d: %s", e.Account, e.Lineno, e.Msg)
}

// AccountError is a failure of a whole account/sheet.
type AccountError struct {
	Account string
	Msg     string
}

func (e *AccountError) Error() string {
	return fmt.Sprintf("%s: %s", e.Account, e.Msg)
}

// MultiError aggregates every outstanding failure at a stage boundary.
type MultiError struct {
	Errs []error
}

func (e *MultiError) Error() string {
	msgs := make([]string, len(e.Errs))
	for i, err := range e.Errs {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "\n")
}

func (e *MultiError) Unwrap() []error {
	return e.Errs
}

// Messages returns each aggregated message.
func (e *MultiError) Messages() []string {
	msgs := make([]string, len(e.Errs))
	for i, err := range e.Errs {
		msgs[i] = err.Error()
	}
	return msgs
}

// Append adds err to m, flattening nested MultiErrors. A nil m is allocated.
func (e *MultiError) Append(err error) *MultiError {
	if err == nil {
		return e
	}
	if e == nil {
		e = &MultiError{}
	}
	if me, ok := err.(*MultiError); ok {
		e.Errs = append(e.Errs, me.Errs...)
		return e
	}
	e.Errs = append(e.Errs, err)
	return e
}

// ErrOrNil returns e as an error, or nil when nothing was collected.
func (e *MultiError) ErrOrNil() error {
	if e == nil || len(e.Errs) == 0 {
		return nil
	}
	return e
}

// PromoteLineErrors copies every line-level message into the account's
// errors, prefixed with its line number. Messages already promoted are not
// duplicated.
func PromoteLineErrors(a *Account) {
	seen := make(map[string]bool, len(a.Errors))
	for _, e := range a.Errors {
		seen[e] = true
	}
	for _, l := range a.Lines {
		for _, msg := range l.Errors {
			m := lineMessage(l.Lineno, msg)
			if !seen[m] {
				seen[m] = true
				a.Errors = append(a.Errors, m)
			}
		}
	}
}

// Failures lists everything outstanding on an account by kind: an
// *AccountError per account message, then a *LineError per line message.
// Account messages that are promoted copies of line messages are not
// repeated.
func Failures(a Account) []error {
	promoted := make(map[string]bool)
	var lineErrs []error
	for _, l := range a.Lines {
		for _, msg := range l.Errors {
			promoted[lineMessage(l.Lineno, msg)] = true
			lineErrs = append(lineErrs, &LineError{Account: a.Name, Lineno: l.Lineno, Msg: msg})
		}
	}
	var errs []error
	for _, m := range a.Errors {
		if !promoted[m] {
			errs = append(errs, &AccountError{Account: a.Name, Msg: m})
		}
	}
	return append(errs, lineErrs...)
}

func lineMessage(lineno int, msg string) string {
	return fmt.Sprintf("line %d: %s", lineno, msg)
}
