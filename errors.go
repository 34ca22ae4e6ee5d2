// Copyright (c) 2025-2026, Kay Dederichs and contributors
//
// SPDX-License-Identifier: Apache-2.0

package form

import (
	"errors"
	"fmt"
	"strings"
)

// ErrAlreadySubmitted is returned when a structural or submitting operation
// runs on a node that has already been submitted.
var ErrAlreadySubmitted = errors.New("form already submitted")

// Diagnostics attached to a leaf when submitted input has a shape the leaf
// cannot accept. These exact strings are part of the observable contract.
const (
	diagArrayGiven = "Submitted data was expected to be text or number, array given."
	diagFileGiven  = "Submitted data was expected to be text or number, file upload given."
	diagCompound   = "Compound forms expect an array or NULL on submission."
)

// Error is a node-local error message destined for end users.
type Error struct {
	Message string
	Cause   error
}

// NewError creates an Error with the given user-facing message.
func NewError(message string) *Error {
	return &Error{Message: message}
}

func (e *Error) Error() string { return e.Message }

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error { return e.Cause }

// TransformationFailure records a recovered reverse-transform error during
// submission. Its message is a diagnostic for developers and validators, not
// safe to show to end users.
type TransformationFailure struct {
	Message string
	Cause   error
}

func (t *TransformationFailure) Error() string { return t.Message }

// Unwrap returns the underlying transformer error, if any.
func (t *TransformationFailure) Unwrap() error { return t.Cause }

// errorEntry is either an own error or a named nested sub-list, never both.
type errorEntry struct {
	err    *Error
	name   string
	nested *ErrorList
}

// ErrorList is the aggregated error view of a subtree. Entries are either
// errors of the node itself or, when built deep and unflattened, one nested
// list per child that has errors anywhere below it.
type ErrorList struct {
	entries []errorEntry
}

// Len returns the number of entries, counting each nested list as one.
func (l *ErrorList) Len() int { return len(l.entries) }

// Errors returns the own-error entries in order, skipping nested lists.
func (l *ErrorList) Errors() []*Error {
	var out []*Error
	for _, e := range l.entries {
		if e.err != nil {
			out = append(out, e.err)
		}
	}
	return out
}

// Nested returns the named sub-list at the given entry position, or nil when
// the entry is an own error.
func (l *ErrorList) Nested(i int) (string, *ErrorList) {
	e := l.entries[i]
	return e.name, e.nested
}

// Flatten expands every nested entry recursively into one flat list,
// preserving order.
func (l *ErrorList) Flatten() *ErrorList {
	out := &ErrorList{}
	for _, e := range l.entries {
		if e.err != nil {
			out.entries = append(out.entries, e)
			continue
		}
		out.entries = append(out.entries, e.nested.Flatten().entries...)
	}
	return out
}

// String renders the list as plain text. Own errors render one per line as
// "ERROR: <message>"; nested entries render their name as a label followed by
// the sub-list indented by four spaces, recursively.
func (l *ErrorList) String() string {
	var sb strings.Builder
	for _, e := range l.entries {
		if e.err != nil {
			fmt.Fprintf(&sb, "ERROR: %s\n", e.err.Message)
			continue
		}

		fmt.Fprintf(&sb, "%s:\n", e.name)
		for line := range strings.Lines(e.nested.String()) {
			sb.WriteString("    ")
			sb.WriteString(line)
		}
	}
	return sb.String()
}

// AddError appends an error to this node's own errors. Children's errors are
// never copied up; aggregation happens on demand via Errors.
func (f *Form) AddError(e *Error) {
	f.errors = append(f.errors, e)
}

// OwnErrors returns this node's own errors in insertion order.
func (f *Form) OwnErrors() []*Error {
	return append([]*Error(nil), f.errors...)
}

// Errors returns the aggregated error view.
//
// With deep false only this node's own errors are returned. With deep and
// flatten the result is one flat sequence: this node's errors followed by
// every descendant's in depth-first, child-insertion order. With deep and not
// flatten each child holding errors anywhere in its subtree contributes one
// nested entry labeled with its name; empty subtrees are omitted.
func (f *Form) Errors(deep, flatten bool) *ErrorList {
	out := &ErrorList{}
	for _, e := range f.errors {
		out.entries = append(out.entries, errorEntry{err: e})
	}

	if !deep {
		return out
	}

	for _, name := range f.order {
		child := f.children[name]
		sub := child.Errors(true, flatten)
		if sub.Len() == 0 {
			continue
		}

		if flatten {
			out.entries = append(out.entries, sub.entries...)
		} else {
			out.entries = append(out.entries, errorEntry{name: name, nested: sub})
		}
	}

	return out
}

// ClearErrors discards this node's own errors and, when deep, every
// descendant's own errors as well.
func (f *Form) ClearErrors(deep bool) {
	f.errors = nil

	if !deep {
		return
	}

	for _, name := range f.order {
		f.children[name].ClearErrors(true)
	}
}

// Failure returns the transformation failure recorded during Submit, or nil
// when the node's submitted value transformed cleanly.
func (f *Form) Failure() *TransformationFailure { return f.failure }
