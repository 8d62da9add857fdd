/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package zerror classifies every failure the core can surface into one of
// the fixed kinds from the transport spec (Again, Terminating, Fsm, ...),
// each carrying an optional parent chain and the call-site that raised it.
package zerror

import (
	"errors"
	"fmt"
	"runtime"
)

// Kind is a numeric error classification, similar in spirit to an HTTP
// status code: a small closed set rather than an open string space.
type Kind uint16

const (
	// Unknown is the zero Kind, used only as a fallback.
	Unknown Kind = iota
	// Again signals a non-blocking operation found no progress possible;
	// safe to retry.
	Again
	// Terminating signals the context is shutting down; the operation will
	// never succeed again on this handle.
	Terminating
	// HostUnreachable signals a mandatory ROUTER could not route a message.
	HostUnreachable
	// Fsm signals the pattern's finite state machine disallows the
	// operation in its current state.
	Fsm
	// AddressAlreadyInUse signals a bind collision.
	AddressAlreadyInUse
	// EndpointNotFound signals an inproc connect found no registered peer.
	EndpointNotFound
	// AddressInvalid signals a malformed address string.
	AddressInvalid
	// ProtocolNotSupported signals an unrecognized transport scheme.
	ProtocolNotSupported
	// TooManyOpenSockets signals the context's socket-count limit was hit.
	TooManyOpenSockets
	// Fault signals an internal invariant was violated.
	Fault
)

var kindNames = map[Kind]string{
	Unknown:               "unknown",
	Again:                 "resource temporarily unavailable",
	Terminating:           "context is terminating",
	HostUnreachable:       "host unreachable",
	Fsm:                   "operation not valid in current state",
	AddressAlreadyInUse:   "address already in use",
	EndpointNotFound:      "endpoint not found",
	AddressInvalid:        "invalid address",
	ProtocolNotSupported:  "protocol not supported",
	TooManyOpenSockets:    "too many open sockets",
	Fault:                 "internal fault",
}

// String returns the human-readable name of k.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Error is the error type returned from every package-level API call. It
// carries a Kind, a message, an optional parent chain, and the file/line it
// was raised at.
type Error struct {
	kind   Kind
	msg    string
	parent []error
	file   string
	line   int
}

// New builds an Error of the given kind with the given message and optional
// parent errors.
func New(k Kind, msg string, parent ...error) *Error {
	file, line := caller()
	return &Error{kind: k, msg: msg, parent: parent, file: file, line: line}
}

// Newf is New with fmt.Sprintf-style formatting.
func Newf(k Kind, pattern string, args ...any) *Error {
	return New(k, fmt.Sprintf(pattern, args...))
}

func caller() (string, int) {
	_, file, line, ok := runtime.Caller(2)
	if !ok {
		return "", 0
	}
	return file, line
}

// Kind returns the error's classification.
func (e *Error) Kind() Kind { return e.kind }

// Is reports whether e's kind matches target's kind, satisfying errors.Is.
func (e *Error) Is(target error) bool {
	var o *Error
	if errors.As(target, &o) {
		return o.kind == e.kind
	}
	return false
}

// Unwrap exposes the parent chain to errors.Is/errors.As.
func (e *Error) Unwrap() []error { return e.parent }

// Error implements the error interface.
func (e *Error) Error() string {
	if e.file != "" {
		return fmt.Sprintf("%s: %s (%s:%d)", e.kind, e.msg, e.file, e.line)
	}
	return fmt.Sprintf("%s: %s", e.kind, e.msg)
}

// Is reports whether err carries the given Kind anywhere in its chain.
func Is(err error, k Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	if e.kind == k {
		return true
	}
	for _, p := range e.parent {
		if Is(p, k) {
			return true
		}
	}
	return false
}

// KindOf returns the Kind carried by err, or Unknown if err is not (or does
// not wrap) an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	return Unknown
}
