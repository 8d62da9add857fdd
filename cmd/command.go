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

// Package cmd defines the Command tagged variant that is the only mechanism
// by which cross-thread state mutation happens in this library: every
// change to pipe, socket, or I/O-thread state crosses a thread boundary as a
// Command delivered through a mailbox.
package cmd

import "fmt"

// Kind identifies which variant a Command carries. Handlers switch on Kind
// rather than relying on virtual dispatch, giving exhaustive compile-time
// checks over the small fixed set the spec defines.
type Kind uint8

const (
	Stop Kind = iota
	Plug
	Own
	Attach
	Bind
	ActivateRead
	ActivateWrite
	Hiccup
	PipeTerm
	PipeTermAck
	PipeCompleteTerm
	TermReq
	TermAck
	Reap
	Reaped
	InprocConnected
	Done
)

var kindNames = [...]string{
	"Stop", "Plug", "Own", "Attach", "Bind", "ActivateRead", "ActivateWrite",
	"Hiccup", "PipeTerm", "PipeTermAck", "PipeCompleteTerm", "TermReq",
	"TermAck", "Reap", "Reaped", "InprocConnected", "Done",
}

// String implements fmt.Stringer for log output.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Destination identifies the target slot a Command is routed to; it mirrors
// the spec's "destination thread id" and is resolved by the context's slot
// table.
type Destination uint32

// Source is an opaque handle to the object that raised the Command; the
// target's handler type-asserts it back to whatever concrete type it
// expects for that Kind.
type Source any

// Command is a small immutable value: a destination, a source, a Kind, and
// a Kind-specific payload. Payload shapes below (HiccupPayload, etc.) are
// the typed variants the spec's "small typed payload" line refers to.
type Command struct {
	Dst     Destination
	Src     Source
	Kind    Kind
	Payload any
}

// HiccupPayload carries the replacement inbound queue handle sent by
// Pipe.Hiccup to the peer (spec.md §4.C Hiccup).
type HiccupPayload struct {
	// Pipe is the new YPipe-backed endpoint (typed as `any` here to avoid an
	// import cycle with the generic ypipe package; pipe.Pipe type-asserts
	// it back to its concrete *ypipe.YPipe[msg.Msg]).
	Pipe any
}

// ActivatePayload carries the new read/write count for ActivateRead /
// ActivateWrite commands (spec.md §4.C read/write path).
type ActivatePayload struct {
	Count uint64
}

// AttachPayload carries the pipe endpoint and its peer-visible identity for
// an Attach command sent from a socket to its session/engine.
type AttachPayload struct {
	PipeID   uint64
	Identity []byte
}

// BindPayload carries the resolved address a Bind command is plugging in
// for.
type BindPayload struct {
	Addr string
}

// ReapedPayload carries the identity of the socket that finished
// finalizing, sent from the reaper back to the context.
type ReapedPayload struct {
	SocketID uint32
}
