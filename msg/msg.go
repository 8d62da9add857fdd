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

// Package msg defines the single message value type exchanged across pipes
// and sockets: a byte payload plus a small flag set, moved by value semantics
// between one owner and the next.
package msg

import "sync/atomic"

// Flag is a bitmask carried alongside a Msg payload.
type Flag uint8

const (
	// FlagMore marks every frame of a multi-part message except the last.
	FlagMore Flag = 1 << iota
	// FlagCommand marks an engine-internal out-of-band frame (never user data).
	FlagCommand
	// FlagIdentity marks a ROUTER/DEALER identity frame.
	FlagIdentity
	// FlagCredential marks a ZAP credential frame.
	FlagCredential
	// FlagDelimiter marks the pipe-termination sentinel; never user-visible.
	FlagDelimiter
)

var seq uint64

// nextID hands out a monotonic id used only for log/metric correlation.
// It never appears on the wire.
func nextID() uint64 {
	return atomic.AddUint64(&seq, 1)
}

// Msg is a single discrete unit of data: either a direct byte buffer, an
// empty "join" marker, or a delimiter. A Msg is owned by exactly one holder
// at a time; moving it into a Pipe or Socket transfers that ownership. Use
// Close at most once per holder to avoid double-release of the backing
// buffer.
type Msg struct {
	id     uint64
	data   []byte
	flags  Flag
	closed bool
}

// Empty constructs a zero-length Msg with no flags set.
func Empty() Msg {
	return Msg{id: nextID()}
}

// New constructs a Msg copying the given payload. The caller's slice is not
// retained, so the caller may reuse or mutate it immediately afterward.
func New(data []byte) Msg {
	buf := make([]byte, len(data))
	copy(buf, data)
	return Msg{id: nextID(), data: buf}
}

// NewDelimiter returns the sentinel Msg used to announce end-of-stream on a
// pipe's outbound queue. A delimiter carries no payload.
func NewDelimiter() Msg {
	return Msg{id: nextID(), flags: FlagDelimiter}
}

// Size returns the number of payload bytes carried by m.
func (m Msg) Size() int { return len(m.data) }

// Data returns the payload bytes. The returned slice must not be retained
// past the Msg's lifetime if the caller also calls Close.
func (m Msg) Data() []byte { return m.data }

// Flags returns the flag bitmask.
func (m Msg) Flags() Flag { return m.flags }

// SetFlags replaces the flag bitmask, returning the updated value (Msg is a
// plain value type; callers reassign the result).
func (m Msg) SetFlags(f Flag) Msg {
	m.flags = f
	return m
}

// HasMore reports whether more frames follow this one in the same
// multi-part message.
func (m Msg) HasMore() bool { return m.flags&FlagMore != 0 }

// SetMore returns a copy of m with FlagMore set or cleared.
func (m Msg) SetMore(more bool) Msg {
	if more {
		m.flags |= FlagMore
	} else {
		m.flags &^= FlagMore
	}
	return m
}

// IsDelimiter reports whether m is the pipe-termination sentinel.
func (m Msg) IsDelimiter() bool { return m.flags&FlagDelimiter != 0 }

// ID returns the internal monotonic identifier used for log/metric
// correlation only; it is never part of the wire representation.
func (m Msg) ID() uint64 { return m.id }

// Close releases m's backing buffer. Calling Close twice on the same
// (copied) Msg value is a no-op after the first, matching the idempotent
// close/dispose property required of the whole library.
func (m *Msg) Close() {
	if m.closed {
		return
	}
	m.closed = true
	m.data = nil
}
