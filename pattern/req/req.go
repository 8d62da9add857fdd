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

// Package req implements REQ: strict [Send -> Recv -> Send -> ...] FSM, an
// empty envelope frame before the user payload on send, matching frame
// stripped on recv, with an optional per-request correlator (spec.md §4.G).
package req

import (
	"bytes"

	"github.com/google/uuid"

	"github.com/sabouaram/zmqcore/msg"
	"github.com/sabouaram/zmqcore/pattern"
	"github.com/sabouaram/zmqcore/pipe"
	"github.com/sabouaram/zmqcore/zerror"
)

type state int

const (
	sending state = iota
	receiving
)

// Req is a pattern.Behavior enforcing the REQ FSM.
type Req struct {
	rot        pattern.Rotation
	st         state
	correlate  bool
	lastPipe   *pipe.Pipe
	correlator []byte
	sendMore   bool
	recvMore   bool
}

// New returns a Req ready to send.
func New() *Req { return &Req{st: sending} }

func (b *Req) XAttachPipe(p *pipe.Pipe, _ bool) { b.rot.Add(p) }
func (b *Req) XReadActivated(*pipe.Pipe)        {}
func (b *Req) XWriteActivated(*pipe.Pipe)       {}

func (b *Req) XTerminated(p *pipe.Pipe) {
	b.rot.Remove(p)
	if b.lastPipe == p {
		b.lastPipe = nil
	}
}

func (b *Req) XSend(m msg.Msg) error {
	if b.st != sending {
		return zerror.New(zerror.Fsm, "req socket must recv before sending again")
	}

	if !b.sendMore {
		p := b.rot.SelectWritable()
		if p == nil {
			return zerror.New(zerror.Again, "no writable pipe")
		}
		b.lastPipe = p

		envelope := msg.Empty()
		if b.correlate {
			id := uuid.New()
			envelope = msg.New(id[:])
			b.correlator = append([]byte(nil), id[:]...)
		} else {
			b.correlator = nil
		}
		envelope = envelope.SetMore(true)
		if !p.Write(envelope) {
			return zerror.New(zerror.Again, "pipe refused envelope write")
		}
	}

	if b.lastPipe == nil || !b.lastPipe.Write(m) {
		return zerror.New(zerror.Again, "pipe refused write")
	}
	b.lastPipe.Flush()

	b.sendMore = m.HasMore()
	if !b.sendMore {
		b.st = receiving
	}
	return nil
}

func (b *Req) XRecv(out *msg.Msg) error {
	if b.st != receiving || b.lastPipe == nil {
		return zerror.New(zerror.Fsm, "req socket must send before receiving")
	}

	if !b.recvMore {
		var envelope msg.Msg
		if !b.lastPipe.Read(&envelope) {
			return zerror.New(zerror.Again, "no reply available")
		}
		if b.correlate && !bytes.Equal(envelope.Data(), b.correlator) {
			return zerror.New(zerror.Fsm, "reply correlator mismatch")
		}
	}

	if !b.lastPipe.Read(out) {
		return zerror.New(zerror.Again, "no reply payload available")
	}

	b.recvMore = out.HasMore()
	if !b.recvMore {
		b.st = sending
		b.sendMore = false
	}
	return nil
}

func (b *Req) XHasIn() bool  { return b.st == receiving && b.lastPipe != nil && b.lastPipe.HasIn() }
func (b *Req) XHasOut() bool { return b.st == sending && b.rot.HasWritable() }

func (b *Req) XSetSockOpt(name string, value any) error {
	if name == "correlate" {
		if v, ok := value.(bool); ok {
			b.correlate = v
			return nil
		}
	}
	return zerror.Newf(zerror.Unknown, "req: unsupported option %q", name)
}
