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

// Package rep implements REP: strict [Recv -> Send -> ...] FSM, remembering
// the stack of routing frames up to the empty delimiter from the last
// receive and prepending them on the next send (spec.md §4.G).
package rep

import (
	"github.com/sabouaram/zmqcore/msg"
	"github.com/sabouaram/zmqcore/pattern"
	"github.com/sabouaram/zmqcore/pipe"
	"github.com/sabouaram/zmqcore/zerror"
)

type state int

const (
	receiving state = iota
	sending
)

// Rep is a pattern.Behavior enforcing the REP FSM.
type Rep struct {
	rot        pattern.Rotation
	st         state
	sourcePipe *pipe.Pipe
	stack      []msg.Msg
	stackPos   int
	recvMore   bool
}

// New returns a Rep ready to receive.
func New() *Rep { return &Rep{st: receiving} }

func (b *Rep) XAttachPipe(p *pipe.Pipe, _ bool) { b.rot.Add(p) }
func (b *Rep) XReadActivated(*pipe.Pipe)        {}
func (b *Rep) XWriteActivated(*pipe.Pipe)       {}

func (b *Rep) XTerminated(p *pipe.Pipe) {
	b.rot.Remove(p)
	if b.sourcePipe == p {
		b.sourcePipe = nil
		b.st = receiving
	}
}

func (b *Rep) XRecv(out *msg.Msg) error {
	if b.st != receiving {
		return zerror.New(zerror.Fsm, "rep socket must send before receiving again")
	}

	if !b.recvMore {
		p := b.rot.SelectReadable()
		if p == nil {
			return zerror.New(zerror.Again, "no readable pipe")
		}
		b.sourcePipe = p
		b.stack = b.stack[:0]

		for {
			var frame msg.Msg
			if !p.Read(&frame) {
				return zerror.New(zerror.Again, "incomplete request, no delimiter observed")
			}
			if frame.Size() == 0 {
				break // empty frame is the envelope delimiter
			}
			b.stack = append(b.stack, frame)
			if !frame.HasMore() {
				// malformed request with no delimiter; treat as a single
				// frame request with an empty routing stack
				*out = frame
				b.stack = b.stack[:0]
				b.st = sending
				return nil
			}
		}
	}

	if !b.sourcePipe.Read(out) {
		return zerror.New(zerror.Again, "no request payload available")
	}
	b.recvMore = out.HasMore()
	if !b.recvMore {
		b.st = sending
	}
	return nil
}

func (b *Rep) XSend(m msg.Msg) error {
	if b.st != sending || b.sourcePipe == nil {
		return zerror.New(zerror.Fsm, "rep socket must receive before sending")
	}

	if b.stackPos == 0 {
		for _, frame := range b.stack {
			frame = frame.SetMore(true)
			if !b.sourcePipe.Write(frame) {
				return zerror.New(zerror.Again, "pipe refused routing frame write")
			}
		}
		envelope := msg.Empty()
		envelope = envelope.SetMore(true)
		if !b.sourcePipe.Write(envelope) {
			return zerror.New(zerror.Again, "pipe refused envelope write")
		}
		b.stackPos = 1
	}

	if !b.sourcePipe.Write(m) {
		return zerror.New(zerror.Again, "pipe refused write")
	}
	b.sourcePipe.Flush()

	if !m.HasMore() {
		b.stackPos = 0
		b.st = receiving
		b.recvMore = false
	}
	return nil
}

func (b *Rep) XHasIn() bool  { return b.st == receiving && b.rot.HasReadable() }
func (b *Rep) XHasOut() bool { return b.st == sending }

func (b *Rep) XSetSockOpt(name string, _ any) error {
	return zerror.Newf(zerror.Unknown, "rep: unsupported option %q", name)
}
