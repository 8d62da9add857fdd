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

// Package push implements the PUSH pattern: round-robin load-balance among
// writable pipes, skipping non-writable ones (spec.md §4.G).
package push

import (
	"github.com/sabouaram/zmqcore/msg"
	"github.com/sabouaram/zmqcore/pattern"
	"github.com/sabouaram/zmqcore/pipe"
	"github.com/sabouaram/zmqcore/zerror"
)

// Push is send-only: XRecv always fails.
type Push struct {
	rot pattern.Rotation
}

// New returns an empty Push.
func New() *Push { return &Push{} }

func (b *Push) XAttachPipe(p *pipe.Pipe, _ bool) { b.rot.Add(p) }
func (b *Push) XReadActivated(*pipe.Pipe)        {}
func (b *Push) XWriteActivated(*pipe.Pipe)       {}
func (b *Push) XTerminated(p *pipe.Pipe)         { b.rot.Remove(p) }

func (b *Push) XSend(m msg.Msg) error {
	p := b.rot.SelectWritable()
	if p == nil {
		return zerror.New(zerror.Again, "no writable pipe")
	}
	if !p.Write(m) {
		return zerror.New(zerror.Again, "pipe refused write")
	}
	p.Flush()
	return nil
}

func (b *Push) XRecv(*msg.Msg) error {
	return zerror.New(zerror.Fsm, "push sockets cannot receive")
}

func (b *Push) XHasIn() bool  { return false }
func (b *Push) XHasOut() bool { return b.rot.HasWritable() }

func (b *Push) XSetSockOpt(string, any) error {
	return zerror.New(zerror.Unknown, "push has no settable options")
}
