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

// Package dealer implements DEALER: round-robin send like PUSH, fair-queue
// recv like PULL, no frames added (spec.md §4.G).
package dealer

import (
	"github.com/sabouaram/zmqcore/msg"
	"github.com/sabouaram/zmqcore/pattern"
	"github.com/sabouaram/zmqcore/pipe"
	"github.com/sabouaram/zmqcore/zerror"
)

// Dealer is a pattern.Behavior combining PUSH-style send and PULL-style
// recv over the same pipe set.
type Dealer struct {
	rot pattern.Rotation
}

// New returns an empty Dealer.
func New() *Dealer { return &Dealer{} }

func (b *Dealer) XAttachPipe(p *pipe.Pipe, _ bool) { b.rot.Add(p) }
func (b *Dealer) XReadActivated(*pipe.Pipe)        {}
func (b *Dealer) XWriteActivated(*pipe.Pipe)       {}
func (b *Dealer) XTerminated(p *pipe.Pipe)         { b.rot.Remove(p) }

func (b *Dealer) XSend(m msg.Msg) error {
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

func (b *Dealer) XRecv(out *msg.Msg) error {
	p := b.rot.SelectReadable()
	if p == nil {
		return zerror.New(zerror.Again, "no readable pipe")
	}
	if !p.Read(out) {
		return zerror.New(zerror.Again, "no message available")
	}
	return nil
}

func (b *Dealer) XHasIn() bool  { return b.rot.HasReadable() }
func (b *Dealer) XHasOut() bool { return b.rot.HasWritable() }

func (b *Dealer) XSetSockOpt(string, any) error {
	return zerror.New(zerror.Unknown, "dealer has no settable options")
}
