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

// Package pair implements the PAIR pattern: at most one attached pipe,
// send/recv go straight to it (spec.md §4.G).
package pair

import (
	"github.com/sabouaram/zmqcore/msg"
	"github.com/sabouaram/zmqcore/pipe"
	"github.com/sabouaram/zmqcore/zerror"
)

// Pair is a pattern.Behavior with a single slot.
type Pair struct {
	p *pipe.Pipe
}

// New returns an empty Pair.
func New() *Pair { return &Pair{} }

func (b *Pair) XAttachPipe(p *pipe.Pipe, _ bool) {
	// A second attach replaces the first, matching the reference
	// library's "at most one" rule rather than rejecting it outright.
	b.p = p
}

func (b *Pair) XReadActivated(*pipe.Pipe)  {}
func (b *Pair) XWriteActivated(*pipe.Pipe) {}

func (b *Pair) XTerminated(p *pipe.Pipe) {
	if b.p == p {
		b.p = nil
	}
}

func (b *Pair) XSend(m msg.Msg) error {
	if b.p == nil || !b.p.CheckWrite() {
		return zerror.New(zerror.Again, "no peer pipe attached")
	}
	if !b.p.Write(m) {
		return zerror.New(zerror.Again, "peer pipe refused write")
	}
	b.p.Flush()
	return nil
}

func (b *Pair) XRecv(out *msg.Msg) error {
	if b.p == nil || !b.p.HasIn() {
		return zerror.New(zerror.Again, "no message available")
	}
	if !b.p.Read(out) {
		return zerror.New(zerror.Again, "no message available")
	}
	return nil
}

func (b *Pair) XHasIn() bool  { return b.p != nil && b.p.HasIn() }
func (b *Pair) XHasOut() bool { return b.p != nil && b.p.CheckWrite() }

func (b *Pair) XSetSockOpt(string, any) error {
	return zerror.New(zerror.Unknown, "pair has no settable options")
}
