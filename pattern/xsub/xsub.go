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

// Package xsub implements XSUB: same routing as SUB, but the user sends
// raw subscription control bytes directly through XSend rather than through
// a dedicated sockopt (spec.md §4.G).
package xsub

import (
	"github.com/sabouaram/zmqcore/msg"
	"github.com/sabouaram/zmqcore/pattern"
	"github.com/sabouaram/zmqcore/pipe"
	"github.com/sabouaram/zmqcore/zerror"
)

// XSub is a pattern.Behavior.
type XSub struct {
	pipes []*pipe.Pipe
	rot   pattern.Rotation
}

// New returns an empty XSub.
func New() *XSub { return &XSub{} }

func (b *XSub) XAttachPipe(p *pipe.Pipe, _ bool) {
	b.pipes = append(b.pipes, p)
	b.rot.Add(p)
}

func (b *XSub) XReadActivated(*pipe.Pipe)  {}
func (b *XSub) XWriteActivated(*pipe.Pipe) {}

func (b *XSub) XTerminated(p *pipe.Pipe) {
	b.rot.Remove(p)
	for i, pp := range b.pipes {
		if pp == p {
			b.pipes = append(b.pipes[:i], b.pipes[i+1:]...)
			break
		}
	}
}

// XSend broadcasts a raw subscription/unsubscription frame (user-supplied,
// first byte 0 or 1) to every attached pipe.
func (b *XSub) XSend(m msg.Msg) error {
	for _, p := range b.pipes {
		if p.CheckWrite() {
			p.Write(m)
			p.Flush()
		}
	}
	return nil
}

func (b *XSub) XRecv(out *msg.Msg) error {
	p := b.rot.SelectReadable()
	if p == nil {
		return zerror.New(zerror.Again, "no readable pipe")
	}
	if !p.Read(out) {
		return zerror.New(zerror.Again, "no message available")
	}
	return nil
}

func (b *XSub) XHasIn() bool  { return b.rot.HasReadable() }
func (b *XSub) XHasOut() bool { return true }

func (b *XSub) XSetSockOpt(name string, _ any) error {
	return zerror.Newf(zerror.Unknown, "xsub: unsupported option %q", name)
}
