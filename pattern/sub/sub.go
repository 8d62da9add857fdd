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

// Package sub implements SUB: inbound only, with subscribe/unsubscribe
// emitting subscription control frames to every attached pipe and a
// reconnecting pipe automatically receiving the full subscription list
// again (spec.md §4.G). Subscribe/Unsubscribe are exposed through
// XSetSockOpt rather than widening pattern.Behavior.
package sub

import (
	"bytes"

	"github.com/sabouaram/zmqcore/msg"
	"github.com/sabouaram/zmqcore/pattern"
	"github.com/sabouaram/zmqcore/pipe"
	"github.com/sabouaram/zmqcore/zerror"
)

const (
	subUnsubscribe byte = 0
	subSubscribe   byte = 1
)

// Sub is a pattern.Behavior that is recv-only.
type Sub struct {
	pipes []*pipe.Pipe
	rot   pattern.Rotation
	subs  [][]byte
}

// New returns a Sub with no active subscriptions.
func New() *Sub { return &Sub{} }

func (b *Sub) XAttachPipe(p *pipe.Pipe, _ bool) {
	b.pipes = append(b.pipes, p)
	b.rot.Add(p)
	for _, prefix := range b.subs {
		b.emit(p, subSubscribe, prefix)
	}
}

func (b *Sub) emit(p *pipe.Pipe, kind byte, prefix []byte) {
	frame := msg.New(append([]byte{kind}, prefix...))
	if p.Write(frame) {
		p.Flush()
	}
}

func (b *Sub) XReadActivated(*pipe.Pipe)  {}
func (b *Sub) XWriteActivated(*pipe.Pipe) {}

func (b *Sub) XTerminated(p *pipe.Pipe) {
	b.rot.Remove(p)
	for i, pp := range b.pipes {
		if pp == p {
			b.pipes = append(b.pipes[:i], b.pipes[i+1:]...)
			break
		}
	}
}

func (b *Sub) XSend(msg.Msg) error {
	return zerror.New(zerror.Fsm, "sub sockets cannot send user messages")
}

func (b *Sub) XRecv(out *msg.Msg) error {
	p := b.rot.SelectReadable()
	if p == nil {
		return zerror.New(zerror.Again, "no readable pipe")
	}
	if !p.Read(out) {
		return zerror.New(zerror.Again, "no message available")
	}
	return nil
}

func (b *Sub) XHasIn() bool  { return b.rot.HasReadable() }
func (b *Sub) XHasOut() bool { return false }

// XSetSockOpt implements "subscribe"/"unsubscribe" (value is the topic
// prefix as []byte).
func (b *Sub) XSetSockOpt(name string, value any) error {
	prefix, ok := value.([]byte)
	if !ok {
		return zerror.Newf(zerror.Unknown, "sub: %q requires a []byte prefix", name)
	}

	switch name {
	case "subscribe":
		for _, s := range b.subs {
			if bytes.Equal(s, prefix) {
				return nil
			}
		}
		b.subs = append(b.subs, prefix)
		for _, p := range b.pipes {
			b.emit(p, subSubscribe, prefix)
		}
		return nil
	case "unsubscribe":
		for i, s := range b.subs {
			if bytes.Equal(s, prefix) {
				b.subs = append(b.subs[:i], b.subs[i+1:]...)
				break
			}
		}
		for _, p := range b.pipes {
			b.emit(p, subUnsubscribe, prefix)
		}
		return nil
	default:
		return zerror.Newf(zerror.Unknown, "sub: unsupported option %q", name)
	}
}
