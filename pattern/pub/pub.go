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

// Package pub implements PUB: outbound only, matching each multi-part
// message against the subscription trie once on its first frame and
// distributing every frame to the same marked set of pipes (spec.md §4.G).
// Inbound subscription control frames from each attached pipe are consumed
// here and applied to the trie rather than ever surfacing to the user.
package pub

import (
	"github.com/sabouaram/zmqcore/msg"
	"github.com/sabouaram/zmqcore/pipe"
	"github.com/sabouaram/zmqcore/trie"
	"github.com/sabouaram/zmqcore/zerror"
)

const (
	subUnsubscribe byte = 0
	subSubscribe   byte = 1
)

// Pub is a pattern.Behavior; XReadActivated, called whenever a pipe's
// ReadActivated fires, feeds that pipe's pending subscription frames into
// the trie.
type Pub struct {
	pipes   []*pipe.Pipe
	tr      *trie.Trie
	marked  []*pipe.Pipe
	sending bool
}

// New returns an empty Pub.
func New() *Pub { return &Pub{tr: trie.New()} }

func (b *Pub) XAttachPipe(p *pipe.Pipe, _ bool) { b.pipes = append(b.pipes, p) }

func (b *Pub) XReadActivated(p *pipe.Pipe) { b.consumeSubscriptions(p) }

func (b *Pub) consumeSubscriptions(p *pipe.Pipe) {
	var m msg.Msg
	for p.HasIn() {
		if !p.Read(&m) {
			return
		}
		data := m.Data()
		if len(data) == 0 {
			continue
		}
		prefix := data[1:]
		switch data[0] {
		case subSubscribe:
			b.tr.Add(prefix, p)
		case subUnsubscribe:
			b.tr.Remove(prefix, p)
		}
	}
}

func (b *Pub) XWriteActivated(*pipe.Pipe) {}

func (b *Pub) XTerminated(p *pipe.Pipe) {
	for i, pp := range b.pipes {
		if pp == p {
			b.pipes = append(b.pipes[:i], b.pipes[i+1:]...)
			break
		}
	}
	b.tr.RemoveHelper(p, func([]byte) {})
}

func (b *Pub) XSend(m msg.Msg) error {
	if !b.sending {
		b.marked = b.marked[:0]
		b.tr.Match(m.Data(), func(p trie.Pipe) {
			b.marked = append(b.marked, p.(*pipe.Pipe))
		})
		b.sending = true
	}

	for _, p := range b.marked {
		if p.CheckWrite() {
			p.Write(m)
			p.Flush()
		}
	}

	if !m.HasMore() {
		b.sending = false
		b.marked = nil
	}
	return nil
}

func (b *Pub) XRecv(*msg.Msg) error {
	return zerror.New(zerror.Fsm, "pub sockets cannot receive")
}

func (b *Pub) XHasIn() bool  { return false }
func (b *Pub) XHasOut() bool { return true }

func (b *Pub) XSetSockOpt(name string, _ any) error {
	return zerror.Newf(zerror.Unknown, "pub: unsupported option %q", name)
}
