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

// Package xpub implements XPUB: same routing as PUB, but subscription and
// unsubscription control frames are exposed to the user on recv instead of
// being purely internal (spec.md §4.G). Options: Verbose (expose duplicate
// subscriptions), Manual (suppress automatic trie update), WelcomeMessage
// (sent to each newly-attached pipe).
package xpub

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

// XPub is a pattern.Behavior.
type XPub struct {
	pipes   []*pipe.Pipe
	tr      *trie.Trie
	marked  []*pipe.Pipe
	sending bool

	verbose bool
	manual  bool
	welcome []byte

	pending []msg.Msg
}

// New returns an empty XPub.
func New() *XPub { return &XPub{tr: trie.New()} }

func (b *XPub) XAttachPipe(p *pipe.Pipe, _ bool) {
	b.pipes = append(b.pipes, p)
	if len(b.welcome) > 0 {
		w := msg.New(b.welcome)
		if p.Write(w) {
			p.Flush()
		}
	}
}

func (b *XPub) XReadActivated(p *pipe.Pipe) {
	var m msg.Msg
	for p.HasIn() {
		if !p.Read(&m) {
			return
		}
		data := m.Data()
		if len(data) == 0 {
			continue
		}
		kind, prefix := data[0], data[1:]

		newlyPresent := false
		if !b.manual {
			switch kind {
			case subSubscribe:
				newlyPresent = b.tr.Add(prefix, p)
			case subUnsubscribe:
				b.tr.Remove(prefix, p)
				newlyPresent = true // unsubscribes are always surfaced
			}
		} else {
			newlyPresent = true
		}

		if newlyPresent || b.verbose {
			b.pending = append(b.pending, msg.New(append([]byte{kind}, prefix...)))
		}
	}
}

func (b *XPub) XWriteActivated(*pipe.Pipe) {}

func (b *XPub) XTerminated(p *pipe.Pipe) {
	for i, pp := range b.pipes {
		if pp == p {
			b.pipes = append(b.pipes[:i], b.pipes[i+1:]...)
			break
		}
	}
	b.tr.RemoveHelper(p, func([]byte) {})
}

func (b *XPub) XSend(m msg.Msg) error {
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

func (b *XPub) XRecv(out *msg.Msg) error {
	if len(b.pending) == 0 {
		return zerror.New(zerror.Again, "no pending subscription notification")
	}
	*out = b.pending[0]
	b.pending = b.pending[1:]
	return nil
}

func (b *XPub) XHasIn() bool  { return len(b.pending) > 0 }
func (b *XPub) XHasOut() bool { return true }

func (b *XPub) XSetSockOpt(name string, value any) error {
	switch name {
	case "verbose":
		if v, ok := value.(bool); ok {
			b.verbose = v
			return nil
		}
	case "manual":
		if v, ok := value.(bool); ok {
			b.manual = v
			return nil
		}
	case "welcomemessage":
		if v, ok := value.([]byte); ok {
			b.welcome = v
			return nil
		}
	}
	return zerror.Newf(zerror.Unknown, "xpub: unsupported option %q", name)
}
