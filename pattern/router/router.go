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

// Package router implements ROUTER: prepends the source pipe's identity on
// recv, requires the first send frame to be the destination identity, and
// either fails with HostUnreachable or silently drops unroutable sends
// depending on Mandatory (spec.md §4.G).
package router

import (
	"github.com/google/uuid"

	"github.com/sabouaram/zmqcore/metrics"
	"github.com/sabouaram/zmqcore/msg"
	"github.com/sabouaram/zmqcore/pattern"
	"github.com/sabouaram/zmqcore/pipe"
	"github.com/sabouaram/zmqcore/zerror"
)

// Router is a pattern.Behavior identity-routing pipes by a byte-string key.
type Router struct {
	rot       pattern.Rotation
	byID      map[string]*pipe.Pipe
	mandatory bool
	metrics   *metrics.Collector

	recvPipe     *pipe.Pipe
	recvBody     bool
	sendPipe     *pipe.Pipe
	sendNeedsID  bool
	sendDropping bool
}

// New returns an empty Router.
func New() *Router {
	return &Router{byID: make(map[string]*pipe.Pipe), sendNeedsID: true}
}

// SetMetrics attaches a Collector used to record mandatory-mode
// HostUnreachable drops; a nil Collector (the default) makes this a no-op.
func (b *Router) SetMetrics(m *metrics.Collector) { b.metrics = m }

func (b *Router) XAttachPipe(p *pipe.Pipe, _ bool) {
	if len(p.Identity()) == 0 {
		if peerID := p.Peer().Identity(); len(peerID) > 0 {
			p.SetIdentity(peerID)
		} else {
			id := uuid.New()
			p.SetIdentity(id[:])
		}
	}
	b.byID[string(p.Identity())] = p
	b.rot.Add(p)
}

func (b *Router) XReadActivated(*pipe.Pipe)  {}
func (b *Router) XWriteActivated(*pipe.Pipe) {}

func (b *Router) XTerminated(p *pipe.Pipe) {
	b.rot.Remove(p)
	delete(b.byID, string(p.Identity()))
	if b.recvPipe == p {
		b.recvPipe = nil
		b.recvBody = false
	}
	if b.sendPipe == p {
		b.sendPipe = nil
	}
}

func (b *Router) XRecv(out *msg.Msg) error {
	if !b.recvBody {
		p := b.rot.SelectReadable()
		if p == nil {
			return zerror.New(zerror.Again, "no readable pipe")
		}
		b.recvPipe = p
		identity := msg.New(p.Identity())
		identity = identity.SetMore(true)
		*out = identity
		b.recvBody = true
		return nil
	}

	if !b.recvPipe.Read(out) {
		return zerror.New(zerror.Again, "no message payload available")
	}
	if !out.HasMore() {
		b.recvBody = false
	}
	return nil
}

func (b *Router) XSend(m msg.Msg) error {
	if b.sendNeedsID {
		id := m.Data()
		p, ok := b.byID[string(id)]
		if !ok {
			b.sendDropping = true
			b.sendNeedsID = false
			if b.mandatory {
				b.metrics.IncRouterUnreachable()
				return zerror.Newf(zerror.HostUnreachable, "no pipe for identity %x", id)
			}
			return nil
		}
		b.sendPipe = p
		b.sendDropping = false
		b.sendNeedsID = false
		return nil
	}

	if b.sendDropping {
		if !m.HasMore() {
			b.sendDropping = false
			b.sendNeedsID = true
		}
		return nil
	}

	if b.sendPipe == nil || !b.sendPipe.Write(m) {
		b.sendNeedsID = true
		return zerror.New(zerror.Again, "pipe refused write")
	}
	b.sendPipe.Flush()

	if !m.HasMore() {
		b.sendNeedsID = true
	}
	return nil
}

func (b *Router) XHasIn() bool  { return b.recvBody || b.rot.HasReadable() }
func (b *Router) XHasOut() bool { return b.rot.HasWritable() }

func (b *Router) XSetSockOpt(name string, value any) error {
	if name == "mandatory" {
		if v, ok := value.(bool); ok {
			b.mandatory = v
			return nil
		}
	}
	return zerror.Newf(zerror.Unknown, "router: unsupported option %q", name)
}
