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

// Package pattern declares the per-socket-type routing contract
// (spec.md §4.F final paragraph, §4.G) and hosts one subpackage per
// concrete pattern: pair, push, pull, req, rep, dealer, router, pub, sub,
// xpub, xsub.
package pattern

import (
	"github.com/sabouaram/zmqcore/msg"
	"github.com/sabouaram/zmqcore/pipe"
)

// Behavior is what zsocket.Socket delegates all pattern-specific routing
// decisions to. Implementations never touch a mailbox or the user-facing
// API directly; zsocket.Socket owns those and calls into Behavior purely to
// decide which pipe(s) participate in a given send/recv.
type Behavior interface {
	// XAttachPipe registers a newly attached pipe. subscribe is true when
	// the pipe is itself a SUB/XSUB-style subscriber needing a replay of
	// any already-active subscription list (PUB/XPUB only).
	XAttachPipe(p *pipe.Pipe, subscribe bool)

	// XReadActivated and XWriteActivated mirror pipe.Sink callbacks,
	// letting round-robin/fair-queue patterns track which pipes currently
	// participate in rotation.
	XReadActivated(p *pipe.Pipe)
	XWriteActivated(p *pipe.Pipe)

	// XTerminated removes p from whatever internal bookkeeping the
	// pattern keeps (rotation lists, subscription trie, REP routing
	// stack keyed by identity).
	XTerminated(p *pipe.Pipe)

	// XSend attempts to route m per the pattern's FSM and writes it to the
	// selected pipe(s). Returns zerror.Fsm if the pattern's state machine
	// forbids sending now, zerror.Again if no pipe can currently accept
	// the message.
	XSend(m msg.Msg) error

	// XRecv attempts to pull the next message per the pattern's fair-queue
	// or routing rule. Returns zerror.Again if nothing is available,
	// zerror.Fsm if the pattern forbids receiving now.
	XRecv(out *msg.Msg) error

	// XHasIn/XHasOut report whether a recv/send would currently succeed
	// without blocking, used by the poller to decide readiness.
	XHasIn() bool
	XHasOut() bool

	// XSetSockOpt applies a pattern-specific option (e.g. ROUTER's
	// Mandatory, XPUB's Verbose/Manual/WelcomeMessage).
	XSetSockOpt(name string, value any) error
}
