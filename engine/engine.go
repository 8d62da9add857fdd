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

// Package engine defines the transport-engine seam named in spec.md §6: the
// interface any transport (inproc, and in a future build TCP/PGM/IPC) must
// satisfy to plug into an I/O thread and a socket's Session. Exactly one
// concrete Engine ships in this module, engine/inproc, since inproc is the
// only fully in-scope transport (SPEC_FULL.md §7).
package engine

import (
	"github.com/sabouaram/zmqcore/iothread"
	"github.com/sabouaram/zmqcore/msg"
)

// Session is the socket-side peer an Engine talks to: it pushes received
// Msgs in and pulls outbound Msgs out, per spec.md §6's
// "push_msg(&msg)"/"pull_msg(&msg)" contract.
type Session interface {
	PushMsg(m msg.Msg) error
	PullMsg(out *msg.Msg) bool
	EngineError(err error)
}

// Engine is the required surface from transport engines (spec.md §6):
// plug into an I/O thread and a session, accept termination, and react to
// read/write readiness edges. ZapMsgAvailable is the ZAP (authentication)
// hook; inproc never authenticates so it is always a no-op there.
type Engine interface {
	Plug(th *iothread.Thread, sess Session) error
	Terminate()
	RestartInput()
	RestartOutput()
	ZapMsgAvailable()
}

// Dialer is the connect-side extension point: resolve addr to a plugged-in
// Engine. A future TCP/PGM engine registers here without touching core.
type Dialer interface {
	Dial(addr string) (Engine, error)
}

// Acceptor is the bind-side extension point, symmetric to Dialer.
type Acceptor interface {
	Accept(addr string) (Engine, error)
}
