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

// Package inproc is the one fully in-scope engine.Engine implementation
// (SPEC_FULL.md §7): a Pipe endpoint wrapped to satisfy the Engine
// interface, with no OS socket and no I/O-thread readiness registration,
// since both sides of an inproc pair observe each other's writes
// synchronously through the shared YPipe cells.
package inproc

import (
	"github.com/sabouaram/zmqcore/engine"
	"github.com/sabouaram/zmqcore/iothread"
	"github.com/sabouaram/zmqcore/msg"
	"github.com/sabouaram/zmqcore/pipe"
)

// Engine wraps one end of an inproc Pipe pair, making it satisfy
// engine.Engine so bind/connect can be expressed uniformly with whatever
// future transport engine is added alongside it.
type Engine struct {
	p    *pipe.Pipe
	sess engine.Session
}

var _ engine.Engine = (*Engine)(nil)

// NewPair allocates a Pipe pair and returns both ends wrapped as Engines,
// the bind side first. hwm/delay are the same per-side flow-control knobs
// PipePair takes.
func NewPair(hwm [2]uint64, delay [2]bool) (bindSide, connectSide *Engine) {
	p1, p2 := pipe.PipePair(hwm, delay)
	return &Engine{p: p1}, &Engine{p: p2}
}

// Pipe exposes the wrapped endpoint directly; zsocket attaches to it rather
// than routing traffic through Session, since inproc needs no additional
// buffering between the pipe and the socket that owns it.
func (e *Engine) Pipe() *pipe.Pipe { return e.p }

// Plug implements engine.Engine. th is unused: inproc never registers with
// an I/O thread's poller, it has no file descriptor to wait on.
func (e *Engine) Plug(_ *iothread.Thread, sess engine.Session) error {
	e.sess = sess
	return nil
}

// Terminate implements engine.Engine.
func (e *Engine) Terminate() {
	e.p.Terminate(false)
}

// RestartInput implements engine.Engine. A no-op: an inproc Pipe has no
// separate input-stalled state to resume, credit flows through
// ApplyActivateRead/Write directly.
func (e *Engine) RestartInput() {}

// RestartOutput implements engine.Engine, symmetric to RestartInput.
func (e *Engine) RestartOutput() {}

// ZapMsgAvailable implements engine.Engine. Inproc never authenticates.
func (e *Engine) ZapMsgAvailable() {}

// PushMsg writes m to the wrapped pipe's outbound side and flushes
// immediately, returning false if the pipe refuses the write. Engine does not
// implement engine.Session: this PushMsg reports a bool, not an error.
func (e *Engine) PushMsg(m msg.Msg) bool {
	if !e.p.Write(m) {
		return false
	}
	e.p.Flush()
	return true
}

// PullMsg reads the next inbound Msg, mirroring PushMsg.
func (e *Engine) PullMsg(out *msg.Msg) bool {
	return e.p.Read(out)
}
