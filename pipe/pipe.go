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

// Package pipe implements the bi-directional, flow-controlled conduit
// between a socket and its peer (another socket, for inproc, or an engine
// session for every other transport). Two Pipes share two underlying
// YPipes crosswise; state changes that must be observed by the peer cross
// as Commands delivered to the peer owner's mailbox, never as direct
// synchronous calls, even though this implementation keeps a direct Go
// pointer to the peer Pipe rather than the source's handle-indexed arena —
// Go's garbage collector removes the memory-safety motivation for handles,
// so ordering, not addressing, is what the mailbox hop still buys here.
package pipe

import (
	"sync/atomic"

	"github.com/sabouaram/zmqcore/cmd"
	"github.com/sabouaram/zmqcore/msg"
	"github.com/sabouaram/zmqcore/ypipe"
)

// MaxWatermarkDelta bounds how far LWM trails HWM (spec.md §4.C).
const MaxWatermarkDelta = 1024

// DeriveLWM computes the low watermark from a high watermark per spec.md
// §4.C: large enough a gap that readers don't bounce credit on every
// message, small enough that the pipe refills before the writer goes idle.
func DeriveLWM(hwm uint64) uint64 {
	if hwm > 2*MaxWatermarkDelta {
		return hwm - MaxWatermarkDelta
	}
	return (hwm + 1) / 2
}

// Sink receives pipe lifecycle notifications. A SocketBase/pattern behavior
// implements this to react to peer-driven state changes.
type Sink interface {
	Terminated(p *Pipe)
	Hiccuped(p *Pipe)
	ReadActivated(p *Pipe)
	WriteActivated(p *Pipe)
}

var idSeq uint64

// Pipe is one endpoint of a bi-directional conduit. Fields are only ever
// mutated by the goroutine that owns this endpoint — either directly
// (Read/Write/Flush/Terminate) or indirectly via Apply* methods invoked
// while draining a Command from the owner's mailbox.
type Pipe struct {
	id   uint64
	peer *Pipe

	out *ypipe.YPipe[msg.Msg] // this side writes here
	in  *ypipe.YPipe[msg.Msg] // this side reads from here

	hwm      uint64 // 0 means unbounded (spec.md §9 Open Question ii)
	lwm      uint64
	written  uint64 // messages this side has written (completed, non-more frame)
	peerRead uint64 // peer's last-announced msgs_read count (credit)
	msgsRead uint64

	unflushed uint64 // completed messages written since the last Flush

	outActive bool
	inActive  bool

	state State
	delay bool // delay-on-close: on PipeTerm, wait for the peer's delimiter to be read before closing

	sink     Sink
	identity []byte

	deliver func(cmd.Command) // enqueues onto the peer owner's mailbox
}

// PipePair builds two Pipes sharing two YPipes crosswise and wires each as
// the other's peer. hwm[0]/delay[0] configure p1's outbound flow control;
// hwm[1]/delay[1] configure p2's. Each side's LWM, which paces the credit it
// returns for what it reads, is derived from the other side's HWM.
func PipePair(hwm [2]uint64, delay [2]bool) (p1, p2 *Pipe) {
	ab := ypipe.New[msg.Msg]()
	ba := ypipe.New[msg.Msg]()

	p1 = &Pipe{
		id: atomic.AddUint64(&idSeq, 1), out: ab, in: ba,
		hwm: hwm[0], lwm: DeriveLWM(hwm[1]), outActive: true, inActive: true,
		state: Active, delay: delay[0],
	}
	p2 = &Pipe{
		id: atomic.AddUint64(&idSeq, 1), out: ba, in: ab,
		hwm: hwm[1], lwm: DeriveLWM(hwm[0]), outActive: true, inActive: true,
		state: Active, delay: delay[1],
	}
	p1.peer = p2
	p2.peer = p1
	return p1, p2
}

// ID returns this endpoint's identifier, stable for its lifetime.
func (p *Pipe) ID() uint64 { return p.id }

// Peer returns the other endpoint of the pair.
func (p *Pipe) Peer() *Pipe { return p.peer }

// SetSink installs the event sink notified of Terminated/Hiccuped/
// ReadActivated/WriteActivated.
func (p *Pipe) SetSink(s Sink) { p.sink = s }

// SetDeliver wires the function used to enqueue Commands destined for the
// peer's owner (typically peerOwnerMailbox.Send).
func (p *Pipe) SetDeliver(fn func(cmd.Command)) { p.deliver = fn }

// Identity returns the peer-visible identity blob attached to this pipe, if
// any (ROUTER/DEALER).
func (p *Pipe) Identity() []byte { return p.identity }

// SetIdentity attaches a peer-visible identity blob to this pipe.
func (p *Pipe) SetIdentity(id []byte) { p.identity = id }

// State returns the current point in the termination FSM.
func (p *Pipe) State() State { return p.state }

// MsgsWritten returns how many complete messages this side has written.
func (p *Pipe) MsgsWritten() uint64 { return p.written }

// PeerMsgsRead returns the peer's last-announced read count (our write
// credit).
func (p *Pipe) PeerMsgsRead() uint64 { return p.peerRead }

func (p *Pipe) sendPeer(k cmd.Kind, payload any) {
	if p.deliver == nil {
		return
	}
	p.deliver(cmd.Command{Kind: k, Src: p, Payload: payload})
}

// CheckWrite reports whether Write would currently succeed, without
// consuming anything. Outbound write is refused when written-peerRead
// equals a non-zero HWM, or once this side has written its own delimiter.
func (p *Pipe) CheckWrite() bool {
	if p.state == Delimited || p.state == WaitingForCompleteClose || p.state == Closed {
		return false
	}
	if !p.outActive {
		return false
	}
	if p.hwm == 0 {
		return true
	}
	if p.written-p.peerRead >= p.hwm {
		p.outActive = false
		return false
	}
	return true
}

// Write appends m to the outbound queue without publishing it; call Flush
// to make it visible to the peer. Returns false if CheckWrite currently
// refuses (HWM exhausted and no credit returned yet, or pipe closing).
func (p *Pipe) Write(m msg.Msg) bool {
	if !p.CheckWrite() {
		return false
	}
	p.out.Write(m)
	if !m.HasMore() {
		p.written++
		p.unflushed++
	}
	return true
}

// Flush publishes every Write since the last Flush. If the peer had marked
// itself asleep, it sends ActivateRead so the peer's reactor wakes up.
func (p *Pipe) Flush() {
	if p.out == nil {
		return
	}
	p.unflushed = 0
	if p.out.Flush() {
		p.sendPeer(cmd.ActivateRead, nil)
	}
}

// Read pulls the next user-visible Msg, returning false if none is
// available or the pipe cannot currently be read from. A delimiter is
// never surfaced to the caller; observing one drives the termination FSM
// instead.
func (p *Pipe) Read(out *msg.Msg) bool {
	if p.state != Active && p.state != WaitingForDelimiter {
		return false
	}
	if !p.inActive {
		return false
	}

	v, ok := p.in.TryRead()
	if !ok {
		return false
	}

	if v.IsDelimiter() {
		switch p.state {
		case Active:
			p.state = Delimited
		case WaitingForDelimiter:
			p.state = WaitingForCompleteClose
			p.applyCompleteTerm()
		}
		return false
	}

	if !v.HasMore() {
		p.msgsRead++
		if p.lwm > 0 && p.msgsRead%p.lwm == 0 {
			p.sendPeer(cmd.ActivateWrite, cmd.ActivatePayload{Count: p.msgsRead})
		}
	}

	*out = v
	return true
}

// HasIn reports whether Read would currently have a chance to return data;
// it is a cheap readiness probe used by patterns' fair-queue loops.
func (p *Pipe) HasIn() bool {
	if p.state != Active && p.state != WaitingForDelimiter {
		return false
	}
	return p.inActive && p.in.CheckRead()
}

// Terminate begins user-initiated shutdown of this endpoint. delay==true
// asks to keep waiting (if already WaitingForDelimiter) for the peer's
// delimiter before forcing closed; delay==false always forces the close
// sequence immediately.
func (p *Pipe) Terminate(delay bool) {
	switch p.state {
	case Active:
		p.closeOutbound(delay)
	case WaitingForDelimiter:
		if !delay {
			p.closeOutbound(delay)
		}
	default:
		// already terminating or closed: no-op, convergence is guaranteed
		// by the FSM regardless of call order.
	}
}

func (p *Pipe) closeOutbound(delay bool) {
	if p.unflushed > 0 {
		p.out.Rollback()
		p.written -= p.unflushed
		p.unflushed = 0
	}
	p.out.Write(msg.NewDelimiter())
	p.out.Flush()
	p.sendPeer(cmd.PipeTerm, delay)
	p.state = WaitingForCompleteClose
	p.applyCompleteTerm()
}

// ApplyPeerTerm is invoked when draining a PipeTerm Command raised by the
// peer (process_PipeTerm, spec.md §4.C).
func (p *Pipe) ApplyPeerTerm(peerDelay bool) {
	switch p.state {
	case Active:
		if p.delay {
			p.state = WaitingForDelimiter
		} else {
			p.state = WaitingForCompleteClose
			p.applyCompleteTerm()
		}
	case Delimited:
		p.state = WaitingForCompleteClose
		p.applyCompleteTerm()
	default:
	}
}

// applyCompleteTerm is the self-scheduled PipeCompleteTerm transition: drop
// the outbound queue, drain and release whatever remains inbound, notify
// the sink, and converge on Closed. It is idempotent.
func (p *Pipe) applyCompleteTerm() {
	if p.state == Closed {
		return
	}
	p.out = nil
	p.outActive = false

	if p.in != nil {
		for {
			m, ok := p.in.TryRead()
			if !ok {
				break
			}
			m.Close()
		}
	}
	p.in = nil
	p.inActive = false
	p.state = Closed

	if p.sink != nil {
		p.sink.Terminated(p)
	}
}

// ApplyHiccup is invoked when draining a Hiccup Command: the peer rebound
// and is handing us a fresh inbound queue on its side, which becomes our
// new outbound queue. Any messages written but not yet flushed against the
// old queue are discarded and written is decremented to match.
func (p *Pipe) ApplyHiccup(newOut any) {
	yp, ok := newOut.(*ypipe.YPipe[msg.Msg])
	if !ok {
		return
	}
	if p.unflushed > 0 {
		p.written -= p.unflushed
		p.unflushed = 0
	}
	p.out = yp
	p.outActive = true
	p.peerRead = 0

	if p.sink != nil {
		p.sink.Hiccuped(p)
	}
}

// Hiccup creates a fresh inbound queue locally and hands it to the peer via
// a Hiccup Command, per spec.md §4.C.
func (p *Pipe) Hiccup() {
	fresh := ypipe.New[msg.Msg]()
	p.in = fresh
	p.inActive = true
	p.msgsRead = 0
	p.sendPeer(cmd.Hiccup, cmd.HiccupPayload{Pipe: fresh})
}

// ApplyActivateWrite is invoked when draining an ActivateWrite Command: the
// peer has read up to count messages and is returning that much credit.
func (p *Pipe) ApplyActivateWrite(count uint64) {
	p.peerRead = count
	p.outActive = true
	if p.sink != nil {
		p.sink.WriteActivated(p)
	}
}

// ApplyActivateRead is invoked when draining an ActivateRead Command: the
// peer flushed while we were asleep; re-check for data.
func (p *Pipe) ApplyActivateRead() {
	p.inActive = true
	if p.sink != nil {
		p.sink.ReadActivated(p)
	}
}

// Apply dispatches a Command raised by this Pipe's peer to the matching
// Apply* method. The owner's command-processing loop calls this after
// resolving Command.Src (the remote Pipe) back to its local peer.
func (p *Pipe) Apply(c cmd.Command) {
	switch c.Kind {
	case cmd.PipeTerm:
		delay, _ := c.Payload.(bool)
		p.ApplyPeerTerm(delay)
	case cmd.Hiccup:
		if hp, ok := c.Payload.(cmd.HiccupPayload); ok {
			p.ApplyHiccup(hp.Pipe)
		} else {
			p.ApplyHiccup(c.Payload)
		}
	case cmd.ActivateWrite:
		if ap, ok := c.Payload.(cmd.ActivatePayload); ok {
			p.ApplyActivateWrite(ap.Count)
		}
	case cmd.ActivateRead:
		p.ApplyActivateRead()
	}
}
