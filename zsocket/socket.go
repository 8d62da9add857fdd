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

// Package zsocket implements SocketBase: the state that owns pipes, applies
// per-pattern routing through a pattern.Behavior, handles send/receive
// blocking and timeouts, and mediates between the user thread and the
// reactor thread (spec.md §4.F). For the one fully in-scope transport,
// inproc, Session degenerates to direct pipe attachment through the
// context's endpoint directory — there is no separate engine object.
package zsocket

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sabouaram/zmqcore/cmd"
	"github.com/sabouaram/zmqcore/engine/inproc"
	"github.com/sabouaram/zmqcore/mailbox"
	"github.com/sabouaram/zmqcore/msg"
	"github.com/sabouaram/zmqcore/pattern"
	"github.com/sabouaram/zmqcore/pipe"
	"github.com/sabouaram/zmqcore/zaddr"
	"github.com/sabouaram/zmqcore/zctx"
	"github.com/sabouaram/zmqcore/zerror"
	"github.com/sabouaram/zmqcore/zoptions"
)

// Flag carries per-call send/recv modifiers (spec.md §4.F).
type Flag int

const (
	// DontWait fails with Again instead of blocking when the pattern has
	// no pipe ready.
	DontWait Flag = 1 << iota
	// SendMore marks the message as a non-final frame of a multi-part
	// message (mirrors msg.FlagMore but at the API boundary).
	SendMore
)

type lifecycle int32

const (
	active lifecycle = iota
	terminating
	reaped
)

// Socket is SocketBase: single-threaded from the user's side, driven
// internally by a mailbox-delivered command stream plus a pattern.Behavior
// that owns the actual routing decisions.
type Socket struct {
	id       uint32
	typeName string
	behavior pattern.Behavior
	opt      zoptions.Options
	mbox     *mailbox.Mailbox
	dir      *zctx.EndpointDirectory
	log      *logrus.Entry

	mu        sync.Mutex
	cond      *sync.Cond
	pipes     []*pipe.Pipe
	state     lifecycle
	boundAddr string

	reapedCh chan struct{}
	reapOnce sync.Once
	ready    chan struct{}
}

// New builds a Socket of the given type name (used only for logging/
// metrics correlation) around behavior, using opt as its immutable Options
// snapshot and dir as the directory inproc bind/connect resolves against.
func New(id uint32, typeName string, behavior pattern.Behavior, opt zoptions.Options, dir *zctx.EndpointDirectory, log *logrus.Logger) *Socket {
	if log == nil {
		log = logrus.New()
	}
	s := &Socket{
		id:       id,
		typeName: typeName,
		behavior: behavior,
		opt:      opt,
		mbox:     mailbox.New(),
		dir:      dir,
		log:      log.WithFields(logrus.Fields{"component": "zsocket", "type": typeName, "id": id}),
		reapedCh: make(chan struct{}),
		ready:    make(chan struct{}, 1),
	}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// ID implements zctx.Socket.
func (s *Socket) ID() uint32 { return s.id }

// Reaped implements zctx.Socket: closed once the socket has fully
// finalized (all pipes Closed, mailbox drained one last time).
func (s *Socket) Reaped() <-chan struct{} { return s.reapedCh }

// Mailbox exposes the command inbox for Context.SendCommand routing.
func (s *Socket) Mailbox() *mailbox.Mailbox { return s.mbox }

// Readiness returns a channel the poller package selects on to learn this
// socket may have become readable or writable; it fires on every pipe
// attach/detach/activation edge, matching the reactor's "deliver readiness,
// let the caller decide" contract (spec.md §9 Poller event handlers).
func (s *Socket) Readiness() <-chan struct{} { return s.ready }

func (s *Socket) wake() {
	s.cond.Broadcast()
	select {
	case s.ready <- struct{}{}:
	default:
	}
}

// AttachPipe wires a newly created pipe end into this socket: installs
// itself as the pipe.Sink and hands the pipe to the pattern.Behavior.
// subscribe is forwarded unchanged to XAttachPipe (PUB/XPUB replay rule).
func (s *Socket) AttachPipe(p *pipe.Pipe, subscribe bool) {
	s.mu.Lock()
	s.pipes = append(s.pipes, p)
	s.mu.Unlock()

	p.SetSink(s)
	p.SetDeliver(func(c cmd.Command) { p.Peer().Apply(c) })
	s.behavior.XAttachPipe(p, subscribe)

	s.mu.Lock()
	s.wake()
	s.mu.Unlock()
}

// --- pipe.Sink ---

// Terminated implements pipe.Sink.
func (s *Socket) Terminated(p *pipe.Pipe) {
	s.mu.Lock()
	for i, pp := range s.pipes {
		if pp == p {
			s.pipes = append(s.pipes[:i], s.pipes[i+1:]...)
			break
		}
	}
	remaining := len(s.pipes)
	st := s.state
	s.mu.Unlock()

	s.behavior.XTerminated(p)

	s.mu.Lock()
	s.wake()
	s.mu.Unlock()

	if st == terminating && remaining == 0 {
		s.finalize()
	}
}

// Hiccuped implements pipe.Sink; no pattern-visible effect by itself, the
// replaced outbound queue is transparent to routing state.
func (s *Socket) Hiccuped(*pipe.Pipe) {}

// ReadActivated implements pipe.Sink.
func (s *Socket) ReadActivated(p *pipe.Pipe) {
	s.behavior.XReadActivated(p)
	s.mu.Lock()
	s.wake()
	s.mu.Unlock()
}

// WriteActivated implements pipe.Sink.
func (s *Socket) WriteActivated(p *pipe.Pipe) {
	s.behavior.XWriteActivated(p)
	s.mu.Lock()
	s.wake()
	s.mu.Unlock()
}

// --- send/recv ---

// Send pushes m through the pattern-selected outbound pipe. Blocks on the
// socket's mailbox-state condition until a pipe accepts it, DontWait is
// set, or opt.SendTimeout elapses, per spec.md §4.F.
func (s *Socket) Send(m msg.Msg, flags Flag) error {
	if flags&SendMore != 0 {
		m = m.SetMore(true)
	}
	return s.waitLoop(flags, s.opt.SendTimeout, func() error { return s.behavior.XSend(m) })
}

// Recv pulls the next message per the pattern's routing rule, symmetric to
// Send.
func (s *Socket) Recv(out *msg.Msg, flags Flag) error {
	return s.waitLoop(flags, s.opt.RecvTimeout, func() error { return s.behavior.XRecv(out) })
}

func (s *Socket) waitLoop(flags Flag, timeout time.Duration, attempt func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != active {
		return zerror.New(zerror.Terminating, "socket is terminating")
	}

	var deadline time.Time
	hasDeadline := timeout > 0
	if hasDeadline {
		deadline = time.Now().Add(timeout)
	}

	for {
		s.mu.Unlock()
		err := attempt()
		s.mu.Lock()

		if err == nil {
			return nil
		}
		if zerror.KindOf(err) != zerror.Again {
			return err
		}
		if flags&DontWait != 0 {
			return err
		}
		if s.state != active {
			return zerror.New(zerror.Terminating, "socket is terminating")
		}

		if hasDeadline {
			remaining := time.Until(deadline)
			if remaining <= 0 {
				return zerror.New(zerror.Again, "timed out")
			}
			timer := time.AfterFunc(remaining, func() {
				s.mu.Lock()
				s.cond.Broadcast()
				s.mu.Unlock()
			})
			s.cond.Wait()
			timer.Stop()
		} else {
			s.cond.Wait()
		}
	}
}

// --- lifecycle ---

// Stop drives every attached pipe to Terminate; once the last one reports
// Terminated (or there were none to begin with) the socket finalizes and
// closes Reaped. Idempotent.
func (s *Socket) Stop() {
	s.mu.Lock()
	if s.state != active {
		s.mu.Unlock()
		return
	}
	s.state = terminating
	pipes := append([]*pipe.Pipe(nil), s.pipes...)
	s.cond.Broadcast()
	s.mu.Unlock()

	if len(pipes) == 0 {
		s.finalize()
		return
	}
	for _, p := range pipes {
		p.Terminate(false)
	}
}

func (s *Socket) finalize() {
	s.reapOnce.Do(func() {
		s.mbox.DrainAll()
		s.mbox.Close()
		s.mu.Lock()
		s.state = reaped
		s.mu.Unlock()
		close(s.reapedCh)
	})
}

// ProcessCommands drains the mailbox, dispatching every pending Command to
// its target's Apply method (spec.md §4.F process_commands). timeout<0
// blocks until at least one command arrives; 0 never blocks.
func (s *Socket) ProcessCommands(timeout time.Duration) {
	type applier interface{ Apply(cmd.Command) }

	// A Command raised by a Pipe targets that Pipe's local peer.
	apply := func(c cmd.Command) {
		if src, ok := c.Src.(*pipe.Pipe); ok {
			src.Peer().Apply(c)
			return
		}
		if a, ok := c.Src.(applier); ok {
			a.Apply(c)
		}
	}

	c, err := s.mbox.Recv(timeout)
	if err != nil {
		return
	}
	apply(c)
	for _, c := range s.mbox.DrainAll() {
		apply(c)
	}
}

// --- bind/connect (inproc only; the sole fully in-scope transport) ---

// Bind registers addr in the endpoint directory so a later Connect can
// allocate a Pipe pair in-place and attach both ends without any OS socket.
func (s *Socket) Bind(addr string) error {
	if s.dir == nil {
		return zerror.Newf(zerror.ProtocolNotSupported, "no endpoint directory configured")
	}
	if _, err := zaddr.RequireSupported(addr); err != nil {
		return err
	}

	err := s.dir.Register(addr, zctx.Endpoint{
		Attach: func(hwm [2]uint64, delay [2]bool) (*pipe.Pipe, error) {
			bindSide, connectSide := inproc.NewPair(hwm, delay)
			if err := bindSide.Plug(nil, nil); err != nil {
				return nil, err
			}
			s.AttachPipe(bindSide.Pipe(), true)
			return connectSide.Pipe(), nil
		},
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.boundAddr = addr
	s.mu.Unlock()
	return nil
}

// Connect resolves addr in the endpoint directory and attaches the
// returned Pipe end to this socket.
func (s *Socket) Connect(addr string) error {
	if s.dir == nil {
		return zerror.Newf(zerror.ProtocolNotSupported, "no endpoint directory configured")
	}
	if _, err := zaddr.RequireSupported(addr); err != nil {
		return err
	}

	ep, err := s.dir.Lookup(addr)
	if err != nil {
		return err
	}

	// hwm[0] bounds the bind side's outbound (our inbound); hwm[1] ours.
	hwm := [2]uint64{s.opt.RecvHWM, s.opt.SendHWM}
	p, err := ep.Attach(hwm, [2]bool{false, false})
	if err != nil {
		return err
	}
	s.AttachPipe(p, false)
	return nil
}

// Unbind removes a previously bound address from the directory.
func (s *Socket) Unbind(addr string) {
	if s.dir != nil {
		s.dir.Unregister(addr)
	}
}
