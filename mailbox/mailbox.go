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

// Package mailbox implements the MPSC command queue used for every
// cross-thread state change in the library: one writer at a time per
// sender, a single reader (the owning thread), and a signaling primitive a
// reactor can multiplex alongside file descriptors and timers.
package mailbox

import (
	"container/list"
	"sync"
	"time"

	"github.com/sabouaram/zmqcore/cmd"
	"github.com/sabouaram/zmqcore/metrics"
	"github.com/sabouaram/zmqcore/zerror"
)

// Mailbox is a mutex-protected FIFO of Commands plus a readiness channel
// that becomes receivable exactly when the FIFO is non-empty.
type Mailbox struct {
	mu      sync.Mutex
	queue   *list.List
	signal  chan struct{}
	closed  bool
	metrics *metrics.Collector
}

// New returns an empty, open Mailbox.
func New() *Mailbox {
	return &Mailbox{
		queue:  list.New(),
		signal: make(chan struct{}, 1),
	}
}

// SetMetrics attaches a Collector that counts drops onto a closed mailbox;
// a nil Collector (the default) makes this a no-op.
func (m *Mailbox) SetMetrics(c *metrics.Collector) { m.metrics = c }

// Signal returns the channel a reactor can select on to learn the mailbox
// became non-empty. It is safe to read from concurrently with Send/Recv.
func (m *Mailbox) Signal() <-chan struct{} {
	return m.signal
}

func (m *Mailbox) wake() {
	select {
	case m.signal <- struct{}{}:
	default:
	}
}

// Send enqueues cmd atomically. Sending to a closed mailbox is a silent
// drop, per spec: the terminator thread is responsible for collecting
// anything still in flight toward a mailbox that already tore down.
func (m *Mailbox) Send(c cmd.Command) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		m.metrics.IncMailboxDropped()
		return
	}
	wasEmpty := m.queue.Len() == 0
	m.queue.PushBack(c)
	m.mu.Unlock()

	if wasEmpty {
		m.wake()
	}
}

// Recv returns the oldest Command, blocking up to timeout (zero means
// return immediately, negative means block indefinitely). The only failure
// mode is Again (nothing available before timeout elapsed).
func (m *Mailbox) Recv(timeout time.Duration) (cmd.Command, error) {
	if c, ok := m.tryRecv(); ok {
		return c, nil
	}

	if timeout == 0 {
		return cmd.Command{}, zerror.New(zerror.Again, "mailbox empty")
	}

	var deadline <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		deadline = t.C
	}

	for {
		select {
		case <-m.signal:
			if c, ok := m.tryRecv(); ok {
				return c, nil
			}
		case <-deadline:
			return cmd.Command{}, zerror.New(zerror.Again, "mailbox recv timed out")
		}
	}
}

func (m *Mailbox) tryRecv() (cmd.Command, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := m.queue.Front()
	if e == nil {
		return cmd.Command{}, false
	}
	m.queue.Remove(e)

	if m.queue.Len() > 0 {
		m.wake()
	}
	return e.Value.(cmd.Command), true
}

// DrainAll removes and returns every pending Command without blocking. The
// reactor uses this to fully empty a mailbox on each wake before returning
// to select.
func (m *Mailbox) DrainAll() []cmd.Command {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]cmd.Command, 0, m.queue.Len())
	for e := m.queue.Front(); e != nil; e = e.Next() {
		out = append(out, e.Value.(cmd.Command))
	}
	m.queue.Init()
	return out
}

// Len reports the number of pending commands; used for metrics only.
func (m *Mailbox) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queue.Len()
}

// Close marks the mailbox closed: subsequent Send calls are silently
// dropped, matching the spec's "sending to a closed mailbox is a silent
// drop" rule.
func (m *Mailbox) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
}
