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

// Package iothread runs the reactor loop that drives transport engines and
// their timers. Go's runtime already multiplexes blocking I/O across OS
// threads, so Thread does not implement its own epoll/kqueue equivalent; it
// runs timers and honors the mailbox-draining contract the rest of the core
// assumes on a single goroutine. Registered Pollables are counted toward Load
// only; Run does not invoke their InEvent/OutEvent.
package iothread

import (
	"container/heap"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sabouaram/zmqcore/cmd"
	"github.com/sabouaram/zmqcore/mailbox"
	"github.com/sabouaram/zmqcore/metrics"
)

// Pollable is anything an engine registers with a Thread. The Thread records
// it for Load accounting and does not call InEvent/OutEvent itself.
type Pollable interface {
	InEvent()
	OutEvent()
}

type timerEntry struct {
	at       time.Time
	id       uint64
	interval time.Duration // zero means one-shot
	fn       func()
	index    int
}

type timerHeap []*timerEntry

func (h timerHeap) Len() int            { return len(h) }
func (h timerHeap) Less(i, j int) bool  { return h[i].at.Before(h[j].at) }
func (h timerHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
func (h *timerHeap) Push(x interface{}) { e := x.(*timerEntry); e.index = len(*h); *h = append(*h, e) }
func (h *timerHeap) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}

// Thread is one I/O thread: a mailbox plus a registry of Pollables and
// timers, run by a single goroutine in Run.
type Thread struct {
	id      uint32
	mbox    *mailbox.Mailbox
	log     *logrus.Entry
	mu      sync.Mutex
	fds     map[uint64]Pollable
	nextFD  uint64
	timers  timerHeap
	nextTmr uint64
	wake    chan struct{}
	stopped chan struct{}
	metrics *metrics.Collector
}

// SetMetrics attaches a Collector that tracks this thread's Load gauge; a
// nil Collector (the default) makes every call a no-op.
func (t *Thread) SetMetrics(m *metrics.Collector) { t.metrics = m }

// New returns a Thread identified by id (its slot index in the context's
// slot table), logging through log.
func New(id uint32, log *logrus.Entry) *Thread {
	return &Thread{
		id:      id,
		mbox:    mailbox.New(),
		log:     log.WithField("iothread", id),
		fds:     make(map[uint64]Pollable),
		wake:    make(chan struct{}, 1),
		stopped: make(chan struct{}),
	}
}

// ID returns the thread's slot index.
func (t *Thread) ID() uint32 { return t.id }

// Mailbox returns the thread's command inbox, for Context.SendCommand.
func (t *Thread) Mailbox() *mailbox.Mailbox { return t.mbox }

// Load is the number of registered fd slots, used by the context to pick the
// least loaded I/O thread for a new engine.
func (t *Thread) Load() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.fds)
}

// AddFD records p, counting it toward Load, and returns its handle. Run does
// not invoke p's InEvent/OutEvent.
func (t *Thread) AddFD(p Pollable) uint64 {
	t.mu.Lock()
	t.nextFD++
	id := t.nextFD
	t.fds[id] = p
	n := len(t.fds)
	t.mu.Unlock()
	t.metrics.SetIOThreadLoad(t.loadLabel(), n)
	return id
}

// RemoveFD deregisters the Pollable identified by handle.
func (t *Thread) RemoveFD(handle uint64) {
	t.mu.Lock()
	delete(t.fds, handle)
	n := len(t.fds)
	t.mu.Unlock()
	t.metrics.SetIOThreadLoad(t.loadLabel(), n)
}

func (t *Thread) loadLabel() string {
	return strconv.FormatUint(uint64(t.id), 10)
}

// AddTimer schedules fn to run after d. interval == 0 means one-shot.
// Returns a timer id usable with CancelTimer.
func (t *Thread) AddTimer(d time.Duration, interval time.Duration, fn func()) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextTmr++
	id := t.nextTmr
	heap.Push(&t.timers, &timerEntry{at: time.Now().Add(d), id: id, interval: interval, fn: fn})
	t.requestWake()
	return id
}

// CancelTimer removes a pending timer; a no-op if it already fired.
func (t *Thread) CancelTimer(id uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, e := range t.timers {
		if e.id == id {
			heap.Remove(&t.timers, i)
			return
		}
	}
}

func (t *Thread) requestWake() {
	select {
	case t.wake <- struct{}{}:
	default:
	}
}

// Run drains the mailbox and fires due timers until a Stop command arrives.
// The Commands drained in the same batch as Stop are still dispatched before
// it returns.
func (t *Thread) Run() {
	defer close(t.stopped)

	for {
		next, ok := t.nextTimerDelay()
		var timerC <-chan time.Time
		var timer *time.Timer
		if ok {
			timer = time.NewTimer(next)
			timerC = timer.C
		}

		select {
		case <-t.mbox.Signal():
			if timer != nil {
				timer.Stop()
			}
			t.fireDueTimers()
			if t.drainAndDispatch() {
				return
			}
		case <-timerC:
			t.fireDueTimers()
		case <-t.wake:
			if timer != nil {
				timer.Stop()
			}
		}
	}
}

func (t *Thread) nextTimerDelay() (time.Duration, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.timers) == 0 {
		return 0, false
	}
	d := time.Until(t.timers[0].at)
	if d < 0 {
		d = 0
	}
	return d, true
}

// fireDueTimers runs every timer whose deadline has passed, ordered earliest
// first — timers are processed ahead of any simultaneously-ready mailbox
// signal on the same loop iteration.
func (t *Thread) fireDueTimers() {
	for {
		t.mu.Lock()
		if len(t.timers) == 0 || t.timers[0].at.After(time.Now()) {
			t.mu.Unlock()
			return
		}
		e := heap.Pop(&t.timers).(*timerEntry)
		if e.interval > 0 {
			e.at = time.Now().Add(e.interval)
			heap.Push(&t.timers, e)
		}
		t.mu.Unlock()
		e.fn()
	}
}

// drainAndDispatch processes every pending command, returning true if a Stop
// was among them and the reactor should exit.
func (t *Thread) drainAndDispatch() (stop bool) {
	for _, c := range t.mbox.DrainAll() {
		if c.Kind == cmd.Stop {
			stop = true
			continue
		}
		t.dispatch(c)
	}
	return stop
}

func (t *Thread) dispatch(c cmd.Command) {
	type applier interface {
		Apply(cmd.Command)
	}
	if a, ok := c.Src.(applier); ok {
		a.Apply(c)
		return
	}
	t.log.WithField("kind", c.Kind).Warn("iothread: command with no applier source, dropped")
}

// Stop enqueues a Stop command to this thread's own mailbox; Run exits after
// flushing whatever else was already pending.
func (t *Thread) Stop() {
	t.mbox.Send(cmd.Command{Kind: cmd.Stop})
}

// Stopped is closed once Run has returned.
func (t *Thread) Stopped() <-chan struct{} { return t.stopped }
