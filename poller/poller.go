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

// Package poller implements the user-facing reactor from spec.md §4.I: any
// number of pollable sockets, raw readiness sources with callbacks, and
// timers, all driven on a single goroutine. add_*/remove_* calls may come
// from any goroutine; per the re-architecture in spec.md §9, mutations are
// queued and applied only at an iteration boundary rather than touched
// in-place mid-select, avoiding iterator invalidation from a callback that
// adds or removes another registration.
package poller

import (
	"container/heap"
	"reflect"
	"sync"
	"time"
)

// Socket is the minimal surface a pollable socket exposes: a stable id (for
// RemoveSocket) and a readiness channel that fires whenever a Recv might
// now succeed (zsocket.Socket.Readiness satisfies this).
type Socket interface {
	ID() uint32
	Readiness() <-chan struct{}
}

// Source is a raw OS-level readiness signal — a net.Conn or *os.File
// wrapped by the caller into a channel the runtime poller already drives,
// standing in for the reference design's add_pollin_socket(fd, cb).
type Source interface {
	Ready() <-chan struct{}
}

type timerEntry struct {
	at       time.Time
	id       uint64
	interval time.Duration
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

type mutationKind int

const (
	mutAddSocket mutationKind = iota
	mutRemoveSocket
	mutAddSource
	mutRemoveSource
	mutAddTimer
	mutRemoveTimer
)

type mutation struct {
	kind mutationKind

	sockID uint32
	sock   Socket
	sockCB func(Socket)

	srcHandle uint64
	src       Source
	srcCB     func()

	timerID       uint64
	timerDelay    time.Duration
	timerInterval time.Duration
	timerFn       func()
}

type socketEntry struct {
	sock Socket
	cb   func(Socket)
}

type sourceEntry struct {
	src Source
	cb  func()
}

// Poller is the user-facing reactor. Zero value is not usable; build one
// with New.
type Poller struct {
	pollTimeout time.Duration

	mu        sync.Mutex
	pending   []mutation
	mutate    chan struct{}
	nextSrc   uint64
	nextTimer uint64

	sockets map[uint32]*socketEntry
	sources map[uint64]*sourceEntry
	timers  timerHeap

	cancelOnce sync.Once
	cancelCh   chan struct{}
	doneCh     chan struct{}
}

// New returns an empty Poller; pollTimeout bounds how long PollOnce waits
// when nothing is registered and no timer is pending.
func New(pollTimeout time.Duration) *Poller {
	if pollTimeout <= 0 {
		pollTimeout = 100 * time.Millisecond
	}
	return &Poller{
		pollTimeout: pollTimeout,
		mutate:      make(chan struct{}, 1),
		sockets:     make(map[uint32]*socketEntry),
		sources:     make(map[uint64]*sourceEntry),
		cancelCh:    make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
}

func (p *Poller) queue(m mutation) {
	p.mu.Lock()
	p.pending = append(p.pending, m)
	p.mu.Unlock()
	select {
	case p.mutate <- struct{}{}:
	default:
	}
}

// AddSocket registers s; cb is invoked on the poller's goroutine whenever
// s.Readiness() fires.
func (p *Poller) AddSocket(s Socket, cb func(Socket)) {
	p.queue(mutation{kind: mutAddSocket, sock: s, sockCB: cb})
}

// RemoveSocket deregisters the socket identified by id.
func (p *Poller) RemoveSocket(id uint32) {
	p.queue(mutation{kind: mutRemoveSocket, sockID: id})
}

// AddPollinSource registers a raw readiness source, mirroring the
// reference design's add_pollin_socket(fd, cb). Returns a handle for
// RemovePollinSource.
func (p *Poller) AddPollinSource(src Source, cb func()) uint64 {
	p.mu.Lock()
	p.nextSrc++
	handle := p.nextSrc
	p.mu.Unlock()
	p.queue(mutation{kind: mutAddSource, srcHandle: handle, src: src, srcCB: cb})
	return handle
}

// RemovePollinSource deregisters the source identified by handle.
func (p *Poller) RemovePollinSource(handle uint64) {
	p.queue(mutation{kind: mutRemoveSource, srcHandle: handle})
}

// AddTimer schedules fn to run after delay, repeating every interval if
// interval > 0. Returns a timer id usable with RemoveTimer.
func (p *Poller) AddTimer(delay, interval time.Duration, fn func()) uint64 {
	p.mu.Lock()
	p.nextTimer++
	id := p.nextTimer
	p.mu.Unlock()
	p.queue(mutation{kind: mutAddTimer, timerID: id, timerDelay: delay, timerInterval: interval, timerFn: fn})
	return id
}

// RemoveTimer cancels the timer identified by id; a no-op if it already
// fired (and was one-shot) or never existed.
func (p *Poller) RemoveTimer(id uint64) {
	p.queue(mutation{kind: mutRemoveTimer, timerID: id})
}

// applyMutations drains every queued add/remove onto the live registries.
// Only called between iterations, never from inside a callback's call
// stack, so a callback that adds/removes a registration never invalidates
// the set poll is currently iterating.
func (p *Poller) applyMutations() {
	p.mu.Lock()
	batch := p.pending
	p.pending = nil
	p.mu.Unlock()

	for _, m := range batch {
		switch m.kind {
		case mutAddSocket:
			p.sockets[m.sock.ID()] = &socketEntry{sock: m.sock, cb: m.sockCB}
		case mutRemoveSocket:
			delete(p.sockets, m.sockID)
		case mutAddSource:
			p.sources[m.srcHandle] = &sourceEntry{src: m.src, cb: m.srcCB}
		case mutRemoveSource:
			delete(p.sources, m.srcHandle)
		case mutAddTimer:
			heap.Push(&p.timers, &timerEntry{
				at: time.Now().Add(m.timerDelay), id: m.timerID,
				interval: m.timerInterval, fn: m.timerFn,
			})
		case mutRemoveTimer:
			for i, e := range p.timers {
				if e.id == m.timerID {
					heap.Remove(&p.timers, i)
					break
				}
			}
		}
	}
}

// fireDueTimers runs every timer whose deadline has passed, earliest
// first, rescheduling periodic ones. Always called before the readiness
// select on the same iteration, so a timer due at the same instant as a
// socket/source wakeup fires first (spec.md §8 scenario 6).
func (p *Poller) fireDueTimers() {
	for len(p.timers) > 0 && !p.timers[0].at.After(time.Now()) {
		e := heap.Pop(&p.timers).(*timerEntry)
		if e.interval > 0 {
			e.at = time.Now().Add(e.interval)
			heap.Push(&p.timers, e)
		}
		e.fn()
	}
}

// PollOnce runs exactly one iteration, waiting at most PollTimeout (from
// New) if nothing else is ready.
func (p *Poller) PollOnce() {
	p.pollOnce()
}

// pollOnce returns true if Cancel had already been observed and the loop
// should stop.
func (p *Poller) pollOnce() (cancelled bool) {
	p.applyMutations()

	select {
	case <-p.cancelCh:
		return true
	default:
	}

	p.fireDueTimers()

	cases := []reflect.SelectCase{
		{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(p.cancelCh)},
		{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(p.mutate)},
	}
	kind := make([]int, len(cases)) // 0=cancel, 1=mutate, 2=timer, 3=socket, 4=source
	kind[0], kind[1] = 0, 1
	ids := make([]uint32, len(cases))
	handles := make([]uint64, len(cases))

	if len(p.timers) > 0 {
		d := time.Until(p.timers[0].at)
		if d < 0 {
			d = 0
		}
		if p.pollTimeout > 0 && d > p.pollTimeout {
			d = p.pollTimeout
		}
		cases = append(cases, reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(time.After(d))})
		kind = append(kind, 2)
		ids = append(ids, 0)
		handles = append(handles, 0)
	} else {
		cases = append(cases, reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(time.After(p.pollTimeout))})
		kind = append(kind, 2)
		ids = append(ids, 0)
		handles = append(handles, 0)
	}

	for id, se := range p.sockets {
		cases = append(cases, reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(se.sock.Readiness())})
		kind = append(kind, 3)
		ids = append(ids, id)
		handles = append(handles, 0)
	}
	for h, se := range p.sources {
		cases = append(cases, reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(se.src.Ready())})
		kind = append(kind, 4)
		ids = append(ids, 0)
		handles = append(handles, h)
	}

	chosen, _, _ := reflect.Select(cases)

	switch kind[chosen] {
	case 0:
		return true
	case 1:
		// mutation arrived; next loop iteration re-applies it.
	case 2:
		p.fireDueTimers()
	case 3:
		if se, ok := p.sockets[ids[chosen]]; ok && se.cb != nil {
			se.cb(se.sock)
		}
	case 4:
		if se, ok := p.sources[handles[chosen]]; ok && se.cb != nil {
			se.cb()
		}
	}
	return false
}

// PollTillCancelled runs iterations until Cancel is observed; in-flight
// callbacks always complete before the loop exits.
func (p *Poller) PollTillCancelled() {
	defer close(p.doneCh)
	for {
		if p.pollOnce() {
			return
		}
	}
}

// Cancel sets the cancellation flag; PollTillCancelled returns on the next
// iteration boundary. Idempotent.
func (p *Poller) Cancel() {
	p.cancelOnce.Do(func() { close(p.cancelCh) })
}

// CancelAndJoin cancels and waits for a running PollTillCancelled to
// return.
func (p *Poller) CancelAndJoin() {
	p.Cancel()
	<-p.doneCh
}
