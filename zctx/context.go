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

// Package zctx implements the process-wide lifecycle object: the socket
// registry, the lazily-started I/O-thread pool, and the in-process endpoint
// directory that inproc bind/connect resolves against. There is no reaper
// thread; each socket finalizes itself once it is stopped.
package zctx

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/sabouaram/zmqcore/cmd"
	"github.com/sabouaram/zmqcore/iothread"
	"github.com/sabouaram/zmqcore/zerror"
	"github.com/sabouaram/zmqcore/zlog"
)

// State is the context's own lifecycle FSM (spec.md §4's state table:
// Starting -> Running -> Terminating -> Terminated, all terminal on
// Terminated).
type State int32

const (
	Starting State = iota
	Running
	Terminating
	Terminated
)

var stateNames = [...]string{"Starting", "Running", "Terminating", "Terminated"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "Unknown"
}

// Socket is the minimal surface the context needs from an attached socket to
// drive termination: a stable id, a way to ask it to stop, and a way to
// learn it has finished finalizing. zsocket.Socket implements this.
type Socket interface {
	ID() uint32
	Stop()
	Reaped() <-chan struct{}
}

// Options are the context-wide tunables a new Context is built with.
type Options struct {
	MaxSockets  int64
	IOThreads   int
	Log         *logrus.Logger
}

// DefaultOptions mirrors the reference library's defaults.
func DefaultOptions() Options {
	return Options{MaxSockets: 1023, IOThreads: 1, Log: zlog.New(nil).Std()}
}

// Context is the process-wide root object: it owns the socket-id counter,
// the I/O-thread pool, and the endpoint directory used by inproc
// bind/connect.
type Context struct {
	opt Options
	log *logrus.Entry

	mu        sync.Mutex
	state     State
	sockets   map[uint32]Socket
	nextID    uint32
	threads   []*iothread.Thread
	startOnce sync.Once

	sem *semaphore.Weighted

	endpoints *EndpointDirectory
}

// New returns a Context in the Starting state; the I/O-thread pool is not
// started until the first CreateSocket call, per spec.md
// §4.E's lazy start-up rule.
func New(opt Options) *Context {
	if opt.Log == nil {
		opt.Log = logrus.New()
	}
	if opt.IOThreads <= 0 {
		opt.IOThreads = 1
	}
	if opt.MaxSockets <= 0 {
		opt.MaxSockets = 1023
	}
	return &Context{
		opt:       opt,
		log:       opt.Log.WithField("component", "zctx"),
		state:     Starting,
		sockets:   make(map[uint32]Socket),
		sem:       semaphore.NewWeighted(opt.MaxSockets),
		endpoints: NewEndpointDirectory(),
	}
}

// Endpoints returns the in-process endpoint directory inproc bind/connect
// resolves addresses against.
func (c *Context) Endpoints() *EndpointDirectory { return c.endpoints }

// State reports the context's current lifecycle state.
func (c *Context) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Context) ensureStarted() {
	c.startOnce.Do(func() {
		c.mu.Lock()
		c.state = Running
		for i := 0; i < c.opt.IOThreads; i++ {
			th := iothread.New(uint32(i+2), c.log)
			c.threads = append(c.threads, th)
			go th.Run()
		}
		c.mu.Unlock()
	})
}

// PickIOThread returns the least-loaded I/O thread, starting the pool on
// first use.
func (c *Context) PickIOThread() *iothread.Thread {
	c.ensureStarted()

	c.mu.Lock()
	defer c.mu.Unlock()

	best := c.threads[0]
	for _, th := range c.threads[1:] {
		if th.Load() < best.Load() {
			best = th
		}
	}
	return best
}

// CreateSocket allocates a new monotonic socket id and registers sock with
// the context, bounding the number of concurrently open sockets against
// MaxSockets. When MaxSockets sockets are already registered it waits for
// one to be released until ctx is done, and then fails with
// TooManyOpenSockets; it does not fail immediately. Fails with Terminating
// if Terminate has already been invoked.
func (c *Context) CreateSocket(ctx context.Context, register func(id uint32) (Socket, error)) (Socket, error) {
	c.mu.Lock()
	if c.state == Terminating || c.state == Terminated {
		c.mu.Unlock()
		return nil, zerror.New(zerror.Terminating, "context is terminating")
	}
	c.mu.Unlock()

	if err := c.sem.Acquire(ctx, 1); err != nil {
		return nil, zerror.New(zerror.TooManyOpenSockets, "max sockets reached")
	}

	c.ensureStarted()

	c.mu.Lock()
	c.nextID++
	id := c.nextID
	c.mu.Unlock()

	sock, err := register(id)
	if err != nil {
		c.sem.Release(1)
		return nil, err
	}

	c.mu.Lock()
	c.sockets[id] = sock
	c.mu.Unlock()

	return sock, nil
}

// ReleaseSocket removes a reaped socket from the registry and returns its
// slot to the semaphore, allowed to be called any number of times for the
// same id (idempotent).
func (c *Context) ReleaseSocket(id uint32) {
	c.mu.Lock()
	_, existed := c.sockets[id]
	delete(c.sockets, id)
	c.mu.Unlock()

	if existed {
		c.sem.Release(1)
	}
}

// Terminate drives every open socket to Stop, waits for each to report
// Reaped, tears down the I/O-thread pool, and moves the context to
// Terminated. Safe to call more than once; subsequent calls are no-ops.
func (c *Context) Terminate(ctx context.Context) error {
	c.mu.Lock()
	if c.state == Terminating || c.state == Terminated {
		c.mu.Unlock()
		return nil
	}
	c.state = Terminating
	sockets := make([]Socket, 0, len(c.sockets))
	for _, s := range c.sockets {
		sockets = append(sockets, s)
	}
	threads := append([]*iothread.Thread(nil), c.threads...)
	c.mu.Unlock()

	grp, gctx := errgroup.WithContext(ctx)
	for _, s := range sockets {
		s := s
		grp.Go(func() error {
			s.Stop()
			select {
			case <-s.Reaped():
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
	}
	if err := grp.Wait(); err != nil {
		c.log.WithError(err).Warn("zctx: terminate did not converge cleanly")
	}

	for _, th := range threads {
		th.Stop()
	}
	for _, th := range threads {
		select {
		case <-th.Stopped():
		case <-time.After(5 * time.Second):
			c.log.Warn("zctx: i/o thread did not stop within grace period")
		}
	}

	c.mu.Lock()
	c.state = Terminated
	c.mu.Unlock()
	return nil
}

// SendCommand routes a Command to the slot it names; slots 2..n+1 are the
// I/O threads, matching the fixed slot table in spec.md §4.E.
func (c *Context) SendCommand(dst cmd.Destination, command cmd.Command) {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := int(dst) - 2
	if idx < 0 || idx >= len(c.threads) {
		return
	}
	c.threads[idx].Mailbox().Send(command)
}
