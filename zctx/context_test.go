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

package zctx_test

import (
	"context"
	"testing"
	"time"

	"github.com/sabouaram/zmqcore/pipe"
	"github.com/sabouaram/zmqcore/zctx"
	"github.com/sabouaram/zmqcore/zerror"
)

type fakeSocket struct {
	id     uint32
	reaped chan struct{}
	stops  int
}

func newFakeSocket(id uint32) *fakeSocket {
	return &fakeSocket{id: id, reaped: make(chan struct{})}
}

func (s *fakeSocket) ID() uint32 { return s.id }
func (s *fakeSocket) Stop() {
	s.stops++
	close(s.reaped)
}
func (s *fakeSocket) Reaped() <-chan struct{} { return s.reaped }

func TestCreateSocketAssignsMonotonicIDs(t *testing.T) {
	ctx := zctx.New(zctx.Options{MaxSockets: 4, IOThreads: 1})
	defer ctx.Terminate(context.Background())

	var ids []uint32
	for i := 0; i < 3; i++ {
		sock, err := ctx.CreateSocket(context.Background(), func(id uint32) (zctx.Socket, error) {
			return newFakeSocket(id), nil
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		ids = append(ids, sock.ID())
	}

	for i := 1; i < len(ids); i++ {
		if ids[i] <= ids[i-1] {
			t.Fatalf("expected strictly increasing ids, got %v", ids)
		}
	}
}

func TestCreateSocketFailsOverMaxSockets(t *testing.T) {
	ctx := zctx.New(zctx.Options{MaxSockets: 1, IOThreads: 1})
	defer ctx.Terminate(context.Background())

	_, err := ctx.CreateSocket(context.Background(), func(id uint32) (zctx.Socket, error) {
		return newFakeSocket(id), nil
	})
	if err != nil {
		t.Fatalf("first socket should succeed: %v", err)
	}

	cctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = ctx.CreateSocket(cctx, func(id uint32) (zctx.Socket, error) {
		return newFakeSocket(id), nil
	})
	if err == nil {
		t.Fatal("expected second socket to fail once MaxSockets is exhausted")
	}
	if zerror.KindOf(err) != zerror.TooManyOpenSockets {
		t.Fatalf("expected TooManyOpenSockets, got %v", zerror.KindOf(err))
	}
}

func TestCreateSocketFailsAfterTerminate(t *testing.T) {
	ctx := zctx.New(zctx.Options{MaxSockets: 4, IOThreads: 1})
	ctx.Terminate(context.Background())

	_, err := ctx.CreateSocket(context.Background(), func(id uint32) (zctx.Socket, error) {
		return newFakeSocket(id), nil
	})
	if zerror.KindOf(err) != zerror.Terminating {
		t.Fatalf("expected Terminating, got %v", err)
	}
}

func TestTerminateStopsAllSocketsAndIsIdempotent(t *testing.T) {
	ctx := zctx.New(zctx.Options{MaxSockets: 4, IOThreads: 2})

	var socks []*fakeSocket
	for i := 0; i < 2; i++ {
		sock, err := ctx.CreateSocket(context.Background(), func(id uint32) (zctx.Socket, error) {
			s := newFakeSocket(id)
			return s, nil
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		socks = append(socks, sock.(*fakeSocket))
	}

	if err := ctx.Terminate(context.Background()); err != nil {
		t.Fatalf("unexpected terminate error: %v", err)
	}
	if err := ctx.Terminate(context.Background()); err != nil {
		t.Fatalf("second terminate must be a no-op, got: %v", err)
	}

	for _, s := range socks {
		if s.stops != 1 {
			t.Fatalf("expected each socket stopped exactly once, got %d", s.stops)
		}
	}
	if ctx.State() != zctx.Terminated {
		t.Fatalf("expected Terminated, got %s", ctx.State())
	}
}

func TestEndpointDirectoryRegisterLookupUnregister(t *testing.T) {
	d := zctx.NewEndpointDirectory()

	_, err := d.Lookup("inproc://missing")
	if zerror.KindOf(err) != zerror.EndpointNotFound {
		t.Fatalf("expected EndpointNotFound, got %v", err)
	}

	ep := zctx.Endpoint{Attach: func([2]uint64, [2]bool) (*pipe.Pipe, error) { return nil, nil }}
	if err := d.Register("inproc://a", ep); err != nil {
		t.Fatalf("unexpected register error: %v", err)
	}

	if err := d.Register("inproc://a", ep); zerror.KindOf(err) != zerror.AddressAlreadyInUse {
		t.Fatalf("expected AddressAlreadyInUse on double register, got %v", err)
	}

	if _, err := d.Lookup("inproc://a"); err != nil {
		t.Fatalf("expected lookup to succeed: %v", err)
	}

	d.Unregister("inproc://a")
	if _, err := d.Lookup("inproc://a"); zerror.KindOf(err) != zerror.EndpointNotFound {
		t.Fatalf("expected EndpointNotFound after unregister, got %v", err)
	}
}
