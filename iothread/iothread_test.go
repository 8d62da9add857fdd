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

package iothread_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sabouaram/zmqcore/iothread"
)

func newTestThread() *iothread.Thread {
	log := logrus.NewEntry(logrus.New())
	return iothread.New(1, log)
}

func TestLoadReflectsRegisteredFDs(t *testing.T) {
	th := newTestThread()
	if th.Load() != 0 {
		t.Fatalf("expected 0 load, got %d", th.Load())
	}

	h := th.AddFD(noopPollable{})
	if th.Load() != 1 {
		t.Fatalf("expected load 1 after AddFD, got %d", th.Load())
	}

	th.RemoveFD(h)
	if th.Load() != 0 {
		t.Fatalf("expected load 0 after RemoveFD, got %d", th.Load())
	}
}

func TestRunFiresTimerThenStops(t *testing.T) {
	th := newTestThread()

	var fired atomic.Bool
	th.AddTimer(5*time.Millisecond, 0, func() { fired.Store(true) })

	done := make(chan struct{})
	go func() {
		th.Run()
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	th.Stop()

	select {
	case <-th.Stopped():
	case <-time.After(time.Second):
		t.Fatal("thread did not stop in time")
	}
	<-done

	if !fired.Load() {
		t.Fatal("expected timer to have fired before stop")
	}
}

func TestCancelTimerPreventsFiring(t *testing.T) {
	th := newTestThread()

	var fired atomic.Bool
	id := th.AddTimer(20*time.Millisecond, 0, func() { fired.Store(true) })
	th.CancelTimer(id)

	go th.Run()
	time.Sleep(40 * time.Millisecond)
	th.Stop()
	<-th.Stopped()

	if fired.Load() {
		t.Fatal("expected cancelled timer to never fire")
	}
}

type noopPollable struct{}

func (noopPollable) InEvent()  {}
func (noopPollable) OutEvent() {}
