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

package zsocket_test

import (
	"testing"
	"time"

	"github.com/sabouaram/zmqcore/msg"
	"github.com/sabouaram/zmqcore/pattern/pair"
	"github.com/sabouaram/zmqcore/zctx"
	"github.com/sabouaram/zmqcore/zoptions"
	"github.com/sabouaram/zmqcore/zsocket"
)

func TestBindConnectSendRecv(t *testing.T) {
	dir := zctx.NewEndpointDirectory()

	server := zsocket.New(1, "PAIR", pair.New(), zoptions.Default(), dir, nil)
	client := zsocket.New(2, "PAIR", pair.New(), zoptions.Default(), dir, nil)

	if err := server.Bind("inproc://test"); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if err := client.Connect("inproc://test"); err != nil {
		t.Fatalf("connect: %v", err)
	}

	if err := client.Send(msg.New([]byte("ping")), 0); err != nil {
		t.Fatalf("send: %v", err)
	}

	var out msg.Msg
	if err := server.Recv(&out, zsocket.DontWait); err != nil {
		t.Fatalf("recv: %v", err)
	}
	if string(out.Data()) != "ping" {
		t.Fatalf("got %q", out.Data())
	}
}

func TestRecvDontWaitFailsAgainWhenEmpty(t *testing.T) {
	dir := zctx.NewEndpointDirectory()
	s := zsocket.New(1, "PAIR", pair.New(), zoptions.Default(), dir, nil)

	var out msg.Msg
	err := s.Recv(&out, zsocket.DontWait)
	if err == nil {
		t.Fatal("expected an error with no attached pipes")
	}
}

func TestSendBlocksUntilPeerAttachesThenSucceeds(t *testing.T) {
	dir := zctx.NewEndpointDirectory()

	server := zsocket.New(1, "PAIR", pair.New(), zoptions.Default(), dir, nil)
	client := zsocket.New(2, "PAIR", pair.New(), zoptions.Default(), dir, nil)

	if err := server.Bind("inproc://blocking"); err != nil {
		t.Fatalf("bind: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- client.Send(msg.New([]byte("late")), 0)
	}()

	time.Sleep(10 * time.Millisecond)
	if err := client.Connect("inproc://blocking"); err != nil {
		t.Fatalf("connect: %v", err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected send error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("send did not unblock after connect")
	}
}

func TestStopIsIdempotentAndClosesReaped(t *testing.T) {
	dir := zctx.NewEndpointDirectory()
	s := zsocket.New(1, "PAIR", pair.New(), zoptions.Default(), dir, nil)

	s.Stop()
	s.Stop()

	select {
	case <-s.Reaped():
	case <-time.After(time.Second):
		t.Fatal("expected reaped channel to close")
	}
}
