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

package xpub_test

import (
	"testing"

	"github.com/sabouaram/zmqcore/msg"
	"github.com/sabouaram/zmqcore/pattern/xpub"
	"github.com/sabouaram/zmqcore/pattern/xsub"
	"github.com/sabouaram/zmqcore/pipe"
)

func TestXPubExposesSubscriptionToUser(t *testing.T) {
	xp := xpub.New()
	xs := xsub.New()

	a, b := pipe.PipePair([2]uint64{0, 0}, [2]bool{false, false})
	xp.XAttachPipe(a, false)
	xs.XAttachPipe(b, false)

	sub := msg.New(append([]byte{1}, []byte("topic")...))
	if err := xs.XSend(sub); err != nil {
		t.Fatalf("xsub send: %v", err)
	}

	xp.XReadActivated(a)

	if !xp.XHasIn() {
		t.Fatal("expected xpub to surface the subscription frame to the user")
	}
	var out msg.Msg
	if err := xp.XRecv(&out); err != nil {
		t.Fatalf("xpub recv: %v", err)
	}
	if out.Data()[0] != 1 || string(out.Data()[1:]) != "topic" {
		t.Fatalf("unexpected subscription frame: %v", out.Data())
	}
}

func TestXPubWelcomeMessageSentOnAttach(t *testing.T) {
	xp := xpub.New()
	xp.XSetSockOpt("welcomemessage", []byte("hello"))

	a, b := pipe.PipePair([2]uint64{0, 0}, [2]bool{false, false})
	xp.XAttachPipe(a, false)

	var out msg.Msg
	if !b.HasIn() {
		t.Fatal("expected welcome message to be waiting on the peer pipe")
	}
	if !b.Read(&out) {
		t.Fatal("expected to read the welcome message")
	}
	if string(out.Data()) != "hello" {
		t.Fatalf("got %q", out.Data())
	}
}
