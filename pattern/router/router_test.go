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

package router_test

import (
	"testing"

	"github.com/sabouaram/zmqcore/msg"
	"github.com/sabouaram/zmqcore/pattern/dealer"
	"github.com/sabouaram/zmqcore/pattern/router"
	"github.com/sabouaram/zmqcore/pipe"
	"github.com/sabouaram/zmqcore/zerror"
)

func TestRouterPrependsIdentityOnRecv(t *testing.T) {
	a, b := pipe.PipePair([2]uint64{0, 0}, [2]bool{false, false})
	b.SetIdentity([]byte("worker-1"))

	r := router.New()
	d := dealer.New()
	r.XAttachPipe(a, false)
	d.XAttachPipe(b, false)

	if err := d.XSend(msg.New([]byte("hi"))); err != nil {
		t.Fatalf("dealer send: %v", err)
	}

	var identity, body msg.Msg
	if err := r.XRecv(&identity); err != nil {
		t.Fatalf("router recv identity: %v", err)
	}
	if string(identity.Data()) != "worker-1" {
		t.Fatalf("expected identity frame, got %q", identity.Data())
	}
	if !identity.HasMore() {
		t.Fatal("expected identity frame to carry HasMore")
	}

	if err := r.XRecv(&body); err != nil {
		t.Fatalf("router recv body: %v", err)
	}
	if string(body.Data()) != "hi" {
		t.Fatalf("got %q", body.Data())
	}
}

func TestRouterSendRequiresDestinationIdentityFirst(t *testing.T) {
	a, b := pipe.PipePair([2]uint64{0, 0}, [2]bool{false, false})
	b.SetIdentity([]byte("worker-1"))

	r := router.New()
	d := dealer.New()
	r.XAttachPipe(a, false)
	d.XAttachPipe(b, false)

	dest := msg.New([]byte("worker-1"))
	dest = dest.SetMore(true)
	if err := r.XSend(dest); err != nil {
		t.Fatalf("unexpected error selecting destination: %v", err)
	}
	if err := r.XSend(msg.New([]byte("reply"))); err != nil {
		t.Fatalf("unexpected send error: %v", err)
	}

	var out msg.Msg
	if err := d.XRecv(&out); err != nil {
		t.Fatalf("dealer recv: %v", err)
	}
	if string(out.Data()) != "reply" {
		t.Fatalf("got %q", out.Data())
	}
}

func TestRouterMandatoryFailsOnUnknownIdentity(t *testing.T) {
	r := router.New()
	if err := r.XSetSockOpt("mandatory", true); err != nil {
		t.Fatalf("unexpected error setting mandatory: %v", err)
	}

	dest := msg.New([]byte("ghost"))
	dest = dest.SetMore(true)
	if err := r.XSend(dest); zerror.KindOf(err) != zerror.HostUnreachable {
		t.Fatalf("expected HostUnreachable, got %v", err)
	}
}
