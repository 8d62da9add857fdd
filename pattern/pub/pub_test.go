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

package pub_test

import (
	"testing"

	"github.com/sabouaram/zmqcore/msg"
	"github.com/sabouaram/zmqcore/pattern/pub"
	"github.com/sabouaram/zmqcore/pattern/sub"
	"github.com/sabouaram/zmqcore/pipe"
)

func TestPubDeliversOnlyToMatchingSubscribers(t *testing.T) {
	p := pub.New()

	a1, b1 := pipe.PipePair([2]uint64{0, 0}, [2]bool{false, false})
	a2, b2 := pipe.PipePair([2]uint64{0, 0}, [2]bool{false, false})
	p.XAttachPipe(a1, false)
	p.XAttachPipe(a2, false)

	s1, s2 := sub.New(), sub.New()
	s1.XAttachPipe(b1, false)
	s2.XAttachPipe(b2, false)

	s1.XSetSockOpt("subscribe", []byte("weather"))
	s2.XSetSockOpt("subscribe", []byte("sports"))

	// subscription frames flow to pub via the pipe; pub must consume them
	// on ReadActivated before matching a publish.
	p.XReadActivated(a1)
	p.XReadActivated(a2)

	if err := p.XSend(msg.New([]byte("weather-update"))); err != nil {
		t.Fatalf("unexpected send error: %v", err)
	}

	var out msg.Msg
	if err := s1.XRecv(&out); err != nil {
		t.Fatalf("expected weather subscriber to receive: %v", err)
	}
	if s2.XHasIn() {
		t.Fatal("sports subscriber must not receive a weather-prefixed message")
	}
}
