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

package pair_test

import (
	"testing"

	"github.com/sabouaram/zmqcore/msg"
	"github.com/sabouaram/zmqcore/pattern/pair"
	"github.com/sabouaram/zmqcore/pipe"
	"github.com/sabouaram/zmqcore/zerror"
)

func TestPairRoundTrip(t *testing.T) {
	a, b := pipe.PipePair([2]uint64{0, 0}, [2]bool{false, false})

	left, right := pair.New(), pair.New()
	left.XAttachPipe(a, false)
	right.XAttachPipe(b, false)

	if err := left.XSend(msg.New([]byte("hello"))); err != nil {
		t.Fatalf("unexpected send error: %v", err)
	}

	var out msg.Msg
	if err := right.XRecv(&out); err != nil {
		t.Fatalf("unexpected recv error: %v", err)
	}
	if string(out.Data()) != "hello" {
		t.Fatalf("got %q", out.Data())
	}
}

func TestPairRecvAgainWhenEmpty(t *testing.T) {
	a, b := pipe.PipePair([2]uint64{0, 0}, [2]bool{false, false})
	left, right := pair.New(), pair.New()
	left.XAttachPipe(a, false)
	right.XAttachPipe(b, false)

	var out msg.Msg
	err := right.XRecv(&out)
	if zerror.KindOf(err) != zerror.Again {
		t.Fatalf("expected Again, got %v", err)
	}
}
