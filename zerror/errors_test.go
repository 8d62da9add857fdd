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

package zerror_test

import (
	"errors"
	"testing"

	"github.com/sabouaram/zmqcore/zerror"
)

func TestKindOf(t *testing.T) {
	err := zerror.New(zerror.Again, "no pipe writable")
	if zerror.KindOf(err) != zerror.Again {
		t.Fatalf("expected Again, got %s", zerror.KindOf(err))
	}
}

func TestIsMatchesWrappedKind(t *testing.T) {
	inner := zerror.New(zerror.Fault, "epoll failed")
	outer := zerror.New(zerror.Fsm, "send refused", inner)

	if !zerror.Is(outer, zerror.Fsm) {
		t.Fatal("expected outer kind Fsm to match")
	}
	if !zerror.Is(outer, zerror.Fault) {
		t.Fatal("expected parent kind Fault to match through chain")
	}
}

func TestKindOfNonZerror(t *testing.T) {
	if zerror.KindOf(errors.New("plain")) != zerror.Unknown {
		t.Fatal("expected Unknown for a plain error")
	}
}
