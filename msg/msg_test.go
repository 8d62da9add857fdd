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

package msg_test

import (
	"testing"

	"github.com/sabouaram/zmqcore/msg"
)

func TestNewCopiesPayload(t *testing.T) {
	src := []byte("hello")
	m := msg.New(src)
	src[0] = 'H'

	if string(m.Data()) != "hello" {
		t.Fatalf("expected msg data to be unaffected by caller mutation, got %q", m.Data())
	}
}

func TestMoreFlag(t *testing.T) {
	m := msg.New([]byte("a")).SetMore(true)
	if !m.HasMore() {
		t.Fatal("expected HasMore true after SetMore(true)")
	}
	m = m.SetMore(false)
	if m.HasMore() {
		t.Fatal("expected HasMore false after SetMore(false)")
	}
}

func TestDelimiter(t *testing.T) {
	d := msg.NewDelimiter()
	if !d.IsDelimiter() {
		t.Fatal("expected NewDelimiter to set FlagDelimiter")
	}
	if d.Size() != 0 {
		t.Fatalf("expected delimiter to carry no payload, got size %d", d.Size())
	}
}

func TestCloseIdempotent(t *testing.T) {
	m := msg.New([]byte("x"))
	m.Close()
	m.Close() // must not panic or double-release
	if m.Data() != nil {
		t.Fatal("expected data released after Close")
	}
}

func TestIDsAreUnique(t *testing.T) {
	a := msg.Empty()
	b := msg.Empty()
	if a.ID() == b.ID() {
		t.Fatal("expected distinct monotonic ids")
	}
}
