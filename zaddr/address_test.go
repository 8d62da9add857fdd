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

package zaddr_test

import (
	"testing"

	"github.com/sabouaram/zmqcore/zaddr"
	"github.com/sabouaram/zmqcore/zerror"
)

func TestParseInproc(t *testing.T) {
	a, err := zaddr.Parse("inproc://test-endpoint")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Protocol != zaddr.Inproc || a.Endpoint != "test-endpoint" {
		t.Fatalf("got %+v", a)
	}
}

func TestParsePGMWithIface(t *testing.T) {
	a, err := zaddr.Parse("pgm://eth0;239.0.0.1:5555")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Iface != "eth0" || a.Endpoint != "239.0.0.1:5555" {
		t.Fatalf("got %+v", a)
	}
}

func TestParseRejectsMissingProtocol(t *testing.T) {
	_, err := zaddr.Parse("just-a-path")
	if zerror.KindOf(err) != zerror.AddressInvalid {
		t.Fatalf("expected AddressInvalid, got %v", err)
	}
}

func TestParseRejectsUnknownProtocol(t *testing.T) {
	_, err := zaddr.Parse("carrier-pigeon://nest")
	if zerror.KindOf(err) != zerror.ProtocolNotSupported {
		t.Fatalf("expected ProtocolNotSupported, got %v", err)
	}
}

func TestRequireSupportedRejectsTCP(t *testing.T) {
	_, err := zaddr.RequireSupported("tcp://127.0.0.1:5555")
	if zerror.KindOf(err) != zerror.ProtocolNotSupported {
		t.Fatalf("expected ProtocolNotSupported for tcp, got %v", err)
	}
}

func TestRequireSupportedAcceptsInproc(t *testing.T) {
	a, err := zaddr.RequireSupported("inproc://ok")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.String() != "inproc://ok" {
		t.Fatalf("got %q", a.String())
	}
}
