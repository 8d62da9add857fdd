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

// Package zaddr parses the protocol://endpoint address syntax shared by
// bind and connect (spec.md §6). Only inproc is a fully wired transport;
// the other protocols parse correctly so they can be rejected with
// ProtocolNotSupported rather than AddressInvalid.
package zaddr

import (
	"strings"

	"github.com/sabouaram/zmqcore/zerror"
)

// Protocol is one of the schemes spec.md §6 names.
type Protocol string

const (
	Inproc Protocol = "inproc"
	TCP    Protocol = "tcp"
	IPC    Protocol = "ipc"
	PGM    Protocol = "pgm"
	EPGM   Protocol = "epgm"
)

var known = map[Protocol]bool{
	Inproc: true,
	TCP:    true,
	IPC:    true,
	PGM:    true,
	EPGM:   true,
}

// Address is a parsed protocol://endpoint string.
type Address struct {
	Protocol Protocol
	Endpoint string
	// Iface is set only for PGM/EPGM's protocol://iface;group:port form.
	Iface string
}

// Parse splits raw into its Protocol and Endpoint per spec.md §6. It
// returns AddressInvalid for malformed input and ProtocolNotSupported for
// a well-formed but unrecognized scheme.
func Parse(raw string) (Address, error) {
	i := strings.Index(raw, "://")
	if i <= 0 {
		return Address{}, zerror.Newf(zerror.AddressInvalid, "missing protocol in %q", raw)
	}

	proto := Protocol(raw[:i])
	rest := raw[i+3:]
	if rest == "" {
		return Address{}, zerror.Newf(zerror.AddressInvalid, "empty endpoint in %q", raw)
	}
	if !known[proto] {
		return Address{}, zerror.Newf(zerror.ProtocolNotSupported, "unknown protocol %q", proto)
	}

	addr := Address{Protocol: proto, Endpoint: rest}

	if proto == PGM || proto == EPGM {
		if j := strings.Index(rest, ";"); j >= 0 {
			addr.Iface = rest[:j]
			addr.Endpoint = rest[j+1:]
		}
	}

	return addr, nil
}

// RequireSupported is Parse followed by a check that proto is one this
// build can actually bind/connect (only inproc, per SPEC_FULL.md §7).
func RequireSupported(raw string) (Address, error) {
	addr, err := Parse(raw)
	if err != nil {
		return addr, err
	}
	if addr.Protocol != Inproc {
		return addr, zerror.Newf(zerror.ProtocolNotSupported, "%s transport engine not built in this module", addr.Protocol)
	}
	return addr, nil
}

// String reassembles the canonical form, mainly for logging.
func (a Address) String() string {
	if a.Iface != "" {
		return string(a.Protocol) + "://" + a.Iface + ";" + a.Endpoint
	}
	return string(a.Protocol) + "://" + a.Endpoint
}
