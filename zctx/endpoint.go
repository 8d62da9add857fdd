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

package zctx

import (
	"sync"

	"github.com/sabouaram/zmqcore/pipe"
	"github.com/sabouaram/zmqcore/zerror"
)

// Endpoint is whatever a bind registers under an inproc address; zsocket
// binds a pipe-attach callback here so a later connect can allocate a Pipe
// pair in-place and hand one end to the bound socket, with no OS socket
// involved (spec.md §4.F: "inproc connects look up the peer, allocate a
// Pipe pair in-place, and send Bind commands to both peers").
type Endpoint struct {
	// Attach is called by a connecting socket with the HWM/delay pair it
	// wants for its own end; the bound side constructs the Pipe pair,
	// attaches its own end to itself, and returns the connecting side's
	// end.
	Attach func(hwm [2]uint64, delay [2]bool) (connectorEnd *pipe.Pipe, err error)
}

// EndpointDirectory is the process-wide registry inproc bind/connect
// resolves addresses against (spec.md §3 "in-process endpoint directory").
// The only lock on this hot path, per spec.md §4's communication model.
type EndpointDirectory struct {
	mu   sync.Mutex
	byAd map[string]Endpoint
}

// NewEndpointDirectory returns an empty directory.
func NewEndpointDirectory() *EndpointDirectory {
	return &EndpointDirectory{byAd: make(map[string]Endpoint)}
}

// Register adds addr as bound to ep. Fails with AddressAlreadyInUse if
// already registered.
func (d *EndpointDirectory) Register(addr string, ep Endpoint) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.byAd[addr]; exists {
		return zerror.Newf(zerror.AddressAlreadyInUse, "inproc endpoint %q already bound", addr)
	}
	d.byAd[addr] = ep
	return nil
}

// Unregister removes addr, a no-op if it was never registered.
func (d *EndpointDirectory) Unregister(addr string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.byAd, addr)
}

// Lookup resolves addr to its bound Endpoint. Fails with EndpointNotFound if
// nothing is bound there.
func (d *EndpointDirectory) Lookup(addr string) (Endpoint, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	ep, ok := d.byAd[addr]
	if !ok {
		return Endpoint{}, zerror.Newf(zerror.EndpointNotFound, "no inproc endpoint bound at %q", addr)
	}
	return ep, nil
}
