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

package pattern

import "github.com/sabouaram/zmqcore/pipe"

// Rotation is the round-robin/fair-queue pipe list shared by PUSH/PULL/
// DEALER (spec.md §4.G: "load-balance ... in round-robin order",
// "fair-queue ... in round-robin order"). It is not safe for concurrent
// use; callers serialize through the owning Socket's single-threaded
// contract.
type Rotation struct {
	pipes []*pipe.Pipe
	next  int
}

// Add appends p to the rotation.
func (r *Rotation) Add(p *pipe.Pipe) {
	r.pipes = append(r.pipes, p)
}

// Remove drops p from the rotation.
func (r *Rotation) Remove(p *pipe.Pipe) {
	for i, pp := range r.pipes {
		if pp == p {
			r.pipes = append(r.pipes[:i], r.pipes[i+1:]...)
			if r.next > i {
				r.next--
			}
			return
		}
	}
}

// Len reports the number of pipes currently registered.
func (r *Rotation) Len() int { return len(r.pipes) }

// SelectWritable returns the next pipe (in rotation order, starting after
// the last one chosen) whose CheckWrite reports true, advancing the cursor
// past it. Returns nil if none currently accept a write.
func (r *Rotation) SelectWritable() *pipe.Pipe {
	n := len(r.pipes)
	for i := 0; i < n; i++ {
		idx := (r.next + i) % n
		if r.pipes[idx].CheckWrite() {
			r.next = (idx + 1) % n
			return r.pipes[idx]
		}
	}
	return nil
}

// SelectReadable returns the next pipe (in rotation order) with data
// available, advancing the cursor past it. Returns nil if none have data.
func (r *Rotation) SelectReadable() *pipe.Pipe {
	n := len(r.pipes)
	for i := 0; i < n; i++ {
		idx := (r.next + i) % n
		if r.pipes[idx].HasIn() {
			r.next = (idx + 1) % n
			return r.pipes[idx]
		}
	}
	return nil
}

// All returns the pipes currently registered, for callers that need the raw
// list rather than rotation semantics.
func (r *Rotation) All() []*pipe.Pipe { return r.pipes }

// HasWritable reports whether SelectWritable would currently succeed,
// without advancing the rotation cursor.
func (r *Rotation) HasWritable() bool {
	for _, p := range r.pipes {
		if p.CheckWrite() {
			return true
		}
	}
	return false
}

// HasReadable reports whether SelectReadable would currently succeed,
// without advancing the rotation cursor.
func (r *Rotation) HasReadable() bool {
	for _, p := range r.pipes {
		if p.HasIn() {
			return true
		}
	}
	return false
}
