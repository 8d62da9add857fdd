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

// Package ypipe implements the lock-free single-producer/single-consumer
// chunked queue that underlies every Pipe. Exactly one goroutine may write,
// exactly one may read; that invariant is enforced by construction (the
// pipe package never hands out a YPipe's reference to more than one side).
package ypipe

import "sync/atomic"

// DefaultChunkSize is the tuning constant for how many elements a single
// chunk batches before a new one is allocated. It affects allocation
// frequency only, never correctness.
const DefaultChunkSize = 256

type node[T any] struct {
	items [DefaultChunkSize]T
	tail  int // number of valid items appended so far in this chunk
	next  atomic.Pointer[node[T]]
}

// YPipe is a chunked singly-linked queue with a private write cursor and a
// published read cursor. Write appends without making the element visible
// to the reader; Flush publishes everything written so far.
type YPipe[T any] struct {
	// writer-owned
	writeChunk *node[T]
	writePos   int
	pendingHd  *node[T] // first chunk not yet flushed
	pendingPos int

	// shared, published by Flush (release) and observed by CheckRead (acquire)
	readChunk atomic.Pointer[node[T]]
	readPos   atomic.Int64

	// reader-owned
	localReadChunk *node[T]
	localReadPos   int

	asleep atomic.Bool
}

// New returns an empty YPipe with one sentinel chunk shared by both ends.
func New[T any]() *YPipe[T] {
	n := &node[T]{}
	p := &YPipe[T]{
		writeChunk:     n,
		pendingHd:      n,
		localReadChunk: n,
	}
	p.readChunk.Store(n)
	return p
}

// Write appends elem to the writer's private tail chunk without publishing
// it; call Flush to make accumulated writes visible to the reader.
func (p *YPipe[T]) Write(elem T) {
	p.writeChunk.items[p.writePos] = elem
	p.writePos++

	if p.writePos == DefaultChunkSize {
		n := &node[T]{}
		p.writeChunk.next.Store(n)
		p.writeChunk.tail = p.writePos
		p.writeChunk = n
		p.writePos = 0
	}
}

// Flush publishes every element written since the last Flush. It returns
// true if the reader had marked itself asleep, meaning the writer must wake
// it explicitly (the spec's ActivateRead command).
func (p *YPipe[T]) Flush() (readerWasAsleep bool) {
	if p.pendingHd == p.writeChunk && p.pendingPos == p.writePos {
		// nothing new since the last flush
		return false
	}

	p.writeChunk.tail = p.writePos
	p.pendingHd = p.writeChunk
	p.pendingPos = p.writePos

	p.readChunk.Store(p.pendingHd) // release: publish the new horizon
	p.readPos.Store(int64(p.pendingPos))

	return p.asleep.Load()
}

// CheckRead reports, without consuming, whether at least one flushed
// element is available to the reader.
func (p *YPipe[T]) CheckRead() bool {
	p.advanceChunk()
	return p.hasVisible()
}

// advanceChunk rolls the reader cursor onto the next chunk once the current
// one has been fully consumed.
func (p *YPipe[T]) advanceChunk() {
	if p.localReadPos == DefaultChunkSize {
		p.localReadChunk = p.localReadChunk.next.Load()
		p.localReadPos = 0
	}
}

func (p *YPipe[T]) hasVisible() bool {
	head := p.readChunk.Load() // acquire: synchronizes-with Flush's store
	pos := int(p.readPos.Load())

	return !(p.localReadChunk == head && p.localReadPos == pos)
}

// Rollback discards every element written since the last Flush, resetting
// the writer cursor back to the last published horizon. Used by Pipe to
// back out an unfinished multi-part message on termination.
func (p *YPipe[T]) Rollback() {
	p.writeChunk = p.pendingHd
	p.writePos = p.pendingPos
}

// TryRead consumes and returns the next flushed element. If none is
// available it marks the reader asleep (so the next Flush call will report
// readerWasAsleep) and returns false.
func (p *YPipe[T]) TryRead() (T, bool) {
	var zero T

	p.advanceChunk()

	if !p.hasVisible() {
		p.asleep.Store(true)
		// re-check: a Flush may have published between hasVisible() and
		// marking ourselves asleep; avoid losing the wakeup.
		if !p.hasVisible() {
			return zero, false
		}
	}
	p.asleep.Store(false)

	v := p.localReadChunk.items[p.localReadPos]
	var empty T
	p.localReadChunk.items[p.localReadPos] = empty
	p.localReadPos++

	return v, true
}
