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

// Package trie implements the byte-prefix radix trie used by PUB-side
// patterns to route a published topic to every subscribed pipe in a single
// walk, per spec.md §4.H.
package trie

// Pipe is the minimal identity a trie node needs from an attached pipe
// endpoint: comparable, and nothing else. zsocket/pattern wire this to
// *pipe.Pipe.
type Pipe any

type node struct {
	children map[byte]*node
	pipes    map[Pipe]struct{}
	refcount int
}

func newNode() *node {
	return &node{children: make(map[byte]*node), pipes: make(map[Pipe]struct{})}
}

// Trie is a radix trie keyed on byte prefixes; each node carries the set of
// pipes subscribed to the prefix that node represents.
type Trie struct {
	root *node
}

// New returns an empty Trie.
func New() *Trie {
	return &Trie{root: newNode()}
}

// Add subscribes p to prefix, returning true if this is the first
// subscriber for that exact prefix (the node became newly present).
func (t *Trie) Add(prefix []byte, p Pipe) bool {
	n := t.root
	for _, b := range prefix {
		c, ok := n.children[b]
		if !ok {
			c = newNode()
			n.children[b] = c
		}
		n = c
	}
	n.refcount++
	_, already := n.pipes[p]
	n.pipes[p] = struct{}{}
	return !already && len(n.pipes) == 1
}

// Remove unsubscribes p from prefix, returning true if the node was
// destroyed (no more subscribers and no children) as a result.
func (t *Trie) Remove(prefix []byte, p Pipe) bool {
	path := make([]*node, 0, len(prefix)+1)
	path = append(path, t.root)

	n := t.root
	for _, b := range prefix {
		c, ok := n.children[b]
		if !ok {
			return false
		}
		path = append(path, c)
		n = c
	}

	if _, ok := n.pipes[p]; !ok {
		return false
	}
	delete(n.pipes, p)
	if n.refcount > 0 {
		n.refcount--
	}

	destroyed := len(n.pipes) == 0 && len(n.children) == 0 && n != t.root
	if destroyed {
		for i := len(path) - 2; i >= 0; i-- {
			parent := path[i]
			child := path[i+1]
			if len(child.pipes) > 0 || len(child.children) > 0 {
				break
			}
			for b, c := range parent.children {
				if c == child {
					delete(parent.children, b)
					break
				}
			}
			if len(parent.pipes) > 0 || len(parent.children) > 0 || parent == t.root {
				break
			}
		}
	}
	return destroyed
}

// Visitor is invoked once per pipe subscribed to any prefix of payload that
// Match walks through, in root-to-leaf order.
type Visitor func(p Pipe)

// Match walks the trie along payload's bytes, invoking visit once for every
// pipe subscribed to any prefix of payload (including the empty prefix); a
// pipe subscribed to several matching prefixes is visited only once.
func (t *Trie) Match(payload []byte, visit Visitor) {
	seen := make(map[Pipe]struct{})
	visitOnce := func(p Pipe) {
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		visit(p)
	}
	n := t.root
	for p := range n.pipes {
		visitOnce(p)
	}
	for _, b := range payload {
		c, ok := n.children[b]
		if !ok {
			return
		}
		for p := range c.pipes {
			visitOnce(p)
		}
		n = c
	}
}

// RemoveHelper removes every subscription associated with p anywhere in the
// trie (used when a peer terminates). unsub is invoked once per prefix
// whose node was fully vacated, with the prefix bytes that vanished, so a
// PUB socket can emit upstream unsubscriptions if it chooses to.
func (t *Trie) RemoveHelper(p Pipe, unsub func(prefix []byte)) {
	var walk func(n *node, prefix []byte) bool // returns true if n should be pruned
	walk = func(n *node, prefix []byte) bool {
		for b, c := range n.children {
			if walk(c, append(append([]byte{}, prefix...), b)) {
				delete(n.children, b)
			}
		}

		if _, ok := n.pipes[p]; ok {
			delete(n.pipes, p)
			if n.refcount > 0 {
				n.refcount--
			}
			if len(n.pipes) == 0 && len(n.children) == 0 {
				unsub(prefix)
			}
		}

		return n != t.root && len(n.pipes) == 0 && len(n.children) == 0
	}

	walk(t.root, nil)
}
