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

// Package metrics is the optional Prometheus instrumentation layer
// (SPEC_FULL.md §3 DOMAIN STACK): per-I/O-thread load, per-pipe watermark
// gap, and counters for reconnects, dropped mailbox sends, and mandatory
// ROUTER drops. The zero value is a nil-safe no-op collector, so metrics
// never gate correctness (spec.md's propagation/ownership rules hold with
// or without a registry wired in).
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Collector groups every gauge/counter the core touches. Build one with
// New and register it with a prometheus.Registerer; a nil *Collector is
// valid and every method becomes a no-op.
type Collector struct {
	IOThreadLoad     *prometheus.GaugeVec
	PipeWatermarkGap *prometheus.GaugeVec
	Reconnects       prometheus.Counter
	MailboxDropped   prometheus.Counter
	RouterUnreached  prometheus.Counter
}

// New builds a Collector with the given namespace (e.g. "zmqcore") and
// registers every metric with reg. Pass nil to get an unregistered,
// in-memory-only Collector (useful in tests).
func New(namespace string, reg prometheus.Registerer) *Collector {
	c := &Collector{
		IOThreadLoad: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "io_thread_load",
			Help:      "Number of engines registered with an I/O thread.",
		}, []string{"thread"}),
		PipeWatermarkGap: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipe_watermark_gap",
			Help:      "written minus peer-acknowledged-read for a pipe endpoint.",
		}, []string{"pipe"}),
		Reconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconnects_total",
			Help:      "Count of engine reconnect attempts.",
		}),
		MailboxDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mailbox_dropped_total",
			Help:      "Count of Command sends dropped because a mailbox was closed.",
		}),
		RouterUnreached: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "router_host_unreachable_total",
			Help:      "Count of mandatory ROUTER sends that failed with HostUnreachable.",
		}),
	}

	if reg != nil {
		reg.MustRegister(c.IOThreadLoad, c.PipeWatermarkGap, c.Reconnects, c.MailboxDropped, c.RouterUnreached)
	}
	return c
}

// SetIOThreadLoad records thread's current Load. Safe to call on a nil
// Collector.
func (c *Collector) SetIOThreadLoad(thread string, n int) {
	if c == nil {
		return
	}
	c.IOThreadLoad.WithLabelValues(thread).Set(float64(n))
}

// SetPipeWatermarkGap records a pipe's written-minus-peerRead gap.
func (c *Collector) SetPipeWatermarkGap(pipe string, gap int64) {
	if c == nil {
		return
	}
	c.PipeWatermarkGap.WithLabelValues(pipe).Set(float64(gap))
}

// IncReconnect records one reconnect attempt.
func (c *Collector) IncReconnect() {
	if c == nil {
		return
	}
	c.Reconnects.Inc()
}

// IncMailboxDropped records one Command dropped onto a closed mailbox.
func (c *Collector) IncMailboxDropped() {
	if c == nil {
		return
	}
	c.MailboxDropped.Inc()
}

// IncRouterUnreachable records one mandatory-ROUTER HostUnreachable drop.
func (c *Collector) IncRouterUnreachable() {
	if c == nil {
		return
	}
	c.RouterUnreached.Inc()
}
