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

package metrics_test

import (
	"testing"

	dto "github.com/prometheus/client_model/go"

	"github.com/sabouaram/zmqcore/metrics"
)

func TestIncRouterUnreachableIncrementsCounter(t *testing.T) {
	c := metrics.New("zmqcore_test", nil)
	c.IncRouterUnreachable()
	c.IncRouterUnreachable()

	m := &dto.Metric{}
	if err := c.RouterUnreached.Write(m); err != nil {
		t.Fatalf("write: %v", err)
	}
	if m.Counter.GetValue() != 2 {
		t.Fatalf("got %v", m.Counter.GetValue())
	}
}

func TestNilCollectorMethodsAreNoops(t *testing.T) {
	var c *metrics.Collector
	c.SetIOThreadLoad("t0", 3)
	c.SetPipeWatermarkGap("p0", 10)
	c.IncReconnect()
	c.IncMailboxDropped()
	c.IncRouterUnreachable()
}

func TestSetPipeWatermarkGapRecordsValue(t *testing.T) {
	c := metrics.New("zmqcore_test2", nil)
	c.SetPipeWatermarkGap("p1", 42)

	m := &dto.Metric{}
	if err := c.PipeWatermarkGap.WithLabelValues("p1").Write(m); err != nil {
		t.Fatalf("write: %v", err)
	}
	if m.Gauge.GetValue() != 42 {
		t.Fatalf("got %v", m.Gauge.GetValue())
	}
}
