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

package zlog_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sabouaram/zmqcore/zlog"
)

func TestSetLevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	l := zlog.New(&buf)
	l.SetLevel(zlog.WarnLevel)

	l.Debug("should not appear")
	l.Warning("should appear")

	out := buf.String()
	if strings.Contains(out, "should not appear") {
		t.Fatalf("debug entry was not filtered: %q", out)
	}
	if !strings.Contains(out, "should appear") {
		t.Fatalf("warning entry missing: %q", out)
	}
}

func TestWithFieldsAttachesAttributes(t *testing.T) {
	var buf bytes.Buffer
	l := zlog.New(&buf).WithFields(zlog.Fields{"component": "test"})
	l.Info("hello")

	if !strings.Contains(buf.String(), "component=test") {
		t.Fatalf("expected field in output: %q", buf.String())
	}
}

func TestStdReturnsUnderlyingLogrusLogger(t *testing.T) {
	l := zlog.New(nil)
	if l.Std() == nil {
		t.Fatal("expected non-nil underlying logger")
	}
}
