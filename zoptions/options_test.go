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

package zoptions_test

import (
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/sabouaram/zmqcore/zoptions"
)

func TestDefaultOptions(t *testing.T) {
	o := zoptions.Default()
	if o.SendHWM != 1000 || o.RecvHWM != 1000 {
		t.Fatalf("unexpected default HWMs: %+v", o)
	}
}

func TestFromViperOverridesDefaults(t *testing.T) {
	v := viper.New()
	v.Set("sendhwm", 42)
	v.Set("recvtimeout", "5s")
	v.Set("routermandatory", true)

	o := zoptions.FromViper(v)
	if o.SendHWM != 42 {
		t.Fatalf("expected overridden sendhwm 42, got %d", o.SendHWM)
	}
	if o.RecvTimeout != 5*time.Second {
		t.Fatalf("expected 5s recvtimeout, got %s", o.RecvTimeout)
	}
	if !o.RouterMandatory {
		t.Fatal("expected routermandatory true")
	}
	if o.RecvHWM != 1000 {
		t.Fatalf("expected untouched field to keep default, got %d", o.RecvHWM)
	}
}

func TestLiveOptionsSnapshotIsACopy(t *testing.T) {
	lo := zoptions.NewLiveOptions(zoptions.Default())
	a := lo.Snapshot()
	a.SendHWM = 999

	b := lo.Snapshot()
	if b.SendHWM == 999 {
		t.Fatal("mutating a snapshot must not affect the live value")
	}
}
