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

// Package zoptions is the concrete, immutable-by-convention Options
// snapshot a socket is built with (spec.md's "Options snapshot" mentioned
// throughout §3-§4). It loads from a github.com/spf13/viper source the same
// way the teacher's config packages do, with github.com/fsnotify/fsnotify
// wired for live-reload of the handful of fields that are safe to change
// after a socket is running (linger and the two timeouts).
package zoptions

import (
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Options is copied by value into every Pipe/engine it is handed to; once
// given out it must never be mutated in place.
type Options struct {
	SendHWM         uint64
	RecvHWM         uint64
	SendTimeout     time.Duration // 0 = block forever
	RecvTimeout     time.Duration
	Linger          time.Duration
	Identity        []byte
	RoutingID       []byte
	ReqCorrelate    bool
	ReqRelaxed      bool
	RouterMandatory bool
	XPubVerbose     bool
	XPubManual      bool
	WelcomeMsg      []byte
	IOThreads       int
	MaxSockets      int64
}

// Default mirrors the reference library's stock defaults.
func Default() Options {
	return Options{
		SendHWM:    1000,
		RecvHWM:    1000,
		Linger:     30 * time.Second,
		IOThreads:  1,
		MaxSockets: 1023,
	}
}

// FromViper reads an Options value out of v, falling back to Default for
// anything unset. Keys mirror the field names lower-cased, e.g.
// "sendhwm", "recvtimeout".
func FromViper(v *viper.Viper) Options {
	o := Default()

	if v == nil {
		return o
	}
	if v.IsSet("sendhwm") {
		o.SendHWM = v.GetUint64("sendhwm")
	}
	if v.IsSet("recvhwm") {
		o.RecvHWM = v.GetUint64("recvhwm")
	}
	if v.IsSet("sendtimeout") {
		o.SendTimeout = v.GetDuration("sendtimeout")
	}
	if v.IsSet("recvtimeout") {
		o.RecvTimeout = v.GetDuration("recvtimeout")
	}
	if v.IsSet("linger") {
		o.Linger = v.GetDuration("linger")
	}
	if v.IsSet("identity") {
		o.Identity = []byte(v.GetString("identity"))
	}
	if v.IsSet("reqcorrelate") {
		o.ReqCorrelate = v.GetBool("reqcorrelate")
	}
	if v.IsSet("routermandatory") {
		o.RouterMandatory = v.GetBool("routermandatory")
	}
	if v.IsSet("xpubverbose") {
		o.XPubVerbose = v.GetBool("xpubverbose")
	}
	if v.IsSet("xpubmanual") {
		o.XPubManual = v.GetBool("xpubmanual")
	}
	if v.IsSet("welcomemsg") {
		o.WelcomeMsg = []byte(v.GetString("welcomemsg"))
	}
	if v.IsSet("iothreads") {
		o.IOThreads = v.GetInt("iothreads")
	}
	if v.IsSet("maxsockets") {
		o.MaxSockets = v.GetInt64("maxsockets")
	}
	return o
}

// LiveOptions wraps an Options snapshot with an fsnotify-driven reload hook
// for the fields that are safe to mutate after a socket has started:
// Linger, SendTimeout, RecvTimeout. Everything else requires a new socket.
type LiveOptions struct {
	mu  sync.RWMutex
	cur Options
}

// NewLiveOptions seeds a LiveOptions from an initial snapshot.
func NewLiveOptions(initial Options) *LiveOptions {
	return &LiveOptions{cur: initial}
}

// Snapshot returns a copy of the current Options.
func (l *LiveOptions) Snapshot() Options {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cur
}

// WatchViper re-reads SendTimeout/RecvTimeout/Linger from v whenever its
// backing file changes, matching the teacher's viper+fsnotify config-reload
// idiom.
func (l *LiveOptions) WatchViper(v *viper.Viper) {
	if v == nil {
		return
	}
	v.OnConfigChange(func(_ fsnotify.Event) {
		l.mu.Lock()
		defer l.mu.Unlock()
		if v.IsSet("sendtimeout") {
			l.cur.SendTimeout = v.GetDuration("sendtimeout")
		}
		if v.IsSet("recvtimeout") {
			l.cur.RecvTimeout = v.GetDuration("recvtimeout")
		}
		if v.IsSet("linger") {
			l.cur.Linger = v.GetDuration("linger")
		}
	})
	v.WatchConfig()
}
