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

// Package zlog is a trimmed descendant of the reference logger package: it
// wraps logrus with a small leveled interface and a Fields helper, so the
// rest of the core can log structured entries without every package
// importing logrus directly (SPEC_FULL.md §3 AMBIENT STACK).
package zlog

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Level mirrors logrus.Level but keeps zlog's callers from needing the
// logrus import for the common case of picking a verbosity.
type Level uint8

const (
	PanicLevel Level = iota
	FatalLevel
	ErrorLevel
	WarnLevel
	InfoLevel
	DebugLevel
)

func (l Level) toLogrus() logrus.Level {
	switch l {
	case PanicLevel:
		return logrus.PanicLevel
	case FatalLevel:
		return logrus.FatalLevel
	case ErrorLevel:
		return logrus.ErrorLevel
	case WarnLevel:
		return logrus.WarnLevel
	case DebugLevel:
		return logrus.DebugLevel
	default:
		return logrus.InfoLevel
	}
}

// Fields is a copy-on-write attribute bag attached to a log entry.
type Fields map[string]interface{}

// Add returns a new Fields with key/val merged in, leaving the receiver
// untouched.
func (f Fields) Add(key string, val interface{}) Fields {
	out := make(Fields, len(f)+1)
	for k, v := range f {
		out[k] = v
	}
	out[key] = val
	return out
}

func (f Fields) toLogrus() logrus.Fields {
	out := make(logrus.Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Logger is the leveled logging surface the rest of the core depends on.
type Logger interface {
	SetLevel(lvl Level)
	GetLevel() Level
	WithFields(f Fields) Logger

	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warning(msg string, args ...interface{})
	Error(msg string, args ...interface{})

	// Std returns the underlying *logrus.Logger, for packages built
	// before zlog existed (iothread, zctx, zsocket) that still take a
	// *logrus.Logger/*logrus.Entry directly.
	Std() *logrus.Logger
}

type zl struct {
	entry *logrus.Entry
}

// New builds a Logger at InfoLevel writing to w (os.Stderr if w is nil).
func New(w io.Writer) Logger {
	l := logrus.New()
	if w != nil {
		l.SetOutput(w)
	}
	l.SetLevel(logrus.InfoLevel)
	return &zl{entry: logrus.NewEntry(l)}
}

// NewFrom wraps an already-configured logrus.Logger, letting a caller that
// built one through viper/fsnotify reload (zoptions) hand it to zlog.
func NewFrom(l *logrus.Logger) Logger {
	if l == nil {
		l = logrus.New()
	}
	return &zl{entry: logrus.NewEntry(l)}
}

func (z *zl) SetLevel(lvl Level) { z.entry.Logger.SetLevel(lvl.toLogrus()) }

func (z *zl) GetLevel() Level {
	switch z.entry.Logger.GetLevel() {
	case logrus.PanicLevel:
		return PanicLevel
	case logrus.FatalLevel:
		return FatalLevel
	case logrus.ErrorLevel:
		return ErrorLevel
	case logrus.WarnLevel:
		return WarnLevel
	case logrus.DebugLevel:
		return DebugLevel
	default:
		return InfoLevel
	}
}

func (z *zl) WithFields(f Fields) Logger {
	return &zl{entry: z.entry.WithFields(f.toLogrus())}
}

func (z *zl) Debug(msg string, args ...interface{})   { z.entry.Debugf(msg, args...) }
func (z *zl) Info(msg string, args ...interface{})    { z.entry.Infof(msg, args...) }
func (z *zl) Warning(msg string, args ...interface{}) { z.entry.Warnf(msg, args...) }
func (z *zl) Error(msg string, args ...interface{})   { z.entry.Errorf(msg, args...) }

func (z *zl) Std() *logrus.Logger { return z.entry.Logger }
