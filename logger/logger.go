/*
 * MIT License
 *
 * Copyright (c) 2019 Nicolas JUHEL
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
 */

package logger

import (
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// Logger is a named, leveled facility. Each driver component (Pool, Monitor,
// Topology, Connection, ...) holds its own so log lines are tagged with the
// component that produced them without callers having to thread a name
// through every Logf call.
type Logger struct {
	mu   sync.RWMutex
	name string
	lvl  Level
	out  *logrus.Logger
}

var std = New("driver")

// New returns a Logger tagged with name, writing to stderr at InfoLevel.
func New(name string) *Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	l.SetLevel(InfoLevel.logrus())

	return &Logger{name: name, lvl: InfoLevel, out: l}
}

// SetLevel changes the minimum level this Logger emits.
func (l *Logger) SetLevel(lvl Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lvl = lvl
	l.out.SetLevel(lvl.logrus())
}

// SetOutput redirects where this Logger writes formatted entries.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out.SetOutput(w)
}

// Named returns a child Logger sharing this Logger's level and output but
// tagged with a sub-component name, e.g. pool.log.Named(addr.String()).
func (l *Logger) Named(name string) *Logger {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return &Logger{name: l.name + "." + name, lvl: l.lvl, out: l.out}
}

func (l *Logger) logf(lvl Level, format string, args ...interface{}) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if lvl == NilLevel || l.lvl == NilLevel || lvl > l.lvl {
		return
	}

	entry := l.out.WithField("component", l.name)

	switch lvl {
	case PanicLevel:
		entry.Panicf(format, args...)
	case FatalLevel:
		entry.Fatalf(format, args...)
	case ErrorLevel:
		entry.Errorf(format, args...)
	case WarnLevel:
		entry.Warnf(format, args...)
	case InfoLevel:
		entry.Infof(format, args...)
	case DebugLevel:
		entry.Debugf(format, args...)
	}
}

func (l *Logger) Debugf(format string, args ...interface{}) { l.logf(DebugLevel, format, args...) }
func (l *Logger) Infof(format string, args ...interface{})  { l.logf(InfoLevel, format, args...) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.logf(WarnLevel, format, args...) }
func (l *Logger) Errorf(format string, args ...interface{}) { l.logf(ErrorLevel, format, args...) }
func (l *Logger) Fatalf(format string, args ...interface{}) { l.logf(FatalLevel, format, args...) }

// SetDefaultLevel changes the level of the package-wide default Logger used
// by the Level.Logf helper (Level.Logf(...) rather than a named Logger).
func SetDefaultLevel(lvl Level) {
	std.SetLevel(lvl)
}

// SetDefaultOutput redirects the package-wide default Logger.
func SetDefaultOutput(w io.Writer) {
	std.SetOutput(w)
}
