/***********************************************************************************************************************
 *
 *   MIT License
 *
 *   Copyright (c) 2021 Nicolas JUHEL
 *
 *   Permission is hereby granted, free of charge, to any person obtaining a copy
 *   of this software and associated documentation files (the "Software"), to deal
 *   in the Software without restriction, including without limitation the rights
 *   to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 *   copies of the Software, and to permit persons to whom the Software is
 *   furnished to do so, subject to the following conditions:
 *
 *   The above copyright notice and this permission notice shall be included in all
 *   copies or substantial portions of the Software.
 *
 *   THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 *   IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 *   FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 *   AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 *   LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 *   OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 *   SOFTWARE.
 *
 *
 **********************************************************************************************************************/

// Package buffer provides pooled byte buffers for wire I/O, so framing a
// request or reading a reply doesn't allocate a fresh slice per message.
package buffer

import "sync"

// DefaultSize is the initial capacity handed out for a fresh buffer. It
// comfortably holds a single-document command frame without growing;
// larger write batches grow the buffer in place and the grown capacity
// is kept when the buffer is returned to the pool.
const DefaultSize = 16 * 1024

// MaxPooled is the largest capacity a buffer may have and still be kept
// in the pool on Put. A buffer grown past this (e.g. by an oversized
// insert batch) is left for the garbage collector instead of bloating
// the pool's steady-state memory.
const MaxPooled = 4 * 1024 * 1024

// Buffer is a reusable, growable byte slice.
type Buffer struct {
	b []byte
}

var pool = sync.Pool{
	New: func() interface{} {
		return &Buffer{b: make([]byte, 0, DefaultSize)}
	},
}

// Get returns a zero-length Buffer from the pool.
func Get() *Buffer {
	buf := pool.Get().(*Buffer)
	buf.b = buf.b[:0]
	return buf
}

// Put returns buf to the pool, unless it has grown beyond MaxPooled.
func Put(buf *Buffer) {
	if buf == nil || cap(buf.b) > MaxPooled {
		return
	}
	pool.Put(buf)
}

// Bytes returns the buffer's current contents.
func (buf *Buffer) Bytes() []byte {
	return buf.b
}

// Len reports the number of bytes currently written.
func (buf *Buffer) Len() int {
	return len(buf.b)
}

// Reset truncates the buffer to zero length, keeping its capacity.
func (buf *Buffer) Reset() {
	buf.b = buf.b[:0]
}

// Write appends p, growing the underlying slice as needed, and satisfies
// io.Writer so wire encoders can write directly into it.
func (buf *Buffer) Write(p []byte) (int, error) {
	buf.b = append(buf.b, p...)
	return len(p), nil
}

// Grow ensures at least n more bytes of capacity are available without a
// further reallocation.
func (buf *Buffer) Grow(n int) {
	if cap(buf.b)-len(buf.b) >= n {
		return
	}
	grown := make([]byte, len(buf.b), len(buf.b)+n)
	copy(grown, buf.b)
	buf.b = grown
}

// Reserve appends n zeroed bytes and returns the slice covering them, so a
// caller can patch in a length prefix after writing the body (the
// frame-header placeholder pattern used throughout wire/).
func (buf *Buffer) Reserve(n int) []byte {
	start := len(buf.b)
	buf.Grow(n)
	buf.b = buf.b[:start+n]
	for i := start; i < start+n; i++ {
		buf.b[i] = 0
	}
	return buf.b[start : start+n]
}
