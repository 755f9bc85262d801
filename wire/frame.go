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

package wire

import (
	"encoding/binary"
	"io"
	"sync/atomic"

	"github/sabouaram/mongocluster/errors"
)

// Frame is one little-endian wire message: header plus opaque body.
type Frame struct {
	RequestID  int32
	ResponseTo int32
	OpCode     OpCode
	Body       []byte
}

// RequestIDGenerator hands out strictly increasing requestId values for
// one Connection's lifetime.
type RequestIDGenerator struct {
	next int32
}

// Next returns the next requestId. Safe for concurrent use, though the
// single-in-flight-per-connection invariant means callers never actually
// contend on it.
func (g *RequestIDGenerator) Next() int32 {
	return atomic.AddInt32(&g.next, 1)
}

// Encode writes f's header followed by its body into dst.
func Encode(dst []byte, f Frame) []byte {
	start := len(dst)
	dst = append(dst, make([]byte, HeaderSize)...)
	dst = append(dst, f.Body...)

	binary.LittleEndian.PutUint32(dst[start:], uint32(len(dst)-start))
	binary.LittleEndian.PutUint32(dst[start+4:], uint32(f.RequestID))
	binary.LittleEndian.PutUint32(dst[start+8:], uint32(f.ResponseTo))
	binary.LittleEndian.PutUint32(dst[start+12:], uint32(f.OpCode))

	return dst
}

// CheckSize returns ErrorFrameTooLarge if the encoded frame (header plus
// body) would exceed maxMessageSize.
func CheckSize(bodyLen int, maxMessageSize int32) errors.Error {
	if maxMessageSize > 0 && int64(HeaderSize+bodyLen) > int64(maxMessageSize) {
		return ErrorFrameTooLarge.Error(nil)
	}
	return nil
}

// ReadFrame reads one complete frame (header + body) from r.
func ReadFrame(r io.Reader) (Frame, errors.Error) {
	var header [HeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return Frame{}, ErrorTruncatedFrame.Error(err)
	}

	length := int32(binary.LittleEndian.Uint32(header[0:4]))
	if length < HeaderSize {
		return Frame{}, ErrorTruncatedFrame.Error(nil)
	}

	f := Frame{
		RequestID:  int32(binary.LittleEndian.Uint32(header[4:8])),
		ResponseTo: int32(binary.LittleEndian.Uint32(header[8:12])),
		OpCode:     OpCode(binary.LittleEndian.Uint32(header[12:16])),
	}

	body := make([]byte, length-HeaderSize)
	if _, err := io.ReadFull(r, body); err != nil {
		return Frame{}, ErrorTruncatedFrame.Error(err)
	}
	f.Body = body

	return f, nil
}

// Correlate enforces the reply correlation rule: the reply's responseTo
// must match the requestId the caller is waiting on.
func Correlate(requestID int32, reply Frame) errors.Error {
	if reply.ResponseTo != requestID {
		return ErrorUnexpectedResponseTo.Error(nil)
	}
	return nil
}
