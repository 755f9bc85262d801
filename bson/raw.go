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

package bson

import (
	"encoding/binary"

	"github/sabouaram/mongocluster/errors"
)

// Raw is an undecoded BSON document: the exact bytes of one document,
// including its length prefix and trailing nul. Operations that only
// need to forward or store documents (getMore batches, find results
// before application-level decoding) keep them as Raw to avoid a
// decode/re-encode round trip.
type Raw []byte

// Len reports the document's declared length, independent of len(r).
func (r Raw) Len() int {
	if len(r) < 4 {
		return 0
	}
	return int(int32(binary.LittleEndian.Uint32(r[0:4])))
}

// Decode parses r into a D.
func (r Raw) Decode() (D, errors.Error) {
	d, _, err := readDocument(r)
	return d, err
}

// Lookup decodes r and returns one field's value — useful for pulling
// $err/errmsg/code out of an OP_REPLY error document without a full
// Unmarshal into an application struct.
func (r Raw) Lookup(key string) (interface{}, bool) {
	d, err := r.Decode()
	if err != nil {
		return nil, false
	}
	return d.Lookup(key)
}

// RawCursor iterates the back-to-back BSON documents carried in an
// OP_REPLY body's documents[] section, decoding each lazily as Next is
// called instead of materializing the whole batch up front.
type RawCursor struct {
	buf []byte
	pos int
}

// NewRawCursor wraps a byte slice holding zero or more concatenated BSON
// documents.
func NewRawCursor(buf []byte) *RawCursor {
	return &RawCursor{buf: buf}
}

// Next returns the next document, or ok=false once the buffer is
// exhausted.
func (c *RawCursor) Next() (raw Raw, ok bool, err errors.Error) {
	if c.pos >= len(c.buf) {
		return nil, false, nil
	}
	if len(c.buf)-c.pos < 4 {
		return nil, false, ErrorTruncatedDocument.Error(nil)
	}

	length := int(int32(binary.LittleEndian.Uint32(c.buf[c.pos : c.pos+4])))
	if length < 5 || c.pos+length > len(c.buf) {
		return nil, false, ErrorTruncatedDocument.Error(nil)
	}

	doc := c.buf[c.pos : c.pos+length]
	c.pos += length
	return Raw(doc), true, nil
}

// Remaining reports how many unread bytes are left in the cursor.
func (c *RawCursor) Remaining() int {
	return len(c.buf) - c.pos
}

// All drains the cursor into a slice of decoded documents.
func (c *RawCursor) All() ([]D, errors.Error) {
	var out []D
	for {
		raw, ok, err := c.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}
		d, err := raw.Decode()
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
}
