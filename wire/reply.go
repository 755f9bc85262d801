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

	"github/sabouaram/mongocluster/bson"
	"github/sabouaram/mongocluster/errors"
)

// ReplyFlag is one of the OP_REPLY responseFlags bits.
type ReplyFlag int32

const (
	ReplyFlagCursorNotFound ReplyFlag = 1 << 0
	ReplyFlagQueryFailure   ReplyFlag = 1 << 1
)

// Reply is the parsed body of an OP_REPLY frame.
type Reply struct {
	ResponseFlags  ReplyFlag
	CursorID       int64
	StartingFrom   int32
	NumberReturned int32
	Documents      *bson.RawCursor
}

// DecodeReply parses an OP_REPLY body (the frame header has already been
// stripped by ReadFrame).
func DecodeReply(body []byte) (Reply, errors.Error) {
	if len(body) < 20 {
		return Reply{}, ErrorTruncatedFrame.Error(nil)
	}

	r := Reply{
		ResponseFlags:  ReplyFlag(int32(binary.LittleEndian.Uint32(body[0:4]))),
		CursorID:       int64(binary.LittleEndian.Uint64(body[4:12])),
		StartingFrom:   int32(binary.LittleEndian.Uint32(body[12:16])),
		NumberReturned: int32(binary.LittleEndian.Uint32(body[16:20])),
	}
	r.Documents = bson.NewRawCursor(body[20:])

	return r, nil
}

// CheckFlags surfaces the flags of interest: CursorNotFound and
// QueryFailure. On QueryFailure the reply's first (and
// only) document is an error document; the caller is expected to decode
// it and feed $err/errmsg/code into the error-classification layer.
func (r Reply) CheckFlags() errors.Error {
	if r.ResponseFlags&ReplyFlagQueryFailure != 0 {
		return ErrorQueryFailure.Error(nil)
	}
	if r.ResponseFlags&ReplyFlagCursorNotFound != 0 {
		return ErrorCursorNotFound.Error(nil)
	}
	return nil
}

// FirstDocument decodes and returns the reply's first document, or ok=false
// if the reply carried none (a getMore/killCursors acknowledgement, or an
// empty result batch).
func (r Reply) FirstDocument() (bson.D, bool, errors.Error) {
	raw, ok, err := r.Documents.Next()
	if err != nil || !ok {
		return nil, false, err
	}
	d, err := raw.Decode()
	if err != nil {
		return nil, false, err
	}
	return d, true, nil
}
