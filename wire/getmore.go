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

	"github/sabouaram/mongocluster/errors"
)

// GetMore is the request body for OP_GET_MORE.
type GetMore struct {
	FullCollectionName string
	NumberToReturn     int32
	CursorID           int64
}

func EncodeGetMore(g GetMore) ([]byte, errors.Error) {
	body := make([]byte, 4) // reserved, always zero

	body = append(body, g.FullCollectionName...)
	body = append(body, 0x00)

	n := make([]byte, 4)
	binary.LittleEndian.PutUint32(n, uint32(g.NumberToReturn))
	body = append(body, n...)

	cursor := make([]byte, 8)
	binary.LittleEndian.PutUint64(cursor, uint64(g.CursorID))
	body = append(body, cursor...)

	return body, nil
}

// KillCursors is the request body for OP_KILL_CURSORS.
type KillCursors struct {
	CursorIDs []int64
}

func EncodeKillCursors(k KillCursors) ([]byte, errors.Error) {
	body := make([]byte, 4) // reserved, always zero

	n := make([]byte, 4)
	binary.LittleEndian.PutUint32(n, uint32(len(k.CursorIDs)))
	body = append(body, n...)

	for _, id := range k.CursorIDs {
		b := make([]byte, 8)
		binary.LittleEndian.PutUint64(b, uint64(id))
		body = append(body, b...)
	}

	return body, nil
}
