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

// QueryFlag is one of the OP_QUERY header bits.
type QueryFlag int32

const (
	QueryFlagTailableCursor QueryFlag = 1 << 1
	QueryFlagSlaveOk        QueryFlag = 1 << 2
	QueryFlagNoCursorTimeout QueryFlag = 1 << 4
	QueryFlagAwaitData      QueryFlag = 1 << 5
	QueryFlagExhaust        QueryFlag = 1 << 6
	QueryFlagPartial        QueryFlag = 1 << 7
)

// Query is the request body for OP_QUERY: used both for collection finds
// and for `$cmd` command dispatch (findAndModify, getnonce, authenticate,
// ismaster, getLastError, ...) with NumberToReturn=-1.
type Query struct {
	Flags                QueryFlag
	FullCollectionName   string
	NumberToSkip         int32
	NumberToReturn       int32
	Selector             interface{}
	ReturnFieldsSelector interface{}
}

// EncodeQuery serializes q as an OP_QUERY body.
func EncodeQuery(q Query) ([]byte, errors.Error) {
	body := make([]byte, 4)
	binary.LittleEndian.PutUint32(body, uint32(q.Flags))

	body = append(body, q.FullCollectionName...)
	body = append(body, 0x00)

	skip := make([]byte, 4)
	binary.LittleEndian.PutUint32(skip, uint32(q.NumberToSkip))
	body = append(body, skip...)

	ret := make([]byte, 4)
	binary.LittleEndian.PutUint32(ret, uint32(q.NumberToReturn))
	body = append(body, ret...)

	sel, err := bson.Marshal(q.Selector)
	if err != nil {
		return nil, err
	}
	body = append(body, sel...)

	if q.ReturnFieldsSelector != nil {
		fields, err := bson.Marshal(q.ReturnFieldsSelector)
		if err != nil {
			return nil, err
		}
		body = append(body, fields...)
	}

	return body, nil
}

// CommandNamespace builds the `<db>.$cmd` namespace OP_QUERY command
// dispatch uses.
func CommandNamespace(database string) string {
	return database + ".$cmd"
}
