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

// UpdateFlag is one of the OP_UPDATE header bits.
type UpdateFlag int32

const (
	UpdateFlagUpsert UpdateFlag = 1 << 0
	UpdateFlagMulti  UpdateFlag = 1 << 1
)

// Update is the request body for OP_UPDATE.
type Update struct {
	FullCollectionName string
	Flags              UpdateFlag
	Selector           interface{}
	Document           interface{}
}

func EncodeUpdate(u Update) ([]byte, errors.Error) {
	body := make([]byte, 4) // reserved, always zero

	body = append(body, u.FullCollectionName...)
	body = append(body, 0x00)

	flags := make([]byte, 4)
	binary.LittleEndian.PutUint32(flags, uint32(u.Flags))
	body = append(body, flags...)

	sel, err := bson.Marshal(u.Selector)
	if err != nil {
		return nil, err
	}
	body = append(body, sel...)

	doc, err := bson.Marshal(u.Document)
	if err != nil {
		return nil, err
	}
	body = append(body, doc...)

	return body, nil
}

// DeleteFlag is one of the OP_DELETE header bits.
type DeleteFlag int32

const DeleteFlagSingleRemove DeleteFlag = 1 << 0

// Delete is the request body for OP_DELETE.
type Delete struct {
	FullCollectionName string
	Flags              DeleteFlag
	Selector           interface{}
}

func EncodeDelete(d Delete) ([]byte, errors.Error) {
	body := make([]byte, 4) // reserved, always zero

	body = append(body, d.FullCollectionName...)
	body = append(body, 0x00)

	flags := make([]byte, 4)
	binary.LittleEndian.PutUint32(flags, uint32(d.Flags))
	body = append(body, flags...)

	sel, err := bson.Marshal(d.Selector)
	if err != nil {
		return nil, err
	}
	body = append(body, sel...)

	return body, nil
}
