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

// InsertFlag is one of the OP_INSERT header bits.
type InsertFlag int32

const InsertFlagContinueOnError InsertFlag = 1 << 0

// Insert is the request body for OP_INSERT.
type Insert struct {
	Flags              InsertFlag
	FullCollectionName string
	Documents          []interface{}
}

// EncodeInsert serializes one OP_INSERT body for exactly the documents
// given; callers are expected to have already split the batch with
// SplitInsertBatches.
func EncodeInsert(in Insert) ([]byte, errors.Error) {
	body := make([]byte, 4)
	binary.LittleEndian.PutUint32(body, uint32(in.Flags))

	body = append(body, in.FullCollectionName...)
	body = append(body, 0x00)

	for _, doc := range in.Documents {
		raw, err := bson.Marshal(doc)
		if err != nil {
			return nil, err
		}
		body = append(body, raw...)
	}

	return body, nil
}

// SplitInsertBatches groups documents into batches honoring both
// maxMessageSize (the encoded OP_INSERT frame, header included, must not
// exceed it) and maxWriteBatchSize (a document-count cap). A single
// document that alone would exceed maxMessageSize is reported as
// ErrorBatchTooLarge rather than silently dropped.
func SplitInsertBatches(fullCollectionName string, documents []interface{}, maxMessageSize int32, maxWriteBatchSize int32) ([][]interface{}, errors.Error) {
	if len(documents) == 0 {
		return nil, nil
	}

	fixedOverhead := HeaderSize + 4 + len(fullCollectionName) + 1

	var batches [][]interface{}
	var current []interface{}
	currentSize := fixedOverhead

	for _, doc := range documents {
		raw, err := bson.Marshal(doc)
		if err != nil {
			return nil, err
		}

		if fixedOverhead+len(raw) > int(maxMessageSize) && maxMessageSize > 0 {
			return nil, ErrorBatchTooLarge.Error(nil)
		}

		exceedsSize := maxMessageSize > 0 && currentSize+len(raw) > int(maxMessageSize)
		exceedsCount := maxWriteBatchSize > 0 && int32(len(current)) >= maxWriteBatchSize

		if len(current) > 0 && (exceedsSize || exceedsCount) {
			batches = append(batches, current)
			current = nil
			currentSize = fixedOverhead
		}

		current = append(current, doc)
		currentSize += len(raw)
	}

	if len(current) > 0 {
		batches = append(batches, current)
	}

	return batches, nil
}
