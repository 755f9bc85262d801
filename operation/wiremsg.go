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

package operation

import (
	"github/sabouaram/mongocluster/errors"
	"github/sabouaram/mongocluster/wire"
)

// splitInsertBatches is a thin adapter over wire.SplitInsertBatches, kept
// here so every operation in this package frames messages through the same
// small set of helpers.
func splitInsertBatches(ns string, documents []interface{}, maxMessageSize, maxWriteBatchSize int32) ([][]interface{}, errors.Error) {
	return wire.SplitInsertBatches(ns, documents, maxMessageSize, maxWriteBatchSize)
}

func insertMessage(ns string, batch []interface{}) wire.Insert {
	return wire.Insert{FullCollectionName: ns, Documents: batch}
}

func updateMessage(ns string, selector, update interface{}, upsert, multi bool) wire.Update {
	var flags wire.UpdateFlag
	if upsert {
		flags |= wire.UpdateFlagUpsert
	}
	if multi {
		flags |= wire.UpdateFlagMulti
	}
	return wire.Update{FullCollectionName: ns, Flags: flags, Selector: selector, Document: update}
}

func deleteMessage(ns string, selector interface{}, singleRemove bool) wire.Delete {
	var flags wire.DeleteFlag
	if singleRemove {
		flags |= wire.DeleteFlagSingleRemove
	}
	return wire.Delete{FullCollectionName: ns, Flags: flags, Selector: selector}
}
