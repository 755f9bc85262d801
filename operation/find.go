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
	"context"

	"github.com/google/uuid"

	"github/sabouaram/mongocluster/bson"
	"github/sabouaram/mongocluster/errors"
	"github/sabouaram/mongocluster/session"
	"github/sabouaram/mongocluster/topology"
	"github/sabouaram/mongocluster/uri"
	"github/sabouaram/mongocluster/wire"
)

// FindSpec is one Find request.
type FindSpec struct {
	Database, Collection string
	Query                bson.D
	Projection           bson.D
	Skip                 int32
	BatchSize            int32
	ReadPreference       uri.ReadPreference
}

// Cursor iterates a Find result: the first batch returned inline, then
// OP_GET_MORE calls against the same server until the server reports
// cursorId=0 or the caller Closes early. It is bound to a single
// checked-out connection for its entire lifetime.
type Cursor struct {
	ns       string
	bound    *session.Bound
	cursorID int64
	batch    []bson.D
	closed   bool
}

// Find runs the initial OP_QUERY and returns a Cursor positioned at the
// first batch.
func (e *Executor) Find(ctx context.Context, spec FindSpec) (*Cursor, errors.Error) {
	corrID := uuid.NewString()
	ns := namespace(spec.Database, spec.Collection)

	sel := topology.Selector(topology.ReadSelector{Preference: spec.ReadPreference})
	bound, serr := e.sess.Checkout(ctx, sel)
	if serr != nil {
		return nil, serr
	}

	reply, err := bound.Connection().Find(buildFindQuery(ns, spec))
	if err != nil {
		bound.Release()
		return nil, err
	}

	docs, derr := reply.Documents.All()
	if derr != nil {
		bound.Release()
		return nil, derr
	}

	log.Debugf("find %s correlationId=%s cursorId=%d batch=%d", ns, corrID, reply.CursorID, len(docs))

	if reply.CursorID == 0 {
		bound.Release()
	}

	return &Cursor{ns: ns, bound: bound, cursorID: reply.CursorID, batch: docs}, nil
}

func buildFindQuery(ns string, spec FindSpec) wire.Query {
	q := wire.Query{
		FullCollectionName: ns,
		NumberToSkip:       spec.Skip,
		NumberToReturn:     spec.BatchSize,
		Selector:           spec.Query,
	}
	if len(spec.Projection) > 0 {
		q.ReturnFieldsSelector = spec.Projection
	}
	if spec.ReadPreference.Mode != uri.ReadPrimary {
		q.Flags |= wire.QueryFlagSlaveOk
	}
	return q
}

// Next pops the next document off the current batch, fetching a new batch
// via OP_GET_MORE when the current one is exhausted and the cursor is
// still open server-side.
func (c *Cursor) Next(ctx context.Context, batchSize int32) (bson.D, bool, errors.Error) {
	for len(c.batch) == 0 {
		if c.cursorID == 0 || c.closed {
			return nil, false, nil
		}
		if err := c.fetchMore(batchSize); err != nil {
			return nil, false, err
		}
	}

	doc := c.batch[0]
	c.batch = c.batch[1:]
	return doc, true, nil
}

func (c *Cursor) fetchMore(batchSize int32) errors.Error {
	reply, err := c.bound.Connection().GetMore(wire.GetMore{
		FullCollectionName: c.ns,
		NumberToReturn:     batchSize,
		CursorID:           c.cursorID,
	})
	if err != nil {
		return err
	}
	docs, derr := reply.Documents.All()
	if derr != nil {
		return derr
	}
	c.batch = docs
	c.cursorID = reply.CursorID
	if c.cursorID == 0 {
		c.bound.Release()
	}
	return nil
}

// Close ends the cursor. If the server still holds a live cursorId, an
// OP_KILL_CURSORS is sent on the same connection before it is released:
// a non-zero cursor at close triggers OP_KILL_CURSORS scheduled on the
// same server.
func (c *Cursor) Close() errors.Error {
	if c.closed {
		return nil
	}
	c.closed = true

	if c.cursorID == 0 {
		return nil
	}

	err := c.bound.Connection().KillCursors(wire.KillCursors{CursorIDs: []int64{c.cursorID}})
	c.bound.Release()
	return err
}
