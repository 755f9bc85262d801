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

// Package operation implements the driver's operation set
// (Insert/Update/Delete/Find/GetMore/KillCursors/FindAndModify) plus the
// Count/Distinct/DropCollection commands, each one driving a Session
// through the same request flow: select a server, check out a connection,
// frame the wire message, run it, classify the reply, release.
package operation

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github/sabouaram/mongocluster/bson"
	"github/sabouaram/mongocluster/errors"
	"github/sabouaram/mongocluster/logger"
	"github/sabouaram/mongocluster/session"
	"github/sabouaram/mongocluster/topology"
	"github/sabouaram/mongocluster/uri"
)

var log = logger.New("operation")

// Executor drives a Session through typed operations; each call names
// its own database and collection. It holds no per-call state and is safe
// to share across goroutines.
type Executor struct {
	sess *session.Session
}

// New builds an Executor over sess.
func New(sess *session.Session) *Executor {
	return &Executor{sess: sess}
}

func namespace(database, collection string) string {
	return database + "." + collection
}

// InsertResult reports how many documents were actually sent before any
// failure, counted across all batches.
type InsertResult struct {
	InsertedCount int
}

// Insert splits documents into batches, sends one OP_INSERT per batch,
// and — when wc is acknowledged — chains a getLastError after each batch
// on the same connection.
func (e *Executor) Insert(ctx context.Context, database, collection string, documents []interface{}, wc uri.WriteConcern, maxMessageSize, maxWriteBatchSize int32) (InsertResult, errors.Error) {
	corrID := uuid.NewString()
	ns := namespace(database, collection)

	batches, err := splitInsertBatches(ns, documents, maxMessageSize, maxWriteBatchSize)
	if err != nil {
		return InsertResult{}, err
	}

	bound, serr := e.sess.Checkout(ctx, topology.WriteSelector{})
	if serr != nil {
		return InsertResult{}, serr
	}
	defer bound.Release()

	inserted := 0
	for _, batch := range batches {
		if err := bound.Connection().Insert(insertMessage(ns, batch)); err != nil {
			return InsertResult{InsertedCount: inserted}, err
		}
		inserted += len(batch)

		if wc.IsAcknowledged() {
			if err := acknowledge(bound, database, wc); err != nil {
				return InsertResult{InsertedCount: inserted}, err
			}
		}
	}

	log.Debugf("insert %s correlationId=%s inserted=%d", ns, corrID, inserted)
	return InsertResult{InsertedCount: inserted}, nil
}

// Update sends one OP_UPDATE, chaining a getLastError when wc is
// acknowledged.
func (e *Executor) Update(ctx context.Context, database, collection string, selector, update bson.D, upsert, multi bool, wc uri.WriteConcern) errors.Error {
	corrID := uuid.NewString()
	ns := namespace(database, collection)

	bound, serr := e.sess.Checkout(ctx, topology.WriteSelector{})
	if serr != nil {
		return serr
	}
	defer bound.Release()

	if err := bound.Connection().Update(updateMessage(ns, selector, update, upsert, multi)); err != nil {
		return err
	}

	log.Debugf("update %s correlationId=%s", ns, corrID)

	if wc.IsAcknowledged() {
		return acknowledge(bound, database, wc)
	}
	return nil
}

// Delete sends one OP_DELETE, chaining a getLastError when wc is
// acknowledged.
func (e *Executor) Delete(ctx context.Context, database, collection string, selector bson.D, singleRemove bool, wc uri.WriteConcern) errors.Error {
	corrID := uuid.NewString()
	ns := namespace(database, collection)

	bound, serr := e.sess.Checkout(ctx, topology.WriteSelector{})
	if serr != nil {
		return serr
	}
	defer bound.Release()

	if err := bound.Connection().Delete(deleteMessage(ns, selector, singleRemove)); err != nil {
		return err
	}

	log.Debugf("delete %s correlationId=%s", ns, corrID)

	if wc.IsAcknowledged() {
		return acknowledge(bound, database, wc)
	}
	return nil
}

func acknowledge(bound *session.Bound, database string, wc uri.WriteConcern) errors.Error {
	cmd := bson.D{{Key: "getLastError", Value: 1}}
	if wc.W.IsSet() {
		if wc.W.Majority {
			cmd = append(cmd, bson.E{Key: "w", Value: "majority"})
		} else {
			cmd = append(cmd, bson.E{Key: "w", Value: int32(wc.W.Numeric)})
		}
	}
	if wc.WTimeout > 0 {
		cmd = append(cmd, bson.E{Key: "wtimeout", Value: int32(wc.WTimeout / time.Millisecond)})
	}
	if wc.J {
		cmd = append(cmd, bson.E{Key: "j", Value: true})
	}
	if wc.FSync {
		cmd = append(cmd, bson.E{Key: "fsync", Value: true})
	}

	reply, err := bound.Connection().RunCommand(database, cmd)
	if err != nil {
		if ce, ok := err.(errors.Error); ok {
			return ce
		}
		return ErrorCommandFailure.Error(err)
	}

	if serr := classifyGetLastErrorReply(reply); serr != nil {
		return serr
	}
	return nil
}

// Count runs the `count` command.
func (e *Executor) Count(ctx context.Context, database, collection string, query bson.D) (int64, errors.Error) {
	reply, err := e.runCommand(ctx, database, bson.D{{Key: "count", Value: collection}, {Key: "query", Value: query}})
	if err != nil {
		return 0, err
	}
	m := reply.Map()
	switch v := m["n"].(type) {
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case float64:
		return int64(v), nil
	}
	return 0, nil
}

// Distinct runs the `distinct` command.
func (e *Executor) Distinct(ctx context.Context, database, collection, field string, query bson.D) ([]interface{}, errors.Error) {
	reply, err := e.runCommand(ctx, database, bson.D{{Key: "distinct", Value: collection}, {Key: "key", Value: field}, {Key: "query", Value: query}})
	if err != nil {
		return nil, err
	}
	m := reply.Map()
	if values, ok := m["values"].([]interface{}); ok {
		return values, nil
	}
	return nil, nil
}

// DropCollection runs the `drop` command. A "ns not found" failure is
// swallowed, since dropping an absent collection is not an error from
// the caller's point of view.
func (e *Executor) DropCollection(ctx context.Context, database, collection string) errors.Error {
	_, err := e.runCommand(ctx, database, bson.D{{Key: "drop", Value: collection}})
	if err == nil {
		return nil
	}
	if se, ok := err.(*ServerError); ok {
		m := se.Response.Map()
		if msg, _ := m["errmsg"].(string); msg == "ns not found" {
			return nil
		}
	}
	return err
}

// runCommand is the shared read-path for command-style operations
// (count/distinct/drop): select a writable server, run the
// command, classify a non-ok reply.
func (e *Executor) runCommand(ctx context.Context, database string, cmd bson.D) (bson.D, errors.Error) {
	bound, serr := e.sess.Checkout(ctx, topology.WriteSelector{})
	if serr != nil {
		return nil, serr
	}
	defer bound.Release()

	reply, err := bound.Connection().RunCommand(database, cmd)
	if err != nil {
		if ce, ok := err.(errors.Error); ok {
			return nil, ce
		}
		return nil, ErrorCommandFailure.Error(err)
	}

	if serr := classifyCommandReply(reply); serr != nil {
		return reply, serr
	}
	return reply, nil
}

