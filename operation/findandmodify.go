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
	"strings"

	"github.com/google/uuid"

	"github/sabouaram/mongocluster/bson"
	"github/sabouaram/mongocluster/errors"
	"github/sabouaram/mongocluster/topology"
	"github/sabouaram/mongocluster/wire"
)

// FindAndModifySpec is the shared shape of all three findAndModify
// variants' command document
// `{findandmodify: coll, query, sort, update|remove|new|upsert|fields}`.
type FindAndModifySpec struct {
	Database, Collection string
	Query                bson.D
	Sort                 bson.D
	Fields               bson.D
}

// FindAndUpdate applies an update document to the first matching document.
type FindAndUpdate struct {
	FindAndModifySpec
	Update bson.D
	Upsert bool
	New    bool
}

// FindAndReplace replaces the first matching document wholesale.
type FindAndReplace struct {
	FindAndModifySpec
	Replacement bson.D
	Upsert      bool
	New         bool
}

// FindAndRemove removes the first matching document.
type FindAndRemove struct {
	FindAndModifySpec
}

// Validate rejects a replacement document with any top-level `$`-prefixed
// key: a replacement is a whole document, not an update modifier, so a
// `$`-prefixed key is almost certainly a caller mistake (passing an
// update operator document where a replacement was meant).
func (f FindAndReplace) Validate() errors.Error {
	for _, e := range f.Replacement {
		if strings.HasPrefix(e.Key, "$") {
			return ErrorValidationFailed.Error(nil)
		}
	}
	return nil
}

// FindAndRemove carries no Upsert field by construction: upserting a
// removal is a contradiction, so the type rejects it rather than
// validating it at call time.

func (f FindAndModifySpec) baseCommand() bson.D {
	cmd := bson.D{{Key: "findandmodify", Value: f.Collection}}
	if len(f.Query) > 0 {
		cmd = append(cmd, bson.E{Key: "query", Value: f.Query})
	}
	if len(f.Sort) > 0 {
		cmd = append(cmd, bson.E{Key: "sort", Value: f.Sort})
	}
	if len(f.Fields) > 0 {
		cmd = append(cmd, bson.E{Key: "fields", Value: f.Fields})
	}
	return cmd
}

// FindAndUpdate sends the findandmodify command and returns the server's "value"
// document (the matched document, pre- or post-image per New).
func (e *Executor) FindAndUpdate(ctx context.Context, f FindAndUpdate) (bson.D, errors.Error) {
	cmd := f.baseCommand()
	cmd = append(cmd, bson.E{Key: "update", Value: f.Update})
	if f.Upsert {
		cmd = append(cmd, bson.E{Key: "upsert", Value: true})
	}
	if f.New {
		cmd = append(cmd, bson.E{Key: "new", Value: true})
	}
	return e.runFindAndModify(ctx, f.Database, cmd)
}

func (e *Executor) FindAndReplace(ctx context.Context, f FindAndReplace) (bson.D, errors.Error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	cmd := f.baseCommand()
	cmd = append(cmd, bson.E{Key: "update", Value: f.Replacement})
	if f.Upsert {
		cmd = append(cmd, bson.E{Key: "upsert", Value: true})
	}
	if f.New {
		cmd = append(cmd, bson.E{Key: "new", Value: true})
	}
	return e.runFindAndModify(ctx, f.Database, cmd)
}

func (e *Executor) FindAndRemove(ctx context.Context, f FindAndRemove) (bson.D, errors.Error) {
	cmd := f.baseCommand()
	cmd = append(cmd, bson.E{Key: "remove", Value: true})
	return e.runFindAndModify(ctx, f.Database, cmd)
}

// runFindAndModify dispatches cmd as an OP_QUERY on `<db>.$cmd` with
// numberToReturn=-1, and unwraps the reply's "value".
func (e *Executor) runFindAndModify(ctx context.Context, database string, cmd bson.D) (bson.D, errors.Error) {
	corrID := uuid.NewString()

	bound, serr := e.sess.Checkout(ctx, topology.WriteSelector{})
	if serr != nil {
		return nil, serr
	}
	defer bound.Release()

	req := wire.Query{
		FullCollectionName: wire.CommandNamespace(database),
		NumberToReturn:     -1,
		Selector:           cmd,
	}

	reply, err := bound.Connection().Find(req)
	if err != nil {
		return nil, err
	}

	docs, derr := reply.Documents.All()
	if derr != nil {
		return nil, derr
	}
	if len(docs) == 0 {
		return nil, ErrorCommandFailure.Error(nil)
	}

	log.Debugf("findandmodify %s correlationId=%s", database, corrID)

	if serr := classifyCommandReply(docs[0]); serr != nil {
		return nil, serr
	}

	m := docs[0].Map()
	if value, ok := m["value"].(bson.D); ok {
		return value, nil
	}
	return nil, nil
}
