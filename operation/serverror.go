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
	"fmt"

	"github/sabouaram/mongocluster/bson"
	"github/sabouaram/mongocluster/errors"
)

// ServerError wraps a server-reported command failure, carrying the raw
// response document for inspection.
type ServerError struct {
	errors.Error
	Response bson.D
	// ServerCode is the server's own numeric error code (response "code"
	// field), distinct from this module's internal errors.CodeError
	// classification.
	ServerCode int32
}

// isOK reports whether a command/getLastError reply's "ok" field is truthy.
// The server encodes it as either a float64 1.0/0.0 or occasionally an
// int32; both are tolerated.
func isOK(m bson.M) bool {
	switch v := m["ok"].(type) {
	case float64:
		return v != 0
	case int32:
		return v != 0
	case int64:
		return v != 0
	case bool:
		return v
	}
	return true // absent "ok" on legacy write replies means "assume success"
}

// classifyCommandReply inspects a command reply (findandmodify, count,
// distinct, drop, ...) for ok:0 and turns it into a *ServerError, or nil on
// success.
func classifyCommandReply(reply bson.D) *ServerError {
	m := reply.Map()
	if isOK(m) {
		return nil
	}

	code := serverCode(m)
	errMsg, _ := m["errmsg"].(string)
	if errMsg == "" {
		errMsg, _ = m["err"].(string)
	}

	if isDuplicateKeyCode(code) {
		return &ServerError{Error: ErrorDuplicateKey.Error(fmt.Errorf("%s", errMsg)), Response: reply, ServerCode: code}
	}
	return &ServerError{Error: ErrorCommandFailure.Error(fmt.Errorf("%s", errMsg)), Response: reply, ServerCode: code}
}

// classifyGetLastErrorReply inspects a getLastError reply for the legacy
// write-acknowledgement failure shapes: a top-level "err", a duplicate-key
// "code", or a write-concern "wnote"/"wtimeout".
func classifyGetLastErrorReply(reply bson.D) *ServerError {
	m := reply.Map()

	if wtimeout, _ := m["wtimeout"].(bool); wtimeout {
		return &ServerError{Error: ErrorWriteConcern.Error(fmt.Errorf("write concern timed out")), Response: reply}
	}
	if wnote, ok := m["wnote"].(string); ok && wnote != "" {
		return &ServerError{Error: ErrorWriteConcern.Error(fmt.Errorf("%s", wnote)), Response: reply}
	}

	errMsg, hasErr := m["err"].(string)
	if !hasErr || errMsg == "" {
		return nil
	}

	code := serverCode(m)
	if isDuplicateKeyCode(code) {
		return &ServerError{Error: ErrorDuplicateKey.Error(fmt.Errorf("%s", errMsg)), Response: reply, ServerCode: code}
	}
	return &ServerError{Error: ErrorCommandFailure.Error(fmt.Errorf("%s", errMsg)), Response: reply, ServerCode: code}
}

func serverCode(m bson.M) int32 {
	switch v := m["code"].(type) {
	case int32:
		return v
	case int64:
		return int32(v)
	case float64:
		return int32(v)
	}
	return 0
}

// isDuplicateKeyCode matches the server's DuplicateKeyError code set.
func isDuplicateKeyCode(code int32) bool {
	switch code {
	case 11000, 11001, 12582:
		return true
	}
	return false
}
