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

package bson

import "github/sabouaram/mongocluster/errors"

const (
	ErrorTruncatedDocument errors.CodeError = iota + errors.MinPkgBSON
	ErrorUnknownElementType
	ErrorStringNotNullTerminated
	ErrorUnsupportedGoType
	ErrorDocumentTooLarge
	ErrorNegativeLength
)

func init() {
	if !errors.ExistInMapMessage(ErrorTruncatedDocument) {
		errors.RegisterIdFctMessage(ErrorTruncatedDocument, getMessage)
	}
}

func getMessage(code errors.CodeError) string {
	switch code {
	case errors.UnknownError:
		return ""
	case ErrorTruncatedDocument:
		return "bson document is shorter than its declared length"
	case ErrorUnknownElementType:
		return "bson element has an unrecognized type byte"
	case ErrorStringNotNullTerminated:
		return "bson string or cstring is missing its null terminator"
	case ErrorUnsupportedGoType:
		return "value has no bson encoding"
	case ErrorDocumentTooLarge:
		return "bson document exceeds the server's maxDocumentSize"
	case ErrorNegativeLength:
		return "bson declared length is negative"
	}
	return ""
}

// E is one document element: an ordered key/value pair.
type E struct {
	Key   string
	Value interface{}
}

// D is an ordered BSON document, the wire-accurate counterpart to a Go
// map: field order is preserved, which matters for commands where the
// first key names the command ("insert", "find", ...).
type D []E

// Map converts D to an M, discarding order. Useful for assertions in
// tests and for callers that only need keyed lookup.
func (d D) Map() M {
	m := make(M, len(d))
	for _, e := range d {
		m[e.Key] = e.Value
	}
	return m
}

// Lookup returns the value for key and whether it was present.
func (d D) Lookup(key string) (interface{}, bool) {
	for _, e := range d {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// M is an unordered BSON document, convenient for constructing filters and
// ad-hoc commands where field order is not wire-significant.
type M map[string]interface{}

// A is a BSON array: a Go slice is encoded as one directly, A exists for
// call sites that want to be explicit about intent.
type A []interface{}
