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

// Package bson implements the BSON 1.0 document format used on the wire:
// ordered element encode/decode, a RawCursor over already-framed
// reply payloads, and the handful of non-scalar types the wire protocol
// and its commands depend on (ObjectID, Binary, Regex, Timestamp).
package bson

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"sync/atomic"
	"time"
)

// Type is a BSON element type tag, per the BSON 1.0 spec.
type Type byte

const (
	TypeDouble          Type = 0x01
	TypeString          Type = 0x02
	TypeEmbeddedDocument Type = 0x03
	TypeArray           Type = 0x04
	TypeBinary          Type = 0x05
	TypeUndefined       Type = 0x06 // deprecated
	TypeObjectID        Type = 0x07
	TypeBoolean         Type = 0x08
	TypeDateTime        Type = 0x09
	TypeNull            Type = 0x0A
	TypeRegex           Type = 0x0B
	TypeDBPointer       Type = 0x0C // deprecated
	TypeJavaScript      Type = 0x0D
	TypeSymbol          Type = 0x0E // deprecated
	TypeJavaScriptScope Type = 0x0F
	TypeInt32           Type = 0x10
	TypeTimestamp       Type = 0x11
	TypeInt64           Type = 0x12
	TypeDecimal128      Type = 0x13
	TypeMinKey          Type = 0xFF
	TypeMaxKey          Type = 0x7F
)

func (t Type) String() string {
	switch t {
	case TypeDouble:
		return "double"
	case TypeString:
		return "string"
	case TypeEmbeddedDocument:
		return "document"
	case TypeArray:
		return "array"
	case TypeBinary:
		return "binary"
	case TypeObjectID:
		return "objectId"
	case TypeBoolean:
		return "bool"
	case TypeDateTime:
		return "date"
	case TypeNull:
		return "null"
	case TypeRegex:
		return "regex"
	case TypeJavaScript:
		return "javascript"
	case TypeInt32:
		return "int32"
	case TypeTimestamp:
		return "timestamp"
	case TypeInt64:
		return "int64"
	case TypeDecimal128:
		return "decimal128"
	case TypeMinKey:
		return "minKey"
	case TypeMaxKey:
		return "maxKey"
	}
	return fmt.Sprintf("unknown(0x%02x)", byte(t))
}

// ObjectID is the 12-byte identifier: 4-byte timestamp, 5-byte random
// machine+process value, 3-byte counter.
type ObjectID [12]byte

var objectIDCounter uint32
var objectIDRandom = newRandom5()

func newRandom5() [5]byte {
	var b [5]byte
	_, _ = rand.Read(b[:])
	return b
}

// NewObjectID generates a new ObjectID following the standard layout.
func NewObjectID() ObjectID {
	var id ObjectID
	binary.BigEndian.PutUint32(id[0:4], uint32(time.Now().Unix()))
	copy(id[4:9], objectIDRandom[:])
	c := atomic.AddUint32(&objectIDCounter, 1)
	id[9] = byte(c >> 16)
	id[10] = byte(c >> 8)
	id[11] = byte(c)
	return id
}

func (id ObjectID) String() string {
	return hex.EncodeToString(id[:])
}

func (id ObjectID) IsZero() bool {
	return id == ObjectID{}
}

// ObjectIDFromHex parses the canonical 24-character hex representation.
func ObjectIDFromHex(s string) (ObjectID, error) {
	var id ObjectID
	b, err := hex.DecodeString(s)
	if err != nil {
		return id, err
	}
	if len(b) != 12 {
		return id, fmt.Errorf("bson: object id hex must decode to 12 bytes, got %d", len(b))
	}
	copy(id[:], b)
	return id, nil
}

// BinarySubtype identifies the interpretation of a Binary payload.
type BinarySubtype byte

const (
	BinaryGeneric  BinarySubtype = 0x00
	BinaryFunction BinarySubtype = 0x01
	BinaryOldUUID  BinarySubtype = 0x03
	BinaryUUID     BinarySubtype = 0x04
	BinaryMD5      BinarySubtype = 0x05
	BinaryUserDefined BinarySubtype = 0x80
)

// Binary is arbitrary byte data tagged with a subtype.
type Binary struct {
	Subtype BinarySubtype
	Data    []byte
}

// Regex is a BSON regular expression: pattern plus option flags (subset of
// "imxlsu", kept sorted alphabetically on encode per the spec).
type Regex struct {
	Pattern string
	Options string
}

// Timestamp is the internal replication timestamp type: a seconds value
// and an per-second ordinal, not a general-purpose date.
type Timestamp struct {
	T uint32
	I uint32
}

// DateTime is milliseconds since the Unix epoch, BSON's native datetime
// representation.
type DateTime int64

func NewDateTime(t time.Time) DateTime {
	return DateTime(t.UnixNano() / int64(time.Millisecond))
}

func (d DateTime) Time() time.Time {
	return time.UnixMilli(int64(d)).UTC()
}

// MinKey and MaxKey are BSON's comparison sentinels.
type minKeyType struct{}
type maxKeyType struct{}

var MinKey = minKeyType{}
var MaxKey = maxKeyType{}

// Undefined is the deprecated BSON undefined value, kept only so decode of
// legacy documents round-trips instead of failing.
type Undefined struct{}

// JavaScript is BSON code without scope.
type JavaScript string

// Symbol is the deprecated BSON symbol type, decoded as a plain string but
// kept distinct so re-encoding preserves the wire type.
type Symbol string
