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

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github/sabouaram/mongocluster/errors"
)

// Unmarshal decodes one BSON document from data into v, which must be a
// *D, *M, or a pointer to a struct with `bson:"..."` tags.
func Unmarshal(data []byte, v interface{}) errors.Error {
	d, _, err := readDocument(data)
	if err != nil {
		return err
	}

	switch t := v.(type) {
	case *D:
		*t = d
		return nil
	case *M:
		*t = d.Map()
		return nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return ErrorUnsupportedGoType.Error(fmt.Errorf("unmarshal target must be a non-nil pointer, got %T", v))
	}

	return decodeIntoStruct(d, rv.Elem())
}

// readDocument decodes one length-prefixed BSON document starting at
// data[0], returning the elements and the number of bytes consumed.
func readDocument(data []byte) (D, int, errors.Error) {
	if len(data) < 5 {
		return nil, 0, ErrorTruncatedDocument.Error(nil)
	}

	length := int32(binary.LittleEndian.Uint32(data[0:4]))
	if length < 5 {
		return nil, 0, ErrorNegativeLength.Error(nil)
	}
	if int(length) > len(data) {
		return nil, 0, ErrorTruncatedDocument.Error(nil)
	}

	body := data[4:length]
	var out D

	pos := 0
	for pos < len(body) {
		if body[pos] == 0x00 {
			pos++
			break
		}

		elemType := Type(body[pos])
		pos++

		keyEnd := bytes.IndexByte(body[pos:], 0x00)
		if keyEnd < 0 {
			return nil, 0, ErrorStringNotNullTerminated.Error(nil)
		}
		key := string(body[pos : pos+keyEnd])
		pos += keyEnd + 1

		val, n, err := readValue(elemType, body[pos:])
		if err != nil {
			return nil, 0, err
		}
		pos += n

		out = append(out, E{Key: key, Value: val})
	}

	return out, int(length), nil
}

func readValue(t Type, b []byte) (interface{}, int, errors.Error) {
	switch t {
	case TypeDouble:
		if len(b) < 8 {
			return nil, 0, ErrorTruncatedDocument.Error(nil)
		}
		return math.Float64frombits(binary.LittleEndian.Uint64(b[:8])), 8, nil

	case TypeString, TypeJavaScript, TypeSymbol:
		s, n, err := readString(b)
		if err != nil {
			return nil, 0, err
		}
		switch t {
		case TypeJavaScript:
			return JavaScript(s), n, nil
		case TypeSymbol:
			return Symbol(s), n, nil
		}
		return s, n, nil

	case TypeEmbeddedDocument:
		d, n, err := readDocument(b)
		return d, n, err

	case TypeArray:
		d, n, err := readDocument(b)
		if err != nil {
			return nil, 0, err
		}
		arr := make(A, len(d))
		for i, e := range d {
			arr[i] = e.Value
		}
		return arr, n, nil

	case TypeBinary:
		if len(b) < 5 {
			return nil, 0, ErrorTruncatedDocument.Error(nil)
		}
		n := int32(binary.LittleEndian.Uint32(b[:4]))
		if n < 0 || int(n) > len(b)-5 {
			return nil, 0, ErrorTruncatedDocument.Error(nil)
		}
		subtype := BinarySubtype(b[4])
		data := append([]byte(nil), b[5:5+n]...)
		return Binary{Subtype: subtype, Data: data}, 5 + int(n), nil

	case TypeUndefined:
		return Undefined{}, 0, nil

	case TypeObjectID:
		if len(b) < 12 {
			return nil, 0, ErrorTruncatedDocument.Error(nil)
		}
		var id ObjectID
		copy(id[:], b[:12])
		return id, 12, nil

	case TypeBoolean:
		if len(b) < 1 {
			return nil, 0, ErrorTruncatedDocument.Error(nil)
		}
		return b[0] != 0, 1, nil

	case TypeDateTime:
		if len(b) < 8 {
			return nil, 0, ErrorTruncatedDocument.Error(nil)
		}
		return DateTime(int64(binary.LittleEndian.Uint64(b[:8]))), 8, nil

	case TypeNull:
		return nil, 0, nil

	case TypeRegex:
		pattern, n1, err := readCString(b)
		if err != nil {
			return nil, 0, err
		}
		options, n2, err := readCString(b[n1:])
		if err != nil {
			return nil, 0, err
		}
		return Regex{Pattern: pattern, Options: options}, n1 + n2, nil

	case TypeInt32:
		if len(b) < 4 {
			return nil, 0, ErrorTruncatedDocument.Error(nil)
		}
		return int32(binary.LittleEndian.Uint32(b[:4])), 4, nil

	case TypeTimestamp:
		if len(b) < 8 {
			return nil, 0, ErrorTruncatedDocument.Error(nil)
		}
		inc := binary.LittleEndian.Uint32(b[0:4])
		ts := binary.LittleEndian.Uint32(b[4:8])
		return Timestamp{T: ts, I: inc}, 8, nil

	case TypeInt64:
		if len(b) < 8 {
			return nil, 0, ErrorTruncatedDocument.Error(nil)
		}
		return int64(binary.LittleEndian.Uint64(b[:8])), 8, nil

	case TypeMinKey:
		return MinKey, 0, nil

	case TypeMaxKey:
		return MaxKey, 0, nil
	}

	return nil, 0, ErrorUnknownElementType.Error(fmt.Errorf("type byte 0x%02x", byte(t)))
}

func readString(b []byte) (string, int, errors.Error) {
	if len(b) < 4 {
		return "", 0, ErrorTruncatedDocument.Error(nil)
	}
	n := int32(binary.LittleEndian.Uint32(b[:4]))
	if n < 1 || int(4+n) > len(b) {
		return "", 0, ErrorTruncatedDocument.Error(nil)
	}
	if b[4+n-1] != 0x00 {
		return "", 0, ErrorStringNotNullTerminated.Error(nil)
	}
	return string(b[4 : 4+n-1]), int(4 + n), nil
}

func readCString(b []byte) (string, int, errors.Error) {
	i := bytes.IndexByte(b, 0x00)
	if i < 0 {
		return "", 0, ErrorStringNotNullTerminated.Error(nil)
	}
	return string(b[:i]), i + 1, nil
}

func decodeIntoStruct(d D, rv reflect.Value) errors.Error {
	if rv.Kind() != reflect.Struct {
		return ErrorUnsupportedGoType.Error(fmt.Errorf("unmarshal target must be a struct, got %s", rv.Kind()))
	}

	rt := rv.Type()
	byKey := make(map[string]int, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if f.PkgPath != "" {
			continue
		}
		key, _, skip := bsonFieldTag(f)
		if skip {
			continue
		}
		byKey[strings.ToLower(key)] = i
	}

	for _, e := range d {
		idx, ok := byKey[strings.ToLower(e.Key)]
		if !ok {
			continue
		}
		field := rv.Field(idx)
		if !field.CanSet() {
			continue
		}
		assignValue(field, e.Value)
	}

	return nil
}

// assignValue performs a best-effort conversion; fields whose Go type
// cannot hold the decoded value are left at their zero value rather than
// failing the whole document, matching the tolerant-decode behavior
// callers expect from reply documents with server-version-dependent
// extra fields.
func assignValue(field reflect.Value, v interface{}) {
	if v == nil {
		return
	}

	rv := reflect.ValueOf(v)

	if rv.Type().AssignableTo(field.Type()) {
		field.Set(rv)
		return
	}

	if rv.Type().ConvertibleTo(field.Type()) {
		switch field.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
			reflect.Float32, reflect.Float64, reflect.String, reflect.Bool:
			field.Set(rv.Convert(field.Type()))
			return
		}
	}

	if field.Kind() == reflect.Struct && rv.Type() == reflect.TypeOf(D{}) {
		decodeIntoStruct(v.(D), field)
	}
}
