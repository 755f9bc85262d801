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
	"encoding/binary"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"

	"github/sabouaram/mongocluster/errors"
)

// Marshal encodes v as a BSON document. v must be a D, an M, a struct (or
// pointer to struct), or anything implementing Marshaler.
func Marshal(v interface{}) ([]byte, errors.Error) {
	buf, err := appendDocument(nil, v)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// Marshaler lets a type own its BSON encoding.
type Marshaler interface {
	MarshalBSON() ([]byte, error)
}

func appendDocument(dst []byte, v interface{}) ([]byte, errors.Error) {
	if m, ok := v.(Marshaler); ok {
		raw, err := m.MarshalBSON()
		if err != nil {
			return nil, ErrorUnsupportedGoType.Error(err)
		}
		return append(dst, raw...), nil
	}

	elems, err := toElements(v)
	if err != nil {
		return nil, err
	}

	start := len(dst)
	dst = append(dst, 0, 0, 0, 0) // length placeholder

	for _, e := range elems {
		dst, err = appendElement(dst, e.Key, e.Value)
		if err != nil {
			return nil, err
		}
	}

	dst = append(dst, 0x00)
	binary.LittleEndian.PutUint32(dst[start:start+4], uint32(len(dst)-start))
	return dst, nil
}

// toElements normalizes any supported document-shaped value into an
// ordered element list.
func toElements(v interface{}) ([]E, errors.Error) {
	switch t := v.(type) {
	case D:
		return t, nil
	case M:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make([]E, 0, len(t))
		for _, k := range keys {
			out = append(out, E{Key: k, Value: t[k]})
		}
		return out, nil
	case nil:
		return nil, nil
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil, nil
		}
		rv = rv.Elem()
	}

	if rv.Kind() != reflect.Struct {
		return nil, ErrorUnsupportedGoType.Error(fmt.Errorf("cannot encode %T as a bson document", v))
	}

	rt := rv.Type()
	out := make([]E, 0, rt.NumField())

	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if f.PkgPath != "" { // unexported
			continue
		}

		key, omitempty, skip := bsonFieldTag(f)
		if skip {
			continue
		}

		fv := rv.Field(i)
		if omitempty && isEmptyValue(fv) {
			continue
		}

		out = append(out, E{Key: key, Value: fv.Interface()})
	}

	return out, nil
}

func bsonFieldTag(f reflect.StructField) (key string, omitempty bool, skip bool) {
	tag := f.Tag.Get("bson")
	if tag == "-" {
		return "", false, true
	}

	parts := strings.Split(tag, ",")
	key = parts[0]
	if key == "" {
		key = strings.ToLower(f.Name)
	}
	for _, opt := range parts[1:] {
		if opt == "omitempty" {
			omitempty = true
		}
	}
	return key, omitempty, false
}

func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String, reflect.Array:
		return v.Len() == 0
	case reflect.Map, reflect.Slice:
		return v.Len() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Interface, reflect.Ptr:
		return v.IsNil()
	}
	return false
}

func appendElement(dst []byte, key string, v interface{}) ([]byte, errors.Error) {
	typeByte, body, err := encodeValue(v)
	if err != nil {
		return nil, err
	}
	dst = append(dst, byte(typeByte))
	dst = append(dst, key...)
	dst = append(dst, 0x00)
	dst = append(dst, body...)
	return dst, nil
}

func encodeValue(v interface{}) (Type, []byte, errors.Error) {
	switch t := v.(type) {
	case nil:
		return TypeNull, nil, nil
	case float64:
		return TypeDouble, le64(math.Float64bits(t)), nil
	case float32:
		return TypeDouble, le64(math.Float64bits(float64(t))), nil
	case string:
		return TypeString, encodeString(t), nil
	case JavaScript:
		return TypeJavaScript, encodeString(string(t)), nil
	case Symbol:
		return TypeSymbol, encodeString(string(t)), nil
	case bool:
		if t {
			return TypeBoolean, []byte{1}, nil
		}
		return TypeBoolean, []byte{0}, nil
	case int:
		return encodeInt(int64(t))
	case int32:
		return TypeInt32, le32(uint32(t)), nil
	case int64:
		return TypeInt64, le64(uint64(t)), nil
	case uint32:
		return TypeInt32, le32(t), nil
	case uint64:
		return encodeInt(int64(t))
	case ObjectID:
		return TypeObjectID, append([]byte(nil), t[:]...), nil
	case DateTime:
		return TypeDateTime, le64(uint64(int64(t))), nil
	case Timestamp:
		b := le32(t.I)
		b = append(b, le32(t.T)...)
		return TypeTimestamp, b, nil
	case Regex:
		body := append([]byte(t.Pattern), 0x00)
		opts := sortedRegexOptions(t.Options)
		body = append(body, opts...)
		body = append(body, 0x00)
		return TypeRegex, body, nil
	case Binary:
		body := le32(uint32(len(t.Data)))
		body = append(body, byte(t.Subtype))
		body = append(body, t.Data...)
		return TypeBinary, body, nil
	case []byte:
		body := le32(uint32(len(t)))
		body = append(body, byte(BinaryGeneric))
		body = append(body, t...)
		return TypeBinary, body, nil
	case Undefined:
		return TypeUndefined, nil, nil
	case minKeyType:
		return TypeMinKey, nil, nil
	case maxKeyType:
		return TypeMaxKey, nil, nil
	case D, M:
		buf, err := appendDocument(nil, t)
		return TypeEmbeddedDocument, buf, err
	case A:
		buf, err := encodeArray([]interface{}(t))
		return TypeArray, buf, err
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		n := rv.Len()
		items := make([]interface{}, n)
		for i := 0; i < n; i++ {
			items[i] = rv.Index(i).Interface()
		}
		buf, err := encodeArray(items)
		return TypeArray, buf, err
	case reflect.Map, reflect.Struct, reflect.Ptr:
		buf, err := appendDocument(nil, v)
		return TypeEmbeddedDocument, buf, err
	}

	return 0, nil, ErrorUnsupportedGoType.Error(fmt.Errorf("unsupported bson value type %T", v))
}

func encodeInt(n int64) (Type, []byte, errors.Error) {
	if n >= math.MinInt32 && n <= math.MaxInt32 {
		return TypeInt32, le32(uint32(int32(n))), nil
	}
	return TypeInt64, le64(uint64(n)), nil
}

func encodeArray(items []interface{}) ([]byte, errors.Error) {
	dst := make([]byte, 4)

	for i, it := range items {
		var err errors.Error
		dst, err = appendElement(dst, fmt.Sprintf("%d", i), it)
		if err != nil {
			return nil, err
		}
	}

	dst = append(dst, 0x00)
	binary.LittleEndian.PutUint32(dst[0:4], uint32(len(dst)))
	return dst, nil
}

func encodeString(s string) []byte {
	b := le32(uint32(len(s) + 1))
	b = append(b, s...)
	b = append(b, 0x00)
	return b
}

func le32(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

func le64(v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return b
}

// sortedRegexOptions enforces the wire format's requirement that option
// flags be written in alphabetical order.
func sortedRegexOptions(opts string) []byte {
	r := []byte(opts)
	sort.Slice(r, func(i, j int) bool { return r[i] < r[j] })
	return r
}
