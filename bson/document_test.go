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

package bson_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github/sabouaram/mongocluster/bson"
)

type address struct {
	City string `bson:"city"`
	Zip  string `bson:"zip,omitempty"`
}

type person struct {
	Name    string   `bson:"name"`
	Age     int32    `bson:"age"`
	Active  bool     `bson:"active"`
	Tags    []string `bson:"tags"`
	Address address  `bson:"address"`
}

var _ = Describe("Marshal/Unmarshal round trip", func() {
	It("round-trips a D through encode and decode", func() {
		in := bson.D{
			{Key: "insert", Value: "orders"},
			{Key: "ordered", Value: true},
			{Key: "limit", Value: int32(10)},
			{Key: "ratio", Value: 0.5},
		}

		raw, err := bson.Marshal(in)
		Expect(err).To(BeNil())
		Expect(raw).ToNot(BeEmpty())

		var out bson.D
		Expect(bson.Unmarshal(raw, &out)).To(BeNil())

		m := out.Map()
		Expect(m["insert"]).To(Equal("orders"))
		Expect(m["ordered"]).To(Equal(true))
		Expect(m["limit"]).To(Equal(int32(10)))
		Expect(m["ratio"]).To(Equal(0.5))
	})

	It("round-trips a tagged struct with a nested document and an array", func() {
		in := person{
			Name:   "ada",
			Age:    30,
			Active: true,
			Tags:   []string{"eng", "admin"},
			Address: address{
				City: "paris",
			},
		}

		raw, err := bson.Marshal(in)
		Expect(err).To(BeNil())

		var out person
		Expect(bson.Unmarshal(raw, &out)).To(BeNil())

		Expect(out.Name).To(Equal("ada"))
		Expect(out.Age).To(Equal(int32(30)))
		Expect(out.Active).To(BeTrue())
		Expect(out.Address.City).To(Equal("paris"))
	})

	It("round-trips an ObjectID and a DateTime", func() {
		id := bson.NewObjectID()
		now := bson.NewDateTime(time.Now().Truncate(time.Millisecond))

		in := bson.D{{Key: "_id", Value: id}, {Key: "createdAt", Value: now}}
		raw, err := bson.Marshal(in)
		Expect(err).To(BeNil())

		var out bson.D
		Expect(bson.Unmarshal(raw, &out)).To(BeNil())
		m := out.Map()

		gotID, ok := m["_id"].(bson.ObjectID)
		Expect(ok).To(BeTrue())
		Expect(gotID).To(Equal(id))

		gotDate, ok := m["createdAt"].(bson.DateTime)
		Expect(ok).To(BeTrue())
		Expect(gotDate).To(Equal(now))
	})

	It("rejects a truncated document", func() {
		var out bson.D
		err := bson.Unmarshal([]byte{0x10, 0x00, 0x00, 0x00}, &out)
		Expect(err).ToNot(BeNil())
	})
})

var _ = Describe("RawCursor", func() {
	It("iterates back-to-back documents without decoding eagerly", func() {
		d1, _ := bson.Marshal(bson.D{{Key: "n", Value: int32(1)}})
		d2, _ := bson.Marshal(bson.D{{Key: "n", Value: int32(2)}})

		buf := append(append([]byte{}, d1...), d2...)
		cur := bson.NewRawCursor(buf)

		raw1, ok, err := cur.Next()
		Expect(err).To(BeNil())
		Expect(ok).To(BeTrue())

		dec1, err := raw1.Decode()
		Expect(err).To(BeNil())
		Expect(dec1.Map()["n"]).To(Equal(int32(1)))

		raw2, ok, err := cur.Next()
		Expect(err).To(BeNil())
		Expect(ok).To(BeTrue())
		dec2, _ := raw2.Decode()
		Expect(dec2.Map()["n"]).To(Equal(int32(2)))

		_, ok, err = cur.Next()
		Expect(err).To(BeNil())
		Expect(ok).To(BeFalse())
	})
})
