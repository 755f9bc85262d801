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

package uri_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github/sabouaram/mongocluster/uri"
)

var _ = Describe("ClientSettings.Validate", func() {
	It("accepts the documented defaults plus one host", func() {
		s := uri.DefaultClientSettings()
		s.Hosts = []uri.ServerAddress{uri.NewServerAddress("localhost", uri.DefaultPort)}

		Expect(s.Validate()).To(BeNil())
	})

	It("rejects an empty host list", func() {
		s := uri.DefaultClientSettings()
		Expect(s.Validate()).ToNot(BeNil())
	})

	It("rejects min_pool_size greater than max_pool_size", func() {
		s := uri.DefaultClientSettings()
		s.Hosts = []uri.ServerAddress{uri.NewServerAddress("localhost", uri.DefaultPort)}
		s.MinPoolSize = 200
		s.MaxPoolSize = 100

		err := s.Validate()
		Expect(err).ToNot(BeNil())
		Expect(err.IsCode(uri.ErrorValidateSettings)).To(BeTrue())
	})

	It("rejects a non-positive max pool size", func() {
		s := uri.DefaultClientSettings()
		s.Hosts = []uri.ServerAddress{uri.NewServerAddress("localhost", uri.DefaultPort)}
		s.MaxPoolSize = 0

		Expect(s.Validate()).ToNot(BeNil())
	})
})

var _ = Describe("ServerAddress", func() {
	It("normalizes host case and fills in the default port", func() {
		a := uri.NewServerAddress("DB01.Internal", 0)
		Expect(a.Host).To(Equal("db01.internal"))
		Expect(a.Port).To(Equal(uri.DefaultPort))
		Expect(a.String()).To(Equal("db01.internal:27017"))
	})

	It("compares equal regardless of how it was constructed", func() {
		a := uri.NewServerAddress("db01", 27017)
		b := uri.NewServerAddress("DB01", 27017)
		Expect(a.Equal(b)).To(BeTrue())
	})
})
