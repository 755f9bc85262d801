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

package auth

import (
	"github/sabouaram/mongocluster/bson"
	"github/sabouaram/mongocluster/uri"
)

// x509 issues the authenticate command for MONGODB-X509: the credential
// carries no secret of its own, the already-completed TLS handshake on
// the connection is what proves identity.
func x509(conn CommandRunner, cred uri.Credential) error {
	resp, err := conn.RunCommand("$external", bson.D{
		{Key: "authenticate", Value: 1},
		{Key: "mechanism", Value: "MONGODB-X509"},
		{Key: "user", Value: cred.Username},
	})
	if err != nil {
		return ErrorHandshakeFailed.Error(err)
	}
	if !okField(resp) {
		return ErrorHandshakeFailed.Error(nil)
	}

	return nil
}
