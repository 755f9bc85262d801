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
	"encoding/base64"

	"github/sabouaram/mongocluster/bson"
	"github/sabouaram/mongocluster/uri"
)

// plain runs the single-round SASL PLAIN handshake: payload is
// "\0user\0password", base64-encoded, sent as one saslStart.
func plain(conn CommandRunner, cred uri.Credential) error {
	raw := "\x00" + cred.Username + "\x00" + cred.Password.String()
	payload := base64.StdEncoding.EncodeToString([]byte(raw))

	resp, err := conn.RunCommand(cred.Source, bson.D{
		{Key: "saslStart", Value: 1},
		{Key: "mechanism", Value: "PLAIN"},
		{Key: "payload", Value: payload},
	})
	if err != nil {
		return ErrorHandshakeFailed.Error(err)
	}
	if !okField(resp) {
		return ErrorHandshakeFailed.Error(nil)
	}

	return nil
}
