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
	"crypto/md5"
	"encoding/hex"

	"github/sabouaram/mongocluster/bson"
	"github/sabouaram/mongocluster/uri"
)

// mongoCR runs the legacy nonce/MD5 challenge-response handshake: getnonce,
// then authenticate with
// md5(nonce + username + md5(username + ":mongo:" + password)).
func mongoCR(conn CommandRunner, cred uri.Credential) error {
	nonceResp, err := conn.RunCommand(cred.Source, bson.D{{Key: "getnonce", Value: 1}})
	if err != nil {
		return ErrorHandshakeFailed.Error(err)
	}
	if !okField(nonceResp) {
		return ErrorHandshakeFailed.Error(nil)
	}

	nonce, ok := nonceResp.Lookup("nonce")
	nonceStr, isStr := nonce.(string)
	if !ok || !isStr {
		return ErrorMalformedServerResponse.Error(nil)
	}

	digestedPassword := md5Hex(cred.Username + ":mongo:" + cred.Password.String())
	key := md5Hex(nonceStr + cred.Username + digestedPassword)

	authResp, err := conn.RunCommand(cred.Source, bson.D{
		{Key: "authenticate", Value: 1},
		{Key: "user", Value: cred.Username},
		{Key: "nonce", Value: nonceStr},
		{Key: "key", Value: key},
	})
	if err != nil {
		return ErrorHandshakeFailed.Error(err)
	}
	if !okField(authResp) {
		return ErrorHandshakeFailed.Error(nil)
	}

	return nil
}

func md5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}
