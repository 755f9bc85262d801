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

// gssapi drives the iterated SASL conversation, delegating every actual
// token exchange to an external plugin (Kerberos/SSPI are explicitly out
// of scope) until the server reports done:true.
func gssapi(conn CommandRunner, cred uri.Credential, ext ExternalMechanism) error {
	if ext == nil {
		return ErrorMissingExternalMechanism.Error(nil)
	}

	token, clientDone, err := ext.Step(nil)
	if err != nil {
		return ErrorHandshakeFailed.Error(err)
	}

	resp, rerr := conn.RunCommand("$external", bson.D{
		{Key: "saslStart", Value: 1},
		{Key: "mechanism", Value: "GSSAPI"},
		{Key: "payload", Value: base64.StdEncoding.EncodeToString(token)},
	})
	if rerr != nil {
		return ErrorHandshakeFailed.Error(rerr)
	}

	for {
		if !okField(resp) {
			return ErrorHandshakeFailed.Error(nil)
		}

		done, _ := resp.Lookup("done")
		if serverDone, _ := done.(bool); serverDone && clientDone {
			return nil
		}

		challenge, _ := resp.Lookup("payload")
		challengeStr, _ := challenge.(string)
		challengeBytes, decErr := base64.StdEncoding.DecodeString(challengeStr)
		if decErr != nil {
			return ErrorMalformedServerResponse.Error(decErr)
		}

		conversationID, _ := resp.Lookup("conversationId")

		token, clientDone, err = ext.Step(challengeBytes)
		if err != nil {
			return ErrorHandshakeFailed.Error(err)
		}

		resp, rerr = conn.RunCommand("$external", bson.D{
			{Key: "saslContinue", Value: 1},
			{Key: "conversationId", Value: conversationID},
			{Key: "payload", Value: base64.StdEncoding.EncodeToString(token)},
		})
		if rerr != nil {
			return ErrorHandshakeFailed.Error(rerr)
		}
	}
}
