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

// Package auth implements the per-mechanism authentication handshakes
// that run over a freshly opened Connection before it is offered to a
// pool: MongoCR, Plain, X509, and an external-plugin GSSAPI conversation.
package auth

import "github/sabouaram/mongocluster/errors"

const (
	ErrorHandshakeFailed errors.CodeError = iota + errors.MinPkgAuth
	ErrorUnsupportedMechanism
	ErrorMissingExternalMechanism
	ErrorMalformedServerResponse
)

func init() {
	if !errors.ExistInMapMessage(ErrorHandshakeFailed) {
		errors.RegisterIdFctMessage(ErrorHandshakeFailed, getMessage)
	}
}

func getMessage(code errors.CodeError) string {
	switch code {
	case errors.UnknownError:
		return ""
	case ErrorHandshakeFailed:
		return "authentication handshake failed"
	case ErrorUnsupportedMechanism:
		return "credential names an unsupported authentication mechanism"
	case ErrorMissingExternalMechanism:
		return "GSSAPI credential requires an external mechanism plugin"
	case ErrorMalformedServerResponse:
		return "authentication response document is malformed"
	}
	return ""
}
