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

// Package connection implements one authenticated TCP channel to a
// single server: dial, optional TLS, per-credential authentication, and
// framed send/receive with socket timeouts. A Connection is owned by
// exactly one caller at a time; pool/ is the only thing that checks one
// out and back in.
package connection

import "github/sabouaram/mongocluster/errors"

const (
	ErrorDialFailed errors.CodeError = iota + errors.MinPkgConnection
	ErrorTLSConfig
	ErrorSocketReadTimeout
	ErrorSocketWriteTimeout
	ErrorPoisoned
	ErrorAuthenticationFailed
	ErrorProtocol
)

func init() {
	if !errors.ExistInMapMessage(ErrorDialFailed) {
		errors.RegisterIdFctMessage(ErrorDialFailed, getMessage)
	}
}

func getMessage(code errors.CodeError) string {
	switch code {
	case errors.UnknownError:
		return ""
	case ErrorDialFailed:
		return "unable to open a tcp connection to the server"
	case ErrorTLSConfig:
		return "tls configuration could not be built"
	case ErrorSocketReadTimeout:
		return "socket read exceeded its timeout"
	case ErrorSocketWriteTimeout:
		return "socket write exceeded its timeout"
	case ErrorPoisoned:
		return "connection was poisoned by a previous i/o error"
	case ErrorAuthenticationFailed:
		return "authentication failed on a freshly opened connection"
	case ErrorProtocol:
		return "server response violated the wire protocol"
	}
	return ""
}
