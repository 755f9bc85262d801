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

package wire

import "github/sabouaram/mongocluster/errors"

const (
	ErrorFrameTooLarge errors.CodeError = iota + errors.MinPkgWire
	ErrorUnknownOpCode
	ErrorUnexpectedResponseTo
	ErrorTruncatedFrame
	ErrorBatchTooLarge
	ErrorQueryFailure
	ErrorCursorNotFound
)

func init() {
	if !errors.ExistInMapMessage(ErrorFrameTooLarge) {
		errors.RegisterIdFctMessage(ErrorFrameTooLarge, getMessage)
	}
}

func getMessage(code errors.CodeError) string {
	switch code {
	case errors.UnknownError:
		return ""
	case ErrorFrameTooLarge:
		return "outbound frame exceeds the server's maxMessageSize"
	case ErrorUnknownOpCode:
		return "frame header carries an unrecognized opCode"
	case ErrorUnexpectedResponseTo:
		return "reply responseTo does not match the outstanding requestId"
	case ErrorTruncatedFrame:
		return "frame is shorter than its declared length"
	case ErrorBatchTooLarge:
		return "a single document exceeds maxMessageSize and cannot be batched"
	case ErrorQueryFailure:
		return "server reported a query failure"
	case ErrorCursorNotFound:
		return "server reported the cursor was not found"
	}
	return ""
}
