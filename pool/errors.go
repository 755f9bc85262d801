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

// Package pool implements a bounded per-server connection pool: a LIFO
// free list bounded by maxPoolSize, a fairness wait queue bounded by
// maxWaitQueueSize, and a background maintenance loop that evicts idle or
// expired connections and tops the pool back up to minPoolSize.
package pool

import "github/sabouaram/mongocluster/errors"

const (
	ErrorPoolClosed errors.CodeError = iota + errors.MinPkgPool
	ErrorWaitQueueFull
	ErrorWaitQueueTimeout
	ErrorCheckoutDial
)

func init() {
	if !errors.ExistInMapMessage(ErrorPoolClosed) {
		errors.RegisterIdFctMessage(ErrorPoolClosed, getMessage)
	}
}

func getMessage(code errors.CodeError) string {
	switch code {
	case errors.UnknownError:
		return ""
	case ErrorPoolClosed:
		return "connection pool is closed"
	case ErrorWaitQueueFull:
		return "wait queue is full"
	case ErrorWaitQueueTimeout:
		return "timed out waiting for an available connection"
	case ErrorCheckoutDial:
		return "failed to dial a new connection during checkout"
	}
	return ""
}
