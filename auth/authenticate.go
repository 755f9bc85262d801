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
	"github/sabouaram/mongocluster/errors"
	"github/sabouaram/mongocluster/logger"
	"github/sabouaram/mongocluster/uri"
)

var log = logger.New("auth")

// Plugins supplies per-credential external mechanisms (GSSAPI) a caller
// wants dispatched to. A credential without a matching entry fails with
// ErrorMissingExternalMechanism rather than silently skipping auth.
type Plugins map[string]ExternalMechanism

// Authenticate runs the handshake matching cred.Mechanism over conn. It
// must be called on a freshly opened connection before that connection
// is offered to any pool. Any failure means the caller must close the
// connection; this package never retries.
func Authenticate(conn CommandRunner, cred uri.Credential, plugins Plugins) errors.Error {
	log.Debugf("authenticating user=%s source=%s mechanism=%s", cred.Username, cred.Source, cred.Mechanism)

	var err error
	switch cred.Mechanism {
	case uri.MechMongoCR, uri.MechDefault:
		err = mongoCR(conn, cred)
	case uri.MechPlain:
		err = plain(conn, cred)
	case uri.MechX509:
		err = x509(conn, cred)
	case uri.MechGSSAPI:
		err = gssapi(conn, cred, plugins[cred.Username])
	default:
		return ErrorUnsupportedMechanism.Error(nil)
	}

	if err != nil {
		log.Warnf("authentication failed user=%s mechanism=%s: %v", cred.Username, cred.Mechanism, err)
		if e, ok := err.(errors.Error); ok {
			return e
		}
		return ErrorHandshakeFailed.Error(err)
	}

	return nil
}
