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

import "github/sabouaram/mongocluster/bson"

// CommandRunner is the minimal surface a handshake needs from a
// Connection: run one command document against a database's `$cmd`
// namespace on the connection being authenticated, and get back the
// server's response document. connection.Conn implements this; keeping
// the dependency this narrow lets auth/ be unit tested against a fake
// without importing connection/ (which itself depends on auth/).
type CommandRunner interface {
	RunCommand(database string, cmd bson.D) (bson.D, error)
}

// ExternalMechanism is the opaque plugin GSSAPI delegates to; Kerberos/SSPI
// token exchange is treated as an opaque challenge-response plugin rather
// than implemented here. A real deployment supplies one backed by a
// Kerberos/SSPI library; none ships in this module.
type ExternalMechanism interface {
	// Step returns the next token to send given the server's last
	// challenge (nil on the first call), and whether the conversation
	// is complete from the client's point of view.
	Step(challenge []byte) (response []byte, done bool, err error)
}

func okField(doc bson.D) bool {
	v, ok := doc.Lookup("ok")
	if !ok {
		return false
	}
	switch n := v.(type) {
	case float64:
		return n == 1
	case int32:
		return n == 1
	case int64:
		return n == 1
	}
	return false
}
