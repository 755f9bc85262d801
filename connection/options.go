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

package connection

import (
	"crypto/tls"
	"time"

	"github/sabouaram/mongocluster/auth"
	"github/sabouaram/mongocluster/errors"
	"github/sabouaram/mongocluster/uri"
)

// Options carries everything Dial needs beyond the target address: timeouts,
// an optional TLS configuration, the credentials to authenticate with in
// order, and the external SASL plugins GSSAPI may need.
type Options struct {
	ConnectTimeout  time.Duration
	SocketTimeout   time.Duration
	SocketKeepAlive time.Duration

	TLSConfig *tls.Config

	Credentials uri.CredentialList
	Plugins     auth.Plugins
}

// OptionsFromSettings derives dial Options from a parsed ClientSettings,
// building the TLS configuration when ssl is enabled.
func OptionsFromSettings(s uri.ClientSettings, creds uri.CredentialList, plugins auth.Plugins) (Options, errors.Error) {
	opts := Options{
		ConnectTimeout:  s.ConnectTimeout,
		SocketTimeout:   s.SocketTimeout,
		SocketKeepAlive: 30 * time.Second,
		Credentials:     creds,
		Plugins:         plugins,
	}

	if s.SSLEnabled {
		cfg, err := BuildTLSConfig(s)
		if err != nil {
			return Options{}, err
		}
		opts.TLSConfig = cfg
	}

	return opts, nil
}
