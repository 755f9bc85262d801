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
	"crypto/x509"
	"encoding/pem"
	"os"

	"github.com/youmark/pkcs8"

	"github/sabouaram/mongocluster/errors"
	"github/sabouaram/mongocluster/uri"
)

// BuildTLSConfig translates the SSL* settings of ClientSettings into a
// *tls.Config. The client key file may be an encrypted PKCS#8 key (mutual
// TLS deployments commonly ship these); SSLClientKeyPassword decrypts it
// via youmark/pkcs8 since crypto/tls.X509KeyPair cannot load one.
func BuildTLSConfig(s uri.ClientSettings) (*tls.Config, errors.Error) {
	if !s.SSLEnabled {
		return nil, nil
	}

	cfg := &tls.Config{MinVersion: tls.VersionTLS12}

	if s.SSLCAFile != "" {
		caBytes, err := os.ReadFile(s.SSLCAFile)
		if err != nil {
			return nil, ErrorTLSConfig.Error(err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caBytes) {
			return nil, ErrorTLSConfig.Error(nil)
		}
		cfg.RootCAs = pool
	}

	if s.SSLClientKeyFile != "" {
		cert, err := loadClientCertificate(s.SSLClientKeyFile, s.SSLClientKeyPassword)
		if err != nil {
			return nil, err
		}
		cfg.Certificates = []tls.Certificate{cert}
	}

	return cfg, nil
}

// loadClientCertificate reads a PEM file containing both the leaf
// certificate and its private key. When the key block is encrypted
// PKCS#8 ("ENCRYPTED PRIVATE KEY"), it is decrypted with password before
// being handed to tls.Certificate; a plain PKCS#8/PKCS#1 key is parsed
// directly.
func loadClientCertificate(path, password string) (tls.Certificate, errors.Error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return tls.Certificate{}, ErrorTLSConfig.Error(err)
	}

	var certDER [][]byte
	var keyDER []byte
	var keyEncrypted bool

	rest := raw
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			break
		}

		switch block.Type {
		case "CERTIFICATE":
			certDER = append(certDER, block.Bytes)
		case "ENCRYPTED PRIVATE KEY":
			keyDER = block.Bytes
			keyEncrypted = true
		case "PRIVATE KEY", "RSA PRIVATE KEY", "EC PRIVATE KEY":
			keyDER = block.Bytes
		}
	}

	if len(certDER) == 0 || keyDER == nil {
		return tls.Certificate{}, ErrorTLSConfig.Error(nil)
	}

	var keyPEM []byte
	if keyEncrypted {
		key, err := pkcs8.ParsePKCS8PrivateKey(keyDER, []byte(password))
		if err != nil {
			return tls.Certificate{}, ErrorTLSConfig.Error(err)
		}
		der, err := x509.MarshalPKCS8PrivateKey(key)
		if err != nil {
			return tls.Certificate{}, ErrorTLSConfig.Error(err)
		}
		keyPEM = pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})
	} else {
		keyPEM = pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: keyDER})
	}

	certPEM := make([]byte, 0, 512*len(certDER))
	for _, der := range certDER {
		certPEM = append(certPEM, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})...)
	}

	cert, cerr := tls.X509KeyPair(certPEM, keyPEM)
	if cerr != nil {
		return tls.Certificate{}, ErrorTLSConfig.Error(cerr)
	}
	return cert, nil
}
