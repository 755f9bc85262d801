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

// Package session binds one request to a selected server: it asks the
// Cluster for a server matching a read/write selector, checks a Connection
// out of that server's Pool for the caller, and checks it back in once the
// caller is done. It carries no state across requests.
package session

import (
	"context"

	"github/sabouaram/mongocluster/connection"
	"github/sabouaram/mongocluster/errors"
	"github/sabouaram/mongocluster/topology"
	"github/sabouaram/mongocluster/uri"
)

// Cluster is the subset of topology.Cluster a Session needs, kept narrow so
// this package never forces a callback-shaped dependency back onto topology.
type Cluster interface {
	SelectServer(ctx context.Context, sel topology.Selector) (*topology.Server, errors.Error)
}

// Session is a stateless handle binding one request to a selected server:
// operation -> Session.Checkout(selector) -> Cluster -> server proxy ->
// Connection.
type Session struct {
	cluster Cluster
}

// New builds a Session over cluster. A Session holds no per-request state
// and is safe to share across goroutines and reuse across operations.
func New(cluster Cluster) *Session {
	return &Session{cluster: cluster}
}

// Bound is the server+connection pair checked out for one request. Callers
// must call Release exactly once, whether or not the request succeeded.
type Bound struct {
	srv  *topology.Server
	conn *connection.Conn
}

// Connection returns the checked-out connection an operation sends its
// wire message over.
func (b *Bound) Connection() *connection.Conn { return b.conn }

// Address returns the selected server's address, for logging/correlation.
func (b *Bound) Address() uri.ServerAddress { return b.srv.Address() }

// Release returns the connection to its server's pool. Safe to call once
// per successful Checkout.
func (b *Bound) Release() {
	b.srv.Checkin(b.conn)
}

// Checkout selects a server matching sel (blocking up to the cluster's
// maxWaitTime), then checks out a connection from that server's pool. The
// caller must Release the result.
func (s *Session) Checkout(ctx context.Context, sel topology.Selector) (*Bound, errors.Error) {
	srv, err := s.cluster.SelectServer(ctx, sel)
	if err != nil {
		return nil, err
	}

	conn, connErr := srv.Checkout(ctx)
	if connErr != nil {
		if ce, ok := connErr.(errors.Error); ok {
			return nil, ce
		}
		return nil, ErrorCheckoutFailed.Error(connErr)
	}

	return &Bound{srv: srv, conn: conn}, nil
}
