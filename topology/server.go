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

package topology

import (
	"context"
	"sync/atomic"

	"github/sabouaram/mongocluster/connection"
	"github/sabouaram/mongocluster/monitor"
	"github/sabouaram/mongocluster/pool"
	"github/sabouaram/mongocluster/uri"
)

// Server is the per-address bundle: a connection pool, a dedicated
// heartbeat Monitor, and an activity counter tracking how many
// checked-out connections are currently in use.
type Server struct {
	addr    uri.ServerAddress
	pool    *pool.Pool
	monitor *monitor.Monitor
	active  int64
}

func newServer(addr uri.ServerAddress, opts connection.Options, poolSett pool.Settings, monSett monitor.Settings) *Server {
	p := pool.New(addr, opts, poolSett, connection.Dial)
	m := monitor.New(addr, opts, monSett, p, func(a uri.ServerAddress, o connection.Options) (*connection.Conn, error) {
		c, err := connection.Dial(a, o)
		if err != nil {
			return nil, err
		}
		return c, nil
	})
	m.Start()

	return &Server{addr: addr, pool: p, monitor: m}
}

// Address returns the server's address.
func (s *Server) Address() uri.ServerAddress { return s.addr }

// Description returns the Server's most recently published ServerDescription.
func (s *Server) Description() monitor.ServerDescription { return s.monitor.Current() }

// Checkout borrows a connection from this Server's pool, bumping the
// activity counter until the connection is checked back in.
func (s *Server) Checkout(ctx context.Context) (*connection.Conn, error) {
	c, err := s.pool.Checkout(ctx)
	if err != nil {
		return nil, err
	}
	atomic.AddInt64(&s.active, 1)
	return c, nil
}

// Checkin returns a connection borrowed via Checkout.
func (s *Server) Checkin(c *connection.Conn) {
	s.pool.Checkin(c)
	atomic.AddInt64(&s.active, -1)
}

// ActiveCount reports how many connections are currently checked out.
func (s *Server) ActiveCount() int64 { return atomic.LoadInt64(&s.active) }

func (s *Server) close() error {
	if s.monitor != nil {
		s.monitor.Stop()
	}
	if s.pool != nil {
		return s.pool.Close()
	}
	return nil
}
