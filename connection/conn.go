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
	"fmt"
	"net"
	"sync"
	"time"

	"github/sabouaram/mongocluster/auth"
	"github/sabouaram/mongocluster/bson"
	"github/sabouaram/mongocluster/errors"
	"github/sabouaram/mongocluster/logger"
	"github/sabouaram/mongocluster/uri"
	"github/sabouaram/mongocluster/wire"
)

var log = logger.New("connection")

// Conn is one authenticated TCP (or TLS) channel to a single mongod/mongos
// process. It is not safe for concurrent Send/Receive pairs: the owner
// (pool.Pooled or the monitor's heartbeat goroutine) must serialize its own
// request/reply cycles, since only one request may be in flight per
// connection at a time.
type Conn struct {
	id   ID
	addr uri.ServerAddress

	mu       sync.Mutex
	netConn  net.Conn
	poisoned bool

	createdAt  time.Time
	lastUsedAt time.Time

	socketTimeout time.Duration
	requestIDs    wire.RequestIDGenerator
}

// Dial opens a TCP stream to addr, upgrades it to TLS when opts.TLSConfig is
// set, and runs the authentication handshake for every credential in
// opts.Credentials in order before returning a ready Conn.
func Dial(addr uri.ServerAddress, opts Options) (*Conn, errors.Error) {
	dialer := net.Dialer{Timeout: opts.ConnectTimeout, KeepAlive: opts.SocketKeepAlive}

	raw, err := dialer.Dial("tcp", addr.String())
	if err != nil {
		return nil, ErrorDialFailed.Error(err)
	}

	var netConn net.Conn = raw
	if opts.TLSConfig != nil {
		tlsConn := tls.Client(raw, opts.TLSConfig)
		if herr := tlsConn.Handshake(); herr != nil {
			_ = raw.Close()
			return nil, ErrorTLSConfig.Error(herr)
		}
		netConn = tlsConn
	}

	now := time.Now()
	c := &Conn{
		id:            nextID(),
		addr:          addr,
		netConn:       netConn,
		createdAt:     now,
		lastUsedAt:    now,
		socketTimeout: opts.SocketTimeout,
	}

	for _, cred := range opts.Credentials {
		if aerr := auth.Authenticate(c, cred, opts.Plugins); aerr != nil {
			_ = netConn.Close()
			return nil, ErrorAuthenticationFailed.Error(aerr)
		}
	}

	log.Debugf("connection %d dialed to %s", c.id, addr.String())
	return c, nil
}

// New wraps an already-established net.Conn (e.g. one produced by a custom
// dialer, or a test double) as a Conn without running Dial's TLS/auth
// steps. Most callers want Dial; this is for pool/ and monitor/ tests that
// substitute a fake transport.
func New(addr uri.ServerAddress, netConn net.Conn) *Conn {
	now := time.Now()
	return &Conn{
		id:         nextID(),
		addr:       addr,
		netConn:    netConn,
		createdAt:  now,
		lastUsedAt: now,
	}
}

// ID returns the Conn's monotonic identifier.
func (c *Conn) ID() ID { return c.id }

// Address returns the server address this Conn is bound to.
func (c *Conn) Address() uri.ServerAddress { return c.addr }

// Age reports how long ago the Conn was dialed, for pool maintenance's
// maxLifeTimeMS check.
func (c *Conn) Age() time.Duration { return time.Since(c.createdAt) }

// IdleDuration reports how long the Conn has sat unused since its last
// Send/Receive cycle, for pool maintenance's maxIdleTimeMS check.
func (c *Conn) IdleDuration() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return time.Since(c.lastUsedAt)
}

// IsPoisoned reports whether a prior I/O or protocol error has marked this
// Conn unfit for reuse; the pool must close it on checkin rather than
// returning it to the available list.
func (c *Conn) IsPoisoned() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.poisoned
}

// Poison marks the Conn unfit for reuse. Subsequent Send/Receive calls fail
// immediately with ErrorPoisoned.
func (c *Conn) Poison() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.poisoned = true
}

// Close closes the underlying socket. Safe to call more than once.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.netConn.Close()
}

// send writes one frame using the next requestId and returns it, applying
// the socket write timeout.
func (c *Conn) send(opCode wire.OpCode, body []byte) (wire.Frame, errors.Error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.poisoned {
		return wire.Frame{}, ErrorPoisoned.Error(nil)
	}

	f := wire.Frame{RequestID: c.requestIDs.Next(), OpCode: opCode, Body: body}
	buf := wire.Encode(make([]byte, 0, wire.HeaderSize+len(body)), f)

	if c.socketTimeout > 0 {
		_ = c.netConn.SetWriteDeadline(time.Now().Add(c.socketTimeout))
	}

	if _, err := c.netConn.Write(buf); err != nil {
		c.poisoned = true
		return wire.Frame{}, ErrorSocketWriteTimeout.Error(err)
	}

	c.lastUsedAt = time.Now()
	return f, nil
}

// receive reads one reply frame from the socket, applying the socket read
// timeout.
func (c *Conn) receive() (wire.Frame, errors.Error) {
	c.mu.Lock()
	netConn := c.netConn
	timeout := c.socketTimeout
	c.mu.Unlock()

	if timeout > 0 {
		_ = netConn.SetReadDeadline(time.Now().Add(timeout))
	}

	f, err := wire.ReadFrame(netConn)
	if err != nil {
		c.mu.Lock()
		c.poisoned = true
		c.mu.Unlock()
		return wire.Frame{}, ErrorSocketReadTimeout.Error(err)
	}

	c.mu.Lock()
	c.lastUsedAt = time.Now()
	c.mu.Unlock()

	return f, nil
}

// RunCommand sends a legacy OP_QUERY against database's $cmd collection and
// returns the decoded reply document, implementing auth.CommandRunner so a
// Conn can drive its own authentication handshake.
func (c *Conn) RunCommand(database string, cmd bson.D) (bson.D, error) {
	r, err := c.execQuery(wire.Query{
		FullCollectionName: wire.CommandNamespace(database),
		NumberToReturn:     -1,
		Selector:           cmd,
	})
	if err != nil {
		return nil, err
	}

	doc, ok, ferr := r.FirstDocument()
	if ferr != nil {
		return nil, ferr
	}
	if !ok {
		return nil, ErrorProtocol.Error(fmt.Errorf("command %q returned no documents", database))
	}

	return doc, nil
}

// Find sends an OP_QUERY against a collection namespace and returns the
// decoded reply (cursor id plus first batch).
func (c *Conn) Find(q wire.Query) (wire.Reply, errors.Error) {
	return c.execQuery(q)
}

// GetMore sends an OP_GET_MORE and returns the decoded reply, following
// the cursor-iteration rule.
func (c *Conn) GetMore(g wire.GetMore) (wire.Reply, errors.Error) {
	body, err := wire.EncodeGetMore(g)
	if err != nil {
		return wire.Reply{}, err
	}
	return c.sendAndReceive(wire.OpGetMore, body)
}

// Insert sends an OP_INSERT. The server never replies to OP_INSERT;
// callers that need acknowledgement chain a getLastError command via
// RunCommand on the same connection.
func (c *Conn) Insert(in wire.Insert) errors.Error {
	body, err := wire.EncodeInsert(in)
	if err != nil {
		return err
	}
	_, err = c.send(wire.OpInsert, body)
	return err
}

// Update sends an OP_UPDATE. See Insert's acknowledgement note.
func (c *Conn) Update(u wire.Update) errors.Error {
	body, err := wire.EncodeUpdate(u)
	if err != nil {
		return err
	}
	_, err = c.send(wire.OpUpdate, body)
	return err
}

// Delete sends an OP_DELETE. See Insert's acknowledgement note.
func (c *Conn) Delete(d wire.Delete) errors.Error {
	body, err := wire.EncodeDelete(d)
	if err != nil {
		return err
	}
	_, err = c.send(wire.OpDelete, body)
	return err
}

// KillCursors sends an OP_KILL_CURSORS. The server never replies.
func (c *Conn) KillCursors(k wire.KillCursors) errors.Error {
	body, err := wire.EncodeKillCursors(k)
	if err != nil {
		return err
	}
	_, err = c.send(wire.OpKillCursors, body)
	return err
}

// execQuery encodes and sends an OP_QUERY, then reads and decodes its
// OP_REPLY.
func (c *Conn) execQuery(q wire.Query) (wire.Reply, errors.Error) {
	body, err := wire.EncodeQuery(q)
	if err != nil {
		return wire.Reply{}, err
	}
	return c.sendAndReceive(wire.OpQuery, body)
}

// sendAndReceive writes one request frame and reads back the correlated
// reply, decoding its OP_REPLY body and surfacing CheckFlags' classified
// errors (CursorNotFound, QueryFailure) alongside the decoded Reply so
// callers that care (e.g. a cursor iterator) can still inspect it.
func (c *Conn) sendAndReceive(opCode wire.OpCode, body []byte) (wire.Reply, errors.Error) {
	req, err := c.send(opCode, body)
	if err != nil {
		return wire.Reply{}, err
	}

	reply, err := c.receive()
	if err != nil {
		return wire.Reply{}, err
	}

	if cerr := wire.Correlate(req.RequestID, reply); cerr != nil {
		c.Poison()
		return wire.Reply{}, cerr
	}

	r, derr := wire.DecodeReply(reply.Body)
	if derr != nil {
		c.Poison()
		return wire.Reply{}, derr
	}

	return r, r.CheckFlags()
}
