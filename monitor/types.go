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

package monitor

import (
	"time"

	"github/sabouaram/mongocluster/uri"
)

// ServerType classifies a server by its isMaster response.
type ServerType uint8

const (
	Unknown ServerType = iota
	Standalone
	ReplicaSetPrimary
	ReplicaSetSecondary
	ReplicaSetArbiter
	ReplicaSetOther
	ReplicaSetGhost
	ShardRouter
)

func (t ServerType) String() string {
	switch t {
	case Standalone:
		return "Standalone"
	case ReplicaSetPrimary:
		return "ReplicaSetPrimary"
	case ReplicaSetSecondary:
		return "ReplicaSetSecondary"
	case ReplicaSetArbiter:
		return "ReplicaSetArbiter"
	case ReplicaSetOther:
		return "ReplicaSetOther"
	case ReplicaSetGhost:
		return "ReplicaSetGhost"
	case ShardRouter:
		return "ShardRouter"
	default:
		return "Unknown"
	}
}

// ServerDescription is the immutable snapshot one isMaster probe produces.
// A fresh value replaces the previous one on every publish; nothing ever
// mutates a published ServerDescription in place.
type ServerDescription struct {
	Address          uri.ServerAddress
	Type             ServerType
	CanonicalAddress uri.ServerAddress

	Hosts    []uri.ServerAddress
	Passives []uri.ServerAddress
	Arbiters []uri.ServerAddress

	Tags map[string]string

	SetName   string
	SetVersion int64
	Primary   uri.ServerAddress
	HasPrimary bool
	ElectionID string

	MinWireVersion   int32
	MaxWireVersion   int32
	MaxDocumentSize  int32
	MaxMessageSize   int32
	MaxWriteBatchSize int32

	RoundTripTime time.Duration

	OK               bool
	ConnectionError  error
}

// IsDataBearing reports whether this server type can serve reads/writes
// directly (excludes Arbiter, Ghost, and Unknown).
func (d ServerDescription) IsDataBearing() bool {
	switch d.Type {
	case Standalone, ReplicaSetPrimary, ReplicaSetSecondary, ShardRouter:
		return true
	default:
		return false
	}
}

// UnknownDescription is the placeholder a Monitor publishes before its
// first successful probe, and after any failed probe.
func UnknownDescription(addr uri.ServerAddress, connErr error) ServerDescription {
	return ServerDescription{
		Address:         addr,
		Type:            Unknown,
		OK:              false,
		ConnectionError: connErr,
	}
}
