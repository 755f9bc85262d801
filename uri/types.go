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

// Package uri parses mongodb:// connection strings into a validated
// ClientSettings and a CredentialList.
package uri

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ServerAddress is a normalized host/port pair. Equality is by lowercase
// host plus port.
type ServerAddress struct {
	Host string `json:"host" yaml:"host"`
	Port uint16 `json:"port" yaml:"port"`
}

// DefaultPort is used whenever a host entry in the connection string omits
// an explicit port.
const DefaultPort uint16 = 27017

// NewServerAddress normalizes host/port into a ServerAddress.
func NewServerAddress(host string, port uint16) ServerAddress {
	if port == 0 {
		port = DefaultPort
	}
	return ServerAddress{Host: strings.ToLower(strings.TrimSpace(host)), Port: port}
}

func (a ServerAddress) String() string {
	return fmt.Sprintf("%s:%d", a.Host, a.Port)
}

// ParseServerAddress parses a single "host:port" (or bare "host") string,
// the form isMaster responses use for hosts/passives/arbiters/primary.
// Malformed entries fall back to DefaultPort rather than erroring, since a
// misbehaving entry here should not take down the whole heartbeat parse.
func ParseServerAddress(hostport string) ServerAddress {
	host, portStr, hasPort := strings.Cut(hostport, ":")
	port := DefaultPort
	if hasPort {
		if n, err := strconv.ParseUint(portStr, 10, 16); err == nil {
			port = uint16(n)
		}
	}
	return NewServerAddress(host, port)
}

// Equal reports whether two addresses refer to the same server.
func (a ServerAddress) Equal(b ServerAddress) bool {
	return a.Host == b.Host && a.Port == b.Port
}

// ClusterMode is the driver's best-known shape of the target deployment.
type ClusterMode uint8

const (
	ModeUnknown ClusterMode = iota
	ModeSingle
	ModeReplicaSet
	ModeSharded
)

func (m ClusterMode) String() string {
	switch m {
	case ModeSingle:
		return "Single"
	case ModeReplicaSet:
		return "ReplicaSet"
	case ModeSharded:
		return "Sharded"
	}
	return "Unknown"
}

// AuthMechanism identifies which Authenticator handshake a Credential uses.
type AuthMechanism uint8

const (
	MechDefault AuthMechanism = iota
	MechMongoCR
	MechPlain
	MechGSSAPI
	MechX509
)

func (m AuthMechanism) String() string {
	switch m {
	case MechMongoCR:
		return "MONGODB-CR"
	case MechPlain:
		return "PLAIN"
	case MechGSSAPI:
		return "GSSAPI"
	case MechX509:
		return "MONGODB-X509"
	}
	return "DEFAULT"
}

// ParseAuthMechanism maps a URI authMechanism value, case-insensitively.
func ParseAuthMechanism(s string) (AuthMechanism, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "MONGODB-CR":
		return MechMongoCR, true
	case "PLAIN":
		return MechPlain, true
	case "GSSAPI":
		return MechGSSAPI, true
	case "MONGODB-X509":
		return MechX509, true
	}
	return MechDefault, false
}

// MutablePassword is a password held as a byte slice so the caller can Zero
// it once the authentication handshake no longer needs it.
type MutablePassword []byte

// Zero overwrites every byte of the password with 0.
func (p MutablePassword) Zero() {
	for i := range p {
		p[i] = 0
	}
}

func (p MutablePassword) String() string {
	return string(p)
}

// Credential is one set of authentication material for one database.
type Credential struct {
	Mechanism AuthMechanism
	Username  string
	Source    string
	Password  MutablePassword
	// Properties carries mechanism-specific extras (e.g. GSSAPI SERVICE_NAME).
	Properties map[string]string
}

// CredentialList is the (at most one) credential parsed from a connection
// string. Kept as a slice to mirror the shape callers expect when
// credentials are later allowed to be supplied out-of-band.
type CredentialList []Credential

// Equal reports whether two credentials are semantically identical,
// including password bytes, for the URI round-trip property.
func (c Credential) Equal(o Credential) bool {
	if c.Mechanism != o.Mechanism || c.Username != o.Username || c.Source != o.Source {
		return false
	}
	if string(c.Password) != string(o.Password) {
		return false
	}
	if len(c.Properties) != len(o.Properties) {
		return false
	}
	for k, v := range c.Properties {
		if o.Properties[k] != v {
			return false
		}
	}
	return true
}

// ReadMode is the read-preference policy used for server selection.
type ReadMode uint8

const (
	ReadPrimary ReadMode = iota
	ReadPrimaryPreferred
	ReadSecondary
	ReadSecondaryPreferred
	ReadNearest
)

func (m ReadMode) String() string {
	switch m {
	case ReadPrimaryPreferred:
		return "primaryPreferred"
	case ReadSecondary:
		return "secondary"
	case ReadSecondaryPreferred:
		return "secondaryPreferred"
	case ReadNearest:
		return "nearest"
	}
	return "primary"
}

// ParseReadMode maps a URI readPreference value.
func ParseReadMode(s string) (ReadMode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "primary":
		return ReadPrimary, true
	case "primarypreferred":
		return ReadPrimaryPreferred, true
	case "secondary":
		return ReadSecondary, true
	case "secondarypreferred":
		return ReadSecondaryPreferred, true
	case "nearest":
		return ReadNearest, true
	}
	return ReadPrimary, false
}

// TagSet is a map of tags a server's description must be a
// superset of to satisfy a Read.Secondary/Nearest selector.
type TagSet map[string]string

// Matches reports whether every k:v pair in ts is present in tags.
func (ts TagSet) Matches(tags map[string]string) bool {
	for k, v := range ts {
		if tags[k] != v {
			return false
		}
	}
	return true
}

// ReadPreference is the policy used to select a server for a read.
type ReadPreference struct {
	Mode    ReadMode
	TagSets []TagSet
}

// PrimaryReadPreference is the default read preference.
func PrimaryReadPreference() ReadPreference {
	return ReadPreference{Mode: ReadPrimary}
}

// W is a write-concern acknowledgement level: either a numeric replica
// count or the literal "majority".
type W struct {
	Numeric  int
	Majority bool
	isSet    bool
}

func WNumeric(n int) W   { return W{Numeric: n, isSet: true} }
func WMajority() W       { return W{Majority: true, isSet: true} }
func (w W) IsSet() bool  { return w.isSet }

func (w W) String() string {
	if w.Majority {
		return "majority"
	}
	return fmt.Sprintf("%d", w.Numeric)
}

// WriteConcern is the durability contract for a write.
type WriteConcern struct {
	W        W
	WTimeout time.Duration
	J        bool
	FSync    bool
}

// AcknowledgedWriteConcern is the default write concern.
func AcknowledgedWriteConcern() WriteConcern {
	return WriteConcern{W: WNumeric(1)}
}

// UnacknowledgedWriteConcern is produced by safe=false with no other write
// concern option set.
func UnacknowledgedWriteConcern() WriteConcern {
	return WriteConcern{W: WNumeric(0)}
}

// IsAcknowledged reports whether the server is expected to confirm the
// write (w != 0).
func (wc WriteConcern) IsAcknowledged() bool {
	return !(wc.W.IsSet() && !wc.W.Majority && wc.W.Numeric == 0)
}
