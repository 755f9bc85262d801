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

package uri

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github/sabouaram/mongocluster/errors"
)

const scheme = "mongodb://"

// ParseResult is everything ParseURI extracts from a connection string.
type ParseResult struct {
	Settings    ClientSettings
	Credentials CredentialList
}

// ParseURI parses a mongodb:// connection string into a ClientSettings and
// CredentialList. It starts from DefaultClientSettings and overrides only
// what the string specifies.
func ParseURI(uri string) (ParseResult, errors.Error) {
	var res ParseResult
	res.Settings = DefaultClientSettings()

	if !strings.HasPrefix(uri, scheme) {
		return res, ErrorMissingScheme.Error(nil)
	}

	rest := uri[len(scheme):]

	// The last '/' separates authority (userinfo@hostlist) from
	// path/query. Absence of '/' with '?' present is an error.
	slash := strings.LastIndexByte(rest, '/')
	qmark := strings.IndexByte(rest, '?')

	var authority, pathQuery string
	if slash < 0 {
		if qmark >= 0 {
			return res, ErrorMissingSlash.Error(nil)
		}
		authority = rest
	} else {
		authority = rest[:slash]
		pathQuery = rest[slash+1:]
	}

	userinfo, hostlist := splitAuthority(authority)

	hosts, e := parseHostList(hostlist)
	if e != nil {
		return res, e
	}
	res.Settings.Hosts = hosts
	res.Settings.Mode = inferMode(hosts)

	database, rawOptions := splitPathQuery(pathQuery)
	res.Settings.Database = database

	opts, e := parseOptions(rawOptions)
	if e != nil {
		return res, e
	}

	cred, hasCred, e := parseUserinfo(userinfo, database)
	if e != nil {
		return res, e
	}

	if e := applyOptions(&res.Settings, &cred, hasCred, opts); e != nil {
		return res, e
	}

	if hasCred {
		res.Credentials = CredentialList{cred}
	}

	if e := res.Settings.Validate(); e != nil {
		return res, e
	}

	return res, nil
}

func splitAuthority(authority string) (userinfo, hostlist string) {
	if at := strings.LastIndexByte(authority, '@'); at >= 0 {
		return authority[:at], authority[at+1:]
	}
	return "", authority
}

func splitPathQuery(pathQuery string) (database, rawOptions string) {
	if q := strings.IndexByte(pathQuery, '?'); q >= 0 {
		return pathQuery[:q], pathQuery[q+1:]
	}
	return pathQuery, ""
}

func parseHostList(hostlist string) ([]ServerAddress, errors.Error) {
	if hostlist == "" {
		return nil, ErrorEmptyHostList.Error(nil)
	}

	parts := strings.Split(hostlist, ",")
	hosts := make([]ServerAddress, 0, len(parts))

	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			return nil, ErrorInvalidHost.Error(nil)
		}

		host, portStr, hasPort := strings.Cut(p, ":")
		host = strings.TrimSpace(host)
		if host == "" {
			return nil, ErrorInvalidHost.Error(nil)
		}

		port := DefaultPort
		if hasPort {
			n, err := strconv.ParseUint(strings.TrimSpace(portStr), 10, 16)
			if err != nil {
				return nil, ErrorInvalidPort.Error(err)
			}
			port = uint16(n)
		}

		hosts = append(hosts, NewServerAddress(host, port))
	}

	return hosts, nil
}

// inferMode applies the ClusterMode heuristic: a single host with no
// replicaSet option defaults to Single; everything else starts Unknown
// and is resolved to ReplicaSet/Sharded by observation. applyOptions may
// promote this to ReplicaSet once replicaSet= is seen.
func inferMode(hosts []ServerAddress) ClusterMode {
	if len(hosts) == 1 {
		return ModeSingle
	}
	return ModeUnknown
}

func parseOptions(raw string) (map[string][]string, errors.Error) {
	out := make(map[string][]string)
	if raw == "" {
		return out, nil
	}

	// ';' is accepted as a deprecated alternate separator alongside '&'.
	raw = strings.ReplaceAll(raw, ";", "&")

	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}

		k, v, _ := strings.Cut(pair, "=")

		key, err := url.QueryUnescape(k)
		if err != nil {
			return nil, ErrorInvalidOption.Error(err)
		}
		val, err := url.QueryUnescape(v)
		if err != nil {
			return nil, ErrorInvalidOption.Error(err)
		}

		key = strings.ToLower(strings.TrimSpace(key))
		out[key] = append(out[key], val)
	}

	return out, nil
}

func parseUserinfo(userinfo, database string) (Credential, bool, errors.Error) {
	if userinfo == "" {
		return Credential{}, false, nil
	}

	userPart, passPart, hasPass := strings.Cut(userinfo, ":")

	user, err := url.QueryUnescape(userPart)
	if err != nil {
		return Credential{}, false, ErrorInvalidOption.Error(err)
	}

	source := database
	if source == "" {
		source = "admin"
	}

	cred := Credential{Username: user, Source: source, Mechanism: MechMongoCR}

	if hasPass {
		pass, err := url.QueryUnescape(passPart)
		if err != nil {
			return Credential{}, false, ErrorInvalidOption.Error(err)
		}
		cred.Password = MutablePassword(pass)
	}

	return cred, true, nil
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes":
		return true
	}
	return false
}

func last(vals []string) string {
	if len(vals) == 0 {
		return ""
	}
	return vals[len(vals)-1]
}

func applyOptions(s *ClientSettings, cred *Credential, hasCred bool, opts map[string][]string) errors.Error {
	var (
		safeSet, wSet, wtimeoutSet, jSet, fsyncSet bool
		safeVal                                    bool
		wVal                                        string
		wtimeoutVal                                 time.Duration
		jVal, fsyncVal                              bool
		explicitReadPreference                      bool
		slaveOk                                     bool
		authMechanismSet                            bool
	)

	for key, vals := range opts {
		v := last(vals)

		switch key {
		case "maxpoolsize":
			if n, err := strconv.Atoi(v); err == nil {
				s.MaxPoolSize = n
			}
		case "minpoolsize":
			if n, err := strconv.Atoi(v); err == nil {
				s.MinPoolSize = n
			}
		case "waitqueuemultiple":
			if n, err := strconv.Atoi(v); err == nil {
				s.MaxWaitQueueSize = s.MaxPoolSize * n
			}
		case "waitqueuetimeoutms":
			if n, err := strconv.Atoi(v); err == nil {
				s.MaxWaitTime = time.Duration(n) * time.Millisecond
			}
		case "connecttimeoutms":
			if n, err := strconv.Atoi(v); err == nil {
				s.ConnectTimeout = time.Duration(n) * time.Millisecond
			}
		case "sockettimeoutms":
			if n, err := strconv.Atoi(v); err == nil {
				s.SocketTimeout = time.Duration(n) * time.Millisecond
			}
		case "maxidletimems":
			if n, err := strconv.Atoi(v); err == nil {
				s.MaxConnectionIdleTime = time.Duration(n) * time.Millisecond
			}
		case "maxlifetimems":
			if n, err := strconv.Atoi(v); err == nil {
				s.MaxConnectionLifeTime = time.Duration(n) * time.Millisecond
			}
		case "ssl":
			s.SSLEnabled = isTruthy(v)
		case "replicaset":
			s.RequiredSetName = v
			if s.Mode != ModeSharded {
				s.Mode = ModeReplicaSet
			}
		case "slaveok":
			slaveOk = isTruthy(v)
		case "readpreference":
			mode, ok := ParseReadMode(v)
			if !ok {
				return ErrorInvalidReadPreference.Error(nil)
			}
			s.ReadPreference.Mode = mode
			explicitReadPreference = true
		case "readpreferencetags":
			for _, tagVal := range vals {
				s.ReadPreference.TagSets = append(s.ReadPreference.TagSets, parseTagSet(tagVal))
			}
		case "safe":
			safeSet = true
			safeVal = isTruthy(v)
		case "w":
			wSet = true
			wVal = v
		case "wtimeout", "wtimeoutms":
			wtimeoutSet = true
			if n, err := strconv.Atoi(v); err == nil {
				wtimeoutVal = time.Duration(n) * time.Millisecond
			}
		case "fsync":
			fsyncSet = true
			fsyncVal = isTruthy(v)
		case "j":
			jSet = true
			jVal = isTruthy(v)
		case "authmechanism":
			mech, ok := ParseAuthMechanism(v)
			if !ok {
				// Unknown mechanisms are deferred to handshake time,
				// not rejected here.
				continue
			}
			authMechanismSet = true
			if hasCred {
				cred.Mechanism = mech
			}
		case "authsource":
			if hasCred {
				cred.Source = v
			}
		default:
			if s.Unrecognized == nil {
				s.Unrecognized = map[string]string{}
			}
			s.Unrecognized[key] = v
		}
	}

	if !explicitReadPreference && slaveOk {
		s.ReadPreference.Mode = ReadSecondaryPreferred
	}

	if wSet || wtimeoutSet || fsyncSet || jSet {
		wc := WriteConcern{WTimeout: wtimeoutVal, J: jVal, FSync: fsyncVal}
		if wSet {
			if n, err := strconv.Atoi(wVal); err == nil {
				wc.W = WNumeric(n)
			} else {
				wc.W = WMajority()
			}
		} else {
			wc.W = WNumeric(1)
		}
		s.WriteConcern = wc
	} else if safeSet {
		if safeVal {
			s.WriteConcern = AcknowledgedWriteConcern()
		} else {
			s.WriteConcern = UnacknowledgedWriteConcern()
		}
	}

	if hasCred && !authMechanismSet {
		cred.Mechanism = MechMongoCR
	}

	if hasCred && (cred.Mechanism == MechGSSAPI || cred.Mechanism == MechX509) {
		// A supplied password is discarded for these mechanisms.
		cred.Password.Zero()
		cred.Password = nil
	}

	return nil
}

// parseTagSet parses one readPreferenceTags value: a comma-separated list
// of k:v pairs, or "" to mean "match any".
func parseTagSet(v string) TagSet {
	ts := TagSet{}
	v = strings.TrimSpace(v)
	if v == "" {
		return ts
	}
	for _, kv := range strings.Split(v, ",") {
		k, val, ok := strings.Cut(kv, ":")
		if !ok {
			continue
		}
		ts[strings.TrimSpace(k)] = strings.TrimSpace(val)
	}
	return ts
}
