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
	"strings"

	"github.com/spf13/viper"

	"github/sabouaram/mongocluster/errors"
)

// LoadSettingsFile reads a ClientSettings from a config file (json/yaml/toml,
// whatever viper's codecs recognize from the extension) instead of a
// connection string. This is the out-of-band path for deployments that keep
// pool/heartbeat tuning in a config file rather than embedding it in the
// URI. Keys use the mapstructure tags declared on ClientSettings; an
// explicit Hosts/Database still comes from the file.
func LoadSettingsFile(path string) (ClientSettings, errors.Error) {
	s := DefaultClientSettings()

	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return s, ErrorLoadSettingsFile.Error(err)
	}

	if err := v.Unmarshal(&s); err != nil {
		return s, ErrorLoadSettingsFile.Error(err)
	}

	if hosts := v.GetStringSlice("hosts"); len(hosts) > 0 {
		s.Hosts = make([]ServerAddress, 0, len(hosts))
		for _, h := range hosts {
			host, portStr, hasPort := strings.Cut(h, ":")
			addr := NewServerAddress(host, DefaultPort)
			if hasPort {
				if parsed, e := parseHostList(host + ":" + portStr); e == nil && len(parsed) == 1 {
					addr = parsed[0]
				}
			}
			s.Hosts = append(s.Hosts, addr)
		}
	}

	if s.MaxWaitQueueSize == 0 {
		s.MaxWaitQueueSize = s.MaxPoolSize * 5
	}

	return s, nil
}
