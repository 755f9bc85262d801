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
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github/sabouaram/mongocluster/errors"
)

// ClientSettings is the fully-resolved, immutable configuration for a
// cluster client. It is only ever produced by ParseURI or LoadSettingsFile;
// there is no public mutable builder, and every validator constraint below
// runs once, at ParseURI's end, never per-field.
type ClientSettings struct {
	Hosts    []ServerAddress `validate:"required,min=1" json:"hosts" yaml:"hosts"`
	Database string          `json:"database" yaml:"database"`

	Mode               ClusterMode `json:"mode" yaml:"mode"`
	RequiredSetName    string      `json:"required_replica_set_name" yaml:"required_replica_set_name"`

	MaxPoolSize      int `validate:"gt=0" mapstructure:"max_pool_size" json:"max_pool_size" yaml:"max_pool_size"`
	MinPoolSize      int `validate:"gte=0" mapstructure:"min_pool_size" json:"min_pool_size" yaml:"min_pool_size"`
	MaxWaitQueueSize int `validate:"gte=0" mapstructure:"max_wait_queue_size" json:"max_wait_queue_size" yaml:"max_wait_queue_size"`

	MaxWaitTime            time.Duration `mapstructure:"max_wait_time_ms" json:"max_wait_time_ms" yaml:"max_wait_time_ms"`
	MaxConnectionIdleTime  time.Duration `mapstructure:"max_connection_idle_time_ms" json:"max_connection_idle_time_ms" yaml:"max_connection_idle_time_ms"`
	MaxConnectionLifeTime  time.Duration `mapstructure:"max_connection_life_time_ms" json:"max_connection_life_time_ms" yaml:"max_connection_life_time_ms"`

	ConnectTimeout  time.Duration `mapstructure:"connect_timeout_ms" json:"connect_timeout_ms" yaml:"connect_timeout_ms"`
	SocketTimeout   time.Duration `mapstructure:"socket_timeout_ms" json:"socket_timeout_ms" yaml:"socket_timeout_ms"`
	SocketKeepAlive bool          `mapstructure:"socket_keep_alive" json:"socket_keep_alive" yaml:"socket_keep_alive"`

	SSLEnabled            bool   `mapstructure:"ssl" json:"ssl" yaml:"ssl"`
	SSLClientKeyFile       string `mapstructure:"ssl_client_key_file" json:"ssl_client_key_file" yaml:"ssl_client_key_file"`
	SSLClientKeyPassword   string `mapstructure:"ssl_client_key_password" json:"ssl_client_key_password" yaml:"ssl_client_key_password"`
	SSLCAFile              string `mapstructure:"ssl_ca_file" json:"ssl_ca_file" yaml:"ssl_ca_file"`

	HeartbeatFrequency              time.Duration `validate:"gt=0" mapstructure:"heartbeat_frequency_ms" json:"heartbeat_frequency_ms" yaml:"heartbeat_frequency_ms"`
	HeartbeatConnectRetryFrequency  time.Duration `validate:"gt=0" mapstructure:"heartbeat_connect_retry_frequency_ms" json:"heartbeat_connect_retry_frequency_ms" yaml:"heartbeat_connect_retry_frequency_ms"`
	HeartbeatConnectTimeout         time.Duration `mapstructure:"heartbeat_connect_timeout_ms" json:"heartbeat_connect_timeout_ms" yaml:"heartbeat_connect_timeout_ms"`
	HeartbeatSocketTimeout          time.Duration `mapstructure:"heartbeat_socket_timeout_ms" json:"heartbeat_socket_timeout_ms" yaml:"heartbeat_socket_timeout_ms"`

	WriteConcern   WriteConcern   `json:"write_concern" yaml:"write_concern"`
	ReadPreference ReadPreference `json:"read_preference" yaml:"read_preference"`

	// Unrecognized carries option keys ParseURI did not understand, so
	// callers can log them as warnings — unknown keys produce a log
	// warning, not a failure — without ParseURI itself depending on
	// logger/.
	Unrecognized map[string]string `json:"-" yaml:"-"`
}

// DefaultClientSettings returns the documented default configuration.
func DefaultClientSettings() ClientSettings {
	s := ClientSettings{
		Mode:                           ModeUnknown,
		MaxPoolSize:                    100,
		MinPoolSize:                    0,
		MaxWaitTime:                    120000 * time.Millisecond,
		MaxConnectionIdleTime:          0,
		MaxConnectionLifeTime:          0,
		ConnectTimeout:                 10000 * time.Millisecond,
		SocketTimeout:                  0,
		SocketKeepAlive:                false,
		SSLEnabled:                     false,
		HeartbeatFrequency:             5000 * time.Millisecond,
		HeartbeatConnectRetryFrequency: 10 * time.Millisecond,
		HeartbeatConnectTimeout:        20000 * time.Millisecond,
		HeartbeatSocketTimeout:         20000 * time.Millisecond,
		WriteConcern:                   AcknowledgedWriteConcern(),
		ReadPreference:                 PrimaryReadPreference(),
		Unrecognized:                   map[string]string{},
	}
	s.MaxWaitQueueSize = s.MaxPoolSize * 5
	return s
}

// Validate runs struct-tag constraints plus the cross-field checks that
// validator tags cannot express, exactly once, at finalize time — matching
// nabbar-golib/cluster/config.go's Config.Validate() idiom.
func (s ClientSettings) Validate() errors.Error {
	val := validator.New()
	err := val.Struct(s)

	out := ErrorValidateSettings.Error(nil)

	if e, ok := err.(*validator.InvalidValidationError); ok {
		return ErrorValidateSettings.Error(e)
	} else if err != nil {
		for _, e := range err.(validator.ValidationErrors) {
			out.Add(fmt.Errorf("client settings field '%s' failed constraint '%s'", e.Field(), e.ActualTag()))
		}
	}

	if s.MinPoolSize > s.MaxPoolSize {
		out.Add(fmt.Errorf("min_pool_size (%d) must not exceed max_pool_size (%d)", s.MinPoolSize, s.MaxPoolSize))
	}

	if out.HasParent() {
		return out
	}

	return nil
}
