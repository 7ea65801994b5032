package core

import (
	"fmt"
	"strings"
	"time"
)

const (
	DefaultTransportKind    = "rest"
	DefaultTransportTimeout = 30 * time.Second
	defaultServiceName      = "dispatch"
)

const DefaultMaxResponseBodyBytes int64 = 10 << 20 // 10 MiB

type TransportConfig struct {
	Kind                 string            `koanf:"kind" mapstructure:"kind"`
	Timeout              time.Duration     `koanf:"timeout" mapstructure:"timeout"`
	MaxResponseBodyBytes int64             `koanf:"max_response_body_bytes" mapstructure:"max_response_body_bytes"`
	DefaultHeaders       map[string]string `koanf:"default_headers" mapstructure:"default_headers"`
}

type ActivityConfig struct {
	Disabled bool `koanf:"disabled" mapstructure:"disabled"`
}

type Config struct {
	ServiceName string          `koanf:"service_name" mapstructure:"service_name"`
	Unsigned    bool            `koanf:"unsigned" mapstructure:"unsigned"`
	Accept      string          `koanf:"accept" mapstructure:"accept"`
	Transport   TransportConfig `koanf:"transport" mapstructure:"transport"`
	Activity    ActivityConfig  `koanf:"activity" mapstructure:"activity"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName: defaultServiceName,
		Transport: TransportConfig{
			Kind:                 DefaultTransportKind,
			Timeout:              DefaultTransportTimeout,
			MaxResponseBodyBytes: DefaultMaxResponseBodyBytes,
			DefaultHeaders:       map[string]string{},
		},
		Activity: ActivityConfig{},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	if strings.TrimSpace(c.Transport.Kind) == "" {
		return fmt.Errorf("core: transport.kind is required")
	}
	if c.Transport.Timeout < 0 {
		return fmt.Errorf("core: transport.timeout is invalid: %s", c.Transport.Timeout)
	}
	if c.Transport.MaxResponseBodyBytes < 0 {
		return fmt.Errorf("core: transport.max_response_body_bytes is invalid: %d", c.Transport.MaxResponseBodyBytes)
	}
	return nil
}
