package status

import (
	"github.com/kbukum/datafeed/security"
	"github.com/kbukum/datafeed/validation"
)

// Config configures the status HTTP server.
type Config struct {
	Enabled bool   `mapstructure:"enabled" json:"enabled"`
	Host    string `mapstructure:"host" json:"host"`
	// Port 0 picks a free port.
	Port         int `mapstructure:"port" json:"port"`
	ReadTimeout  int `mapstructure:"read_timeout" json:"read_timeout" validate:"gte=0"`   // seconds
	WriteTimeout int `mapstructure:"write_timeout" json:"write_timeout" validate:"gte=0"` // seconds
	IdleTimeout  int `mapstructure:"idle_timeout" json:"idle_timeout" validate:"gte=0"`   // seconds

	// TLS serves HTTPS when cert_file is set; ca_file adds client
	// certificate verification.
	TLS security.TLSConfig `mapstructure:"tls" json:"tls"`
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Host == "" {
		c.Host = "127.0.0.1"
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 15
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 15
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 60
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	if err := validation.New().Range("port", c.Port, 0, 65535).Validate(); err != nil {
		return err
	}
	return c.TLS.Validate()
}
