package security

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
)

// TLSConfig holds TLS file locations and options. The same shape serves
// both sides: a client verifies peers against CAFile and presents
// CertFile/KeyFile when set; a server presents CertFile/KeyFile and, when
// CAFile is set, requires client certificates signed by it.
type TLSConfig struct {
	// SkipVerify disables peer certificate verification on clients.
	SkipVerify bool   `yaml:"skip_verify" mapstructure:"skip_verify" json:"skip_verify"`
	CAFile     string `yaml:"ca_file" mapstructure:"ca_file" json:"ca_file"`
	CertFile   string `yaml:"cert_file" mapstructure:"cert_file" json:"cert_file"`
	KeyFile    string `yaml:"key_file" mapstructure:"key_file" json:"key_file"`
	// ServerName overrides the name verified by clients.
	ServerName string `yaml:"server_name" mapstructure:"server_name" json:"server_name"`
	// MinVersion defaults to TLS 1.2.
	MinVersion uint16 `yaml:"min_version" mapstructure:"min_version" json:"min_version"`
}

// Validate checks that the TLS configuration is consistent.
func (c *TLSConfig) Validate() error {
	if c == nil {
		return nil
	}
	if (c.CertFile != "") != (c.KeyFile != "") {
		return fmt.Errorf("security/tls: both cert_file and key_file must be provided together")
	}
	if c.MinVersion != 0 && (c.MinVersion < tls.VersionTLS10 || c.MinVersion > tls.VersionTLS13) {
		return fmt.Errorf("security/tls: unsupported min_version 0x%04x", c.MinVersion)
	}
	return nil
}

// IsEnabled reports whether any TLS setting is configured.
func (c *TLSConfig) IsEnabled() bool {
	if c == nil {
		return false
	}
	return c.SkipVerify || c.CAFile != "" || c.CertFile != "" || c.ServerName != ""
}

// Client builds a client-side *tls.Config. It returns nil when nothing is
// configured so callers keep their default transport.
func (c *TLSConfig) Client() (*tls.Config, error) {
	if !c.IsEnabled() {
		return nil, nil
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	cfg := &tls.Config{
		InsecureSkipVerify: c.SkipVerify, //nolint:gosec // opt-in for test endpoints
		ServerName:         c.ServerName,
		MinVersion:         c.minVersion(),
	}
	if c.CAFile != "" {
		pool, err := loadPool(c.CAFile)
		if err != nil {
			return nil, err
		}
		cfg.RootCAs = pool
	}
	if c.CertFile != "" {
		cert, err := c.keyPair()
		if err != nil {
			return nil, err
		}
		cfg.Certificates = []tls.Certificate{cert}
	}
	return cfg, nil
}

// Server builds a server-side *tls.Config. It returns nil when no
// certificate is configured, meaning plain HTTP.
func (c *TLSConfig) Server() (*tls.Config, error) {
	if c == nil || c.CertFile == "" {
		return nil, nil
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	cert, err := c.keyPair()
	if err != nil {
		return nil, err
	}
	cfg := &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   c.minVersion(),
	}
	if c.CAFile != "" {
		pool, err := loadPool(c.CAFile)
		if err != nil {
			return nil, err
		}
		cfg.ClientCAs = pool
		cfg.ClientAuth = tls.RequireAndVerifyClientCert
	}
	return cfg, nil
}

func (c *TLSConfig) minVersion() uint16 {
	if c.MinVersion == 0 {
		return tls.VersionTLS12
	}
	return c.MinVersion
}

func (c *TLSConfig) keyPair() (tls.Certificate, error) {
	cert, err := tls.LoadX509KeyPair(c.CertFile, c.KeyFile)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("security/tls: failed to load certificate: %w", err)
	}
	return cert, nil
}

func loadPool(caFile string) (*x509.CertPool, error) {
	ca, err := os.ReadFile(caFile)
	if err != nil {
		return nil, fmt.Errorf("security/tls: failed to read CA file: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(ca) {
		return nil, fmt.Errorf("security/tls: failed to parse CA certificate")
	}
	return pool, nil
}
