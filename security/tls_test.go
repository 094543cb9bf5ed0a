package security

import (
	"crypto/tls"
	"strings"
	"testing"

	"github.com/kbukum/datafeed/security/tlstest"
)

func TestClientNotConfigured(t *testing.T) {
	var nilCfg *TLSConfig
	for _, cfg := range []*TLSConfig{nilCfg, {}} {
		got, err := cfg.Client()
		if err != nil || got != nil {
			t.Errorf("expected nil config and no error, got %v, %v", got, err)
		}
	}
}

func TestClientSkipVerify(t *testing.T) {
	cfg := &TLSConfig{SkipVerify: true, ServerName: "minio.local"}
	got, err := cfg.Client()
	if err != nil {
		t.Fatalf("Client failed: %v", err)
	}
	if !got.InsecureSkipVerify || got.ServerName != "minio.local" {
		t.Errorf("unexpected config %+v", got)
	}
	if got.MinVersion != tls.VersionTLS12 {
		t.Errorf("expected TLS 1.2 minimum, got %x", got.MinVersion)
	}
}

func TestClientWithCAAndCert(t *testing.T) {
	certs := tlstest.Generate(t)
	cfg := &TLSConfig{CAFile: certs.CAFile, CertFile: certs.CertFile, KeyFile: certs.KeyFile, MinVersion: tls.VersionTLS13}
	got, err := cfg.Client()
	if err != nil {
		t.Fatalf("Client failed: %v", err)
	}
	if got.RootCAs == nil {
		t.Error("expected RootCAs from ca_file")
	}
	if len(got.Certificates) != 1 {
		t.Errorf("expected one client certificate, got %d", len(got.Certificates))
	}
	if got.MinVersion != tls.VersionTLS13 {
		t.Errorf("expected TLS 1.3 minimum, got %x", got.MinVersion)
	}
}

func TestClientErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  TLSConfig
		want string
	}{
		{"missing ca", TLSConfig{CAFile: "/nonexistent/ca.pem"}, "read CA file"},
		{"invalid ca", TLSConfig{CAFile: tlstest.InvalidPEM(t, "ca.pem")}, "parse CA certificate"},
		{"missing cert", TLSConfig{CertFile: "/nonexistent/cert.pem", KeyFile: "/nonexistent/key.pem"}, "load certificate"},
		{"cert without key", TLSConfig{CertFile: "/nonexistent/cert.pem"}, "provided together"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.cfg.Client()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Errorf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestServer(t *testing.T) {
	certs := tlstest.Generate(t)

	t.Run("no certificate means plain", func(t *testing.T) {
		got, err := (&TLSConfig{CAFile: certs.CAFile}).Server()
		if err != nil || got != nil {
			t.Errorf("expected nil config, got %v, %v", got, err)
		}
	})

	t.Run("certificate only", func(t *testing.T) {
		got, err := (&TLSConfig{CertFile: certs.CertFile, KeyFile: certs.KeyFile}).Server()
		if err != nil {
			t.Fatalf("Server failed: %v", err)
		}
		if len(got.Certificates) != 1 || got.ClientAuth != tls.NoClientCert {
			t.Errorf("unexpected config %+v", got)
		}
	})

	t.Run("ca requires client certificates", func(t *testing.T) {
		got, err := (&TLSConfig{CAFile: certs.CAFile, CertFile: certs.CertFile, KeyFile: certs.KeyFile}).Server()
		if err != nil {
			t.Fatalf("Server failed: %v", err)
		}
		if got.ClientAuth != tls.RequireAndVerifyClientCert || got.ClientCAs == nil {
			t.Errorf("expected mutual TLS, got %+v", got)
		}
	})
}

func TestValidate(t *testing.T) {
	var nilCfg *TLSConfig
	if err := nilCfg.Validate(); err != nil {
		t.Errorf("nil config should validate: %v", err)
	}
	if err := (&TLSConfig{KeyFile: "key.pem"}).Validate(); err == nil {
		t.Error("expected error for key without cert")
	}
	if err := (&TLSConfig{MinVersion: 0x0999}).Validate(); err == nil {
		t.Error("expected error for unknown min_version")
	}
}

func TestIsEnabled(t *testing.T) {
	var nilCfg *TLSConfig
	if nilCfg.IsEnabled() || (&TLSConfig{}).IsEnabled() {
		t.Error("empty config should not be enabled")
	}
	if !(&TLSConfig{CAFile: "ca.pem"}).IsEnabled() {
		t.Error("ca_file should enable TLS")
	}
}
