// Package security builds TLS configurations for the datafeed transports:
// the S3 client (custom CA and client certificates for S3-compatible
// endpoints) and the status server (HTTPS, optionally verifying client
// certificates).
//
//	cfg := security.TLSConfig{CAFile: "/etc/minio/ca.pem"}
//	clientTLS, err := cfg.Client()
package security
