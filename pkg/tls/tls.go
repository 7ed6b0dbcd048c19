package tls

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"

	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
)

// Files names the PEM files of one side of a connection
type Files struct {
	CertFile string
	KeyFile  string
	CAFile   string
}

// ServerConfig creates a TLS config for servers. With clientAuth the CA
// file is required and clients must present a certificate signed by it.
func ServerConfig(f Files, clientAuth bool) (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(f.CertFile, f.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load server certificate: %w", err)
	}

	config := &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}

	if clientAuth {
		pool, err := loadCAPool(f.CAFile)
		if err != nil {
			return nil, err
		}
		config.ClientCAs = pool
		config.ClientAuth = tls.RequireAndVerifyClientCert
	}

	return config, nil
}

// ClientConfig creates a TLS config for clients; the certificate pair is
// optional and only needed for mTLS.
func ClientConfig(f Files) (*tls.Config, error) {
	pool, err := loadCAPool(f.CAFile)
	if err != nil {
		return nil, err
	}

	config := &tls.Config{
		RootCAs:    pool,
		MinVersion: tls.VersionTLS12,
	}

	if f.CertFile != "" && f.KeyFile != "" {
		cert, err := tls.LoadX509KeyPair(f.CertFile, f.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load client certificate: %w", err)
		}
		config.Certificates = []tls.Certificate{cert}
	}

	return config, nil
}

// ServerCredentials returns mTLS gRPC credentials when enabled, nil otherwise
func ServerCredentials(enabled bool, f Files) (credentials.TransportCredentials, error) {
	if !enabled {
		return nil, nil
	}
	config, err := ServerConfig(f, true)
	if err != nil {
		return nil, err
	}
	return credentials.NewTLS(config), nil
}

// ClientCredentials returns mTLS gRPC credentials when enabled, plaintext otherwise
func ClientCredentials(enabled bool, f Files) (credentials.TransportCredentials, error) {
	if !enabled {
		return insecure.NewCredentials(), nil
	}
	config, err := ClientConfig(f)
	if err != nil {
		return nil, err
	}
	return credentials.NewTLS(config), nil
}

func loadCAPool(caFile string) (*x509.CertPool, error) {
	caCert, err := os.ReadFile(caFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA certificate: %w", err)
	}

	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caCert) {
		return nil, fmt.Errorf("failed to parse CA certificate")
	}
	return pool, nil
}
