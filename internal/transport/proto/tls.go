package proto

import (
	"bufio"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/bamsammich/taskmap/internal/config"
)

// fingerprintPrefix precedes the base64 SHA-256 digest of a certificate.
const fingerprintPrefix = "SHA256:"

// GenerateSelfSignedCert creates a self-signed P-256 ECDSA certificate for
// the daemon's TCP listener, valid for 10 years. The certificate always
// names localhost and the loopback addresses; hosts adds further IP or DNS
// subject names.
func GenerateSelfSignedCert(hosts ...string) (tls.Certificate, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return tls.Certificate{}, err
	}

	serialNumber, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return tls.Certificate{}, err
	}

	template := &x509.Certificate{
		SerialNumber: serialNumber,
		Subject:      pkix.Name{CommonName: "taskmap daemon"},
		NotBefore:    time.Now().Add(-1 * time.Hour),
		NotAfter:     time.Now().Add(10 * 365 * 24 * time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		DNSNames:     []string{"localhost"},
		IPAddresses:  []net.IP{net.IPv4(127, 0, 0, 1), net.IPv6loopback},
	}
	for _, h := range hosts {
		switch ip := net.ParseIP(h); {
		case h == "" || h == "localhost":
		case ip != nil && ip.IsUnspecified():
		case ip != nil:
			template.IPAddresses = append(template.IPAddresses, ip)
		default:
			template.DNSNames = append(template.DNSNames, h)
		}
	}

	certDER, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		return tls.Certificate{}, err
	}
	certPEM, keyPEM, err := encodePEM(certDER, key)
	if err != nil {
		return tls.Certificate{}, err
	}
	return tls.X509KeyPair(certPEM, keyPEM)
}

func encodePEM(certDER []byte, key *ecdsa.PrivateKey) (certPEM, keyPEM []byte, err error) {
	keyDER, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		return nil, nil, err
	}
	certPEM = pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: certDER})
	keyPEM = pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER})
	return certPEM, keyPEM, nil
}

// LoadOrGenerateCert loads the daemon's cert/key pair, or generates and
// persists a self-signed pair for hosts when no certificate exists yet. A
// certificate file that exists but fails to load is an error rather than
// being replaced. Returns the certificate and its fingerprint.
func LoadOrGenerateCert(certPath, keyPath string, hosts ...string) (tls.Certificate, string, error) {
	if certPath == "" || keyPath == "" {
		return tls.Certificate{}, "", errors.New("certificate and key paths are required")
	}

	cert, err := tls.LoadX509KeyPair(certPath, keyPath)
	if err != nil {
		if _, statErr := os.Stat(certPath); statErr == nil {
			return tls.Certificate{}, "", fmt.Errorf("load cert %s: %w", certPath, err)
		}
		if cert, err = GenerateSelfSignedCert(hosts...); err != nil {
			return tls.Certificate{}, "", fmt.Errorf("generate cert: %w", err)
		}
		if err := persistCert(cert, certPath, keyPath); err != nil {
			return tls.Certificate{}, "", fmt.Errorf("persist cert: %w", err)
		}
		slog.Info("generated daemon certificate", "cert", certPath)
	}

	fp, err := CertFingerprint(cert)
	if err != nil {
		return tls.Certificate{}, "", err
	}
	return cert, fp, nil
}

func persistCert(cert tls.Certificate, certPath, keyPath string) error {
	ecKey, ok := cert.PrivateKey.(*ecdsa.PrivateKey)
	if !ok {
		return errors.New("expected ECDSA private key")
	}
	certPEM, keyPEM, err := encodePEM(cert.Certificate[0], ecKey)
	if err != nil {
		return err
	}

	for _, p := range []string{certPath, keyPath} {
		if err := os.MkdirAll(filepath.Dir(p), 0o700); err != nil {
			return err
		}
	}
	// Key first: a cert without its key would block regeneration.
	if err := os.WriteFile(keyPath, keyPEM, 0o600); err != nil {
		return fmt.Errorf("write key: %w", err)
	}
	//nolint:gosec // G306: the certificate is public
	if err := os.WriteFile(certPath, certPEM, 0o644); err != nil {
		return fmt.Errorf("write cert: %w", err)
	}
	return nil
}

// CertFingerprint returns the fingerprint of a TLS certificate in the
// format "SHA256:<base64>".
func CertFingerprint(cert tls.Certificate) (string, error) {
	if len(cert.Certificate) == 0 {
		return "", errors.New("no certificate data")
	}
	return fingerprint(cert.Certificate[0]), nil
}

func fingerprint(der []byte) string {
	h := sha256.Sum256(der)
	return fingerprintPrefix + base64.StdEncoding.EncodeToString(h[:])
}

// CertFingerprintFromConn extracts the SHA256 fingerprint from a TLS
// connection's peer certificate.
func CertFingerprintFromConn(conn *tls.Conn) (string, error) {
	state := conn.ConnectionState()
	if len(state.PeerCertificates) == 0 {
		return "", errors.New("no peer certificates")
	}
	return fingerprint(state.PeerCertificates[0].Raw), nil
}

// ClientTLSConfig returns a TLS config for connecting to a taskmap daemon.
// Chain verification is skipped (the cert is self-signed); callers pin the
// fingerprint after the handshake with VerifyFingerprint or KnownHosts.
func ClientTLSConfig() *tls.Config {
	return &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: true, //nolint:gosec // fingerprint verified after handshake
	}
}

// VerifyFingerprint checks that the TLS connection's peer cert matches the
// expected fingerprint. Returns nil on match.
func VerifyFingerprint(conn *tls.Conn, expected string) error {
	got, err := CertFingerprintFromConn(conn)
	if err != nil {
		return err
	}
	if got != expected {
		return fmt.Errorf(
			"TLS fingerprint mismatch: expected %s, got %s",
			expected, got,
		)
	}
	return nil
}

// KnownHosts is a trust-on-first-use store of daemon certificate
// fingerprints keyed by daemon address. The file holds one
// "address fingerprint" pair per line; blank lines and # comments are
// skipped.
type KnownHosts struct {
	entries map[string]string
	path    string
}

// DefaultKnownHostsPath returns known_hosts beside the config file.
func DefaultKnownHostsPath() string {
	cfg := config.ConfigPath()
	if cfg == "" {
		return ""
	}
	return filepath.Join(filepath.Dir(cfg), "known_hosts")
}

// LoadKnownHosts reads the known_hosts file at path, or at
// DefaultKnownHostsPath when path is empty. A missing file yields an empty
// store.
func LoadKnownHosts(path string) (*KnownHosts, error) {
	if path == "" {
		path = DefaultKnownHostsPath()
	}
	if path == "" {
		return nil, errors.New("cannot resolve known_hosts path")
	}
	kh := &KnownHosts{path: path, entries: make(map[string]string)}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return kh, nil
		}
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		host, fp, ok := strings.Cut(line, " ")
		fp = strings.TrimSpace(fp)
		if !ok || !strings.HasPrefix(fp, fingerprintPrefix) {
			return nil, fmt.Errorf("%s:%d: malformed entry", path, lineNo)
		}
		kh.entries[host] = fp
	}
	return kh, scanner.Err()
}

// Path returns the file backing the store.
func (kh *KnownHosts) Path() string { return kh.path }

// Lookup returns the fingerprint recorded for host.
func (kh *KnownHosts) Lookup(host string) (string, bool) {
	fp, ok := kh.entries[host]
	return fp, ok
}

// Hosts returns the recorded hosts in sorted order.
func (kh *KnownHosts) Hosts() []string {
	hosts := make([]string, 0, len(kh.entries))
	for host := range kh.entries {
		hosts = append(hosts, host)
	}
	slices.Sort(hosts)
	return hosts
}

// Verify accepts fingerprint for host if it matches the recorded one. An
// unknown host is recorded and accepted. A changed fingerprint is an error
// until the host is forgotten.
func (kh *KnownHosts) Verify(host, fingerprint string) error {
	existing, ok := kh.entries[host]
	if !ok {
		kh.entries[host] = fingerprint
		return kh.save()
	}
	if existing != fingerprint {
		return fmt.Errorf(
			"REMOTE HOST IDENTIFICATION HAS CHANGED for %s\n"+
				"Expected: %s\n"+
				"Got:      %s\n"+
				"Run 'taskmap hosts forget %s' to accept the new certificate",
			host, existing, fingerprint, host,
		)
	}
	return nil
}

// Forget drops host from the store. Forgetting an unknown host is an error.
func (kh *KnownHosts) Forget(host string) error {
	if _, ok := kh.entries[host]; !ok {
		return fmt.Errorf("%s is not a known host", host)
	}
	delete(kh.entries, host)
	return kh.save()
}

func (kh *KnownHosts) save() error {
	if err := os.MkdirAll(filepath.Dir(kh.path), 0o700); err != nil {
		return err
	}
	var b strings.Builder
	for _, host := range kh.Hosts() {
		fmt.Fprintf(&b, "%s %s\n", host, kh.entries[host])
	}
	return os.WriteFile(kh.path, []byte(b.String()), 0o600)
}
