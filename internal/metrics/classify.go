package metrics

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
	"net/url"
	"syscall"
)

// ErrorKind is the canonical taxonomy for transport-level request failures.
// A response carrying any HTTP status, including 4xx/5xx, is not an error
// kind: the tool transported it successfully.
type ErrorKind string

const (
	ErrorTimeout  ErrorKind = "timeout"
	ErrorConnect  ErrorKind = "connect"
	ErrorTLS      ErrorKind = "tls"
	ErrorProtocol ErrorKind = "protocol"
)

// Classify maps a transport error to its canonical kind. Timeouts are checked
// first so a handshake or dial that ran out of time is reported as a timeout
// rather than a connect failure.
func Classify(err error) ErrorKind {
	if err == nil {
		return ""
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		err = urlErr.Err
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrorTimeout
	}

	if isTLSError(err) {
		return ErrorTLS
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return ErrorConnect
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return ErrorConnect
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.EHOSTUNREACH) {
		return ErrorConnect
	}

	return ErrorProtocol
}

func isTLSError(err error) bool {
	var certErr *tls.CertificateVerificationError
	if errors.As(err, &certErr) {
		return true
	}
	var recordErr tls.RecordHeaderError
	if errors.As(err, &recordErr) {
		return true
	}
	var unknownAuthority x509.UnknownAuthorityError
	if errors.As(err, &unknownAuthority) {
		return true
	}
	var hostnameErr x509.HostnameError
	if errors.As(err, &hostnameErr) {
		return true
	}
	var invalidErr x509.CertificateInvalidError
	return errors.As(err, &invalidErr)
}
