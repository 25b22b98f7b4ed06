package fetch

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
)

// ErrorKind tags fetch failures for error reporting.
type ErrorKind string

const (
	KindTimeout    ErrorKind = "timeout"
	KindDNS        ErrorKind = "dns"
	KindTLS        ErrorKind = "tls"
	KindHTTP4xx    ErrorKind = "http_4xx"
	KindHTTP5xx    ErrorKind = "http_5xx"
	KindConnection ErrorKind = "connection"
)

// Error is the failure type returned by all fetch paths.
type Error struct {
	Kind   ErrorKind
	URL    string
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: %s (status %d)", e.URL, e.Kind, e.Status)
	}
	return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// statusError builds an Error from a non-2xx HTTP status.
func statusError(url string, status int) *Error {
	kind := KindHTTP5xx
	if status >= 400 && status < 500 {
		kind = KindHTTP4xx
	}
	return &Error{Kind: kind, URL: url, Status: status, Err: fmt.Errorf("received status %d", status)}
}

// classifyError maps transport failures onto the error taxonomy.
func classifyError(url string, err error) *Error {
	var fe *Error
	if errors.As(err, &fe) {
		return fe
	}

	kind := KindConnection
	var dnsErr *net.DNSError
	var certErr *tls.CertificateVerificationError
	var unknownAuthErr x509.UnknownAuthorityError
	var hostErr x509.HostnameError

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		kind = KindTimeout
	case errors.As(err, &dnsErr):
		kind = KindDNS
	case errors.As(err, &certErr), errors.As(err, &unknownAuthErr), errors.As(err, &hostErr):
		kind = KindTLS
	default:
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			kind = KindTimeout
		}
	}

	return &Error{Kind: kind, URL: url, Err: err}
}

// retryable reports whether another attempt may succeed. Client errors and
// TLS failures are deterministic and not retried.
func retryable(err *Error) bool {
	switch err.Kind {
	case KindHTTP4xx, KindTLS, KindDNS:
		return false
	}
	return true
}
