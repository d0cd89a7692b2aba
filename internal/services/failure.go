package services

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

// FailureKind is the closed set of failure categories produced by transport code.
type FailureKind int

const (
	KindUnknown FailureKind = iota
	KindConnection
	KindTimeout
	KindTLS
	KindHTTPStatus
	KindCredential
)

func (k FailureKind) String() string {
	switch k {
	case KindConnection:
		return "connection"
	case KindTimeout:
		return "timeout"
	case KindTLS:
		return "tls"
	case KindHTTPStatus:
		return "http"
	case KindCredential:
		return "credential"
	default:
		return "unknown"
	}
}

// Failure is the error returned by transport code for any request that did not
// complete with a 2xx status.
type Failure struct {
	Kind       FailureKind
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (f *Failure) Error() string {
	var b strings.Builder
	if f.Op != "" {
		b.WriteString(f.Op)
		b.WriteString(": ")
	}
	switch {
	case f.Kind == KindHTTPStatus:
		fmt.Fprintf(&b, "http %d", f.StatusCode)
		if body := strings.TrimSpace(f.Body); body != "" {
			b.WriteString(": ")
			b.WriteString(body)
		}
	case f.Err != nil:
		b.WriteString(f.Kind.String())
		b.WriteString(": ")
		b.WriteString(f.Err.Error())
	default:
		b.WriteString(f.Kind.String())
		b.WriteString(" failure")
	}
	return b.String()
}

func (f *Failure) Unwrap() error { return f.Err }

// KindOf returns the FailureKind carried by err, or KindUnknown when err does
// not wrap a Failure.
func KindOf(err error) FailureKind {
	var failure *Failure
	if errors.As(err, &failure) {
		return failure.Kind
	}
	return KindUnknown
}

// StatusFailure builds the failure for a completed request with a non-2xx status.
func StatusFailure(op string, status int, body []byte) *Failure {
	return &Failure{
		Kind:       KindHTTPStatus,
		Op:         op,
		StatusCode: status,
		Body:       strings.TrimSpace(string(body)),
	}
}

// CredentialFailure builds the failure for an API key that cannot be sent.
func CredentialFailure(op string, err error) *Failure {
	return &Failure{Kind: KindCredential, Op: op, Err: err}
}

// TransportFailure converts an error returned by http.Client.Do (or a body
// read) into a Failure. TLS is checked first because handshake failures also
// surface as net.OpError; dial errors are checked before timeouts.
func TransportFailure(op string, err error) *Failure {
	if err == nil {
		return nil
	}
	var existing *Failure
	if errors.As(err, &existing) {
		return existing
	}
	return &Failure{Kind: transportKind(err), Op: op, Err: err}
}

func transportKind(err error) FailureKind {
	if isTLSError(err) {
		return KindTLS
	}
	// A connect that never completes is a connection failure even when it
	// ends in a timeout.
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return KindConnection
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, ErrTimeout) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	if opErr != nil {
		return KindConnection
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return KindConnection
	}
	var addrErr *net.AddrError
	if errors.As(err, &addrErr) {
		return KindConnection
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		msg := urlErr.Err.Error()
		if strings.Contains(msg, "connection refused") ||
			strings.Contains(msg, "connection reset") ||
			strings.Contains(msg, "no such host") ||
			strings.Contains(msg, "EOF") {
			return KindConnection
		}
	}
	return KindUnknown
}

func isTLSError(err error) bool {
	var unknownAuthority x509.UnknownAuthorityError
	if errors.As(err, &unknownAuthority) {
		return true
	}
	var hostname x509.HostnameError
	if errors.As(err, &hostname) {
		return true
	}
	var invalid x509.CertificateInvalidError
	if errors.As(err, &invalid) {
		return true
	}
	var verification *tls.CertificateVerificationError
	if errors.As(err, &verification) {
		return true
	}
	var header tls.RecordHeaderError
	if errors.As(err, &header) {
		return true
	}
	var alert tls.AlertError
	return errors.As(err, &alert)
}
