package tsp

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
)

const TransportCodeAborted = 42

// Doer sends one HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// TransportFactory builds the transport used for a single call. No connection
// state is shared between calls.
type TransportFactory func() Doer

func defaultTransport(cfg *ClientConfig) TransportFactory {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	insecure := cfg.InsecureSkipVerify
	return func() Doer {
		return &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy:             http.ProxyFromEnvironment,
				DisableKeepAlives: true,
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: insecure,
				},
			},
		}
	}
}

func classify(err error) *TransportError {
	cause := err
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		cause = urlErr.Err
	}
	te := &TransportError{Code: TransportCodeRecv, Message: cause.Error(), Err: err}

	var coded CodedError
	if errors.As(err, &coded) {
		te.Code = coded.ErrorCode()
		te.Message = coded.Error()
		te.timeout = te.Code == TransportCodeTimeout
		return te
	}

	var (
		netErr     net.Error
		dnsErr     *net.DNSError
		opErr      *net.OpError
		recordErr  tls.RecordHeaderError
		unknownCA  x509.UnknownAuthorityError
		hostErr    x509.HostnameError
		invalidErr x509.CertificateInvalidError
	)
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		return NewTimeoutError(te.Message, err)
	case errors.Is(err, context.Canceled):
		te.Code = TransportCodeAborted
	case errors.As(err, &dnsErr):
		te.Code = TransportCodeResolveHost
	case errors.As(err, &recordErr), errors.As(err, &unknownCA), errors.As(err, &hostErr), errors.As(err, &invalidErr):
		te.Code = TransportCodeTLS
	case errors.As(err, &opErr) && opErr.Op == "dial":
		te.Code = TransportCodeConnect
	case errors.As(err, &opErr) && opErr.Op == "write":
		te.Code = TransportCodeSend
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		te.Code = TransportCodeEmptyReply
	}
	return te
}

func statusFailure(resp *http.Response) *TransportError {
	return &TransportError{Code: resp.StatusCode, Message: resp.Status}
}
