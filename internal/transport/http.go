// Package transport implements HttpTransport (§4.6): HTTP(S) connections
// with configurable timeouts and TLS behavior. Request bodies are sent from
// the secured payload, which is held in memory as a whole.
package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/evolvent-systems/as2send/internal/as2model"
	"github.com/rs/zerolog"
)

// TLSConfigProvider is the override point for HttpTransport's default
// trust-all-certificates / accept-all-hostnames TLS behavior — the two
// "createSSLContext" / "createHostnameVerifier" interface holes named in
// §9's design notes, collapsed from inheritance overrides to a single
// constructor-injected interface.
type TLSConfigProvider interface {
	TLSConfig() *tls.Config
}

// InsecureTLSConfigProvider is HttpTransport's documented default: AS2
// performs peer authentication at the S/MIME layer (signature + MIC
// match), not at TLS, so the transport trusts all server certificates and
// accepts all hostnames unless an operator supplies a stricter provider.
type InsecureTLSConfigProvider struct{}

func (InsecureTLSConfigProvider) TLSConfig() *tls.Config {
	return &tls.Config{InsecureSkipVerify: true}
}

// Config holds HttpTransport's configurable attributes (§6): connect and
// read timeouts in milliseconds, defaulting to 60s each.
type Config struct {
	ConnectTimeoutMS int
	ReadTimeoutMS    int
	TLSConfig        TLSConfigProvider
}

func (c Config) connectTimeout() time.Duration {
	if c.ConnectTimeoutMS <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.ConnectTimeoutMS) * time.Millisecond
}

func (c Config) readTimeout() time.Duration {
	if c.ReadTimeoutMS <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.ReadTimeoutMS) * time.Millisecond
}

// HttpTransport is the shared, concurrency-safe HTTP client factory. Its
// own state (timeouts, TLS policy) is immutable after construction;
// individual sends get their own *http.Response lifetime.
type HttpTransport struct {
	client *http.Client
	log    zerolog.Logger
}

// New builds an HttpTransport from cfg. The underlying *http.Transport is
// reused across sends (connection pooling is incidental, not required by
// the spec, but idiomatic Go avoids rebuilding a Transport per request).
func New(cfg Config, log zerolog.Logger) *HttpTransport {
	tlsProvider := cfg.TLSConfig
	if tlsProvider == nil {
		tlsProvider = InsecureTLSConfigProvider{}
	}

	dialer := &net.Dialer{Timeout: cfg.connectTimeout()}
	rt := &http.Transport{
		DialContext:           dialer.DialContext,
		TLSClientConfig:       tlsProvider.TLSConfig(),
		ResponseHeaderTimeout: cfg.readTimeout(),
	}

	return &HttpTransport{
		client: &http.Client{Transport: rt},
		log:    log,
	}
}

// Response carries what Sender and MdnReceiver need from a completed POST:
// status, headers, and the body, read in full (bounded by Content-Length
// when the server sends one).
type Response struct {
	StatusCode int
	Status     string
	Header     http.Header
	Body       []byte
}

// Post streams body to url via HTTP POST with the given headers, using the
// readTimeout argument as the overall request deadline (the configured read
// timeout separately bounds the wait for response headers). The request
// body is streamed from a bytes.Reader over body — body is already fully
// transformed by SecurityPipeline in memory, so this does not re-introduce
// whole-payload buffering beyond what the pipeline already produced.
func (t *HttpTransport) Post(ctx context.Context, url string, headers map[string]string, body []byte, readTimeout time.Duration, dumper Dumper, messageID string) (*Response, error) {
	if readTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, readTimeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, &as2model.IOError{MessageID: messageID, Op: "build request", Err: err}
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	if dumper != nil {
		if err := dumper.DumpRequest(messageID, req.Header, body); err != nil {
			t.log.Warn().Err(err).Str("message-id", messageID).Msg("failed to dump outgoing request")
		}
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, &as2model.IOError{MessageID: messageID, Op: "http post", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := readBoundedBody(resp)
	if err != nil {
		return nil, &as2model.IOError{MessageID: messageID, Op: "read response body", Err: err}
	}

	if dumper != nil {
		if err := dumper.DumpResponse(messageID, resp.Header, respBody); err != nil {
			t.log.Warn().Err(err).Str("message-id", messageID).Msg("failed to dump incoming response")
		}
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Header:     resp.Header,
		Body:       respBody,
	}, nil
}

// readBoundedBody reads exactly Content-Length bytes when present,
// erroring on premature EOF, else reads to EOF — per §4.5 step 2.
func readBoundedBody(resp *http.Response) ([]byte, error) {
	if resp.ContentLength > 0 {
		buf := make([]byte, resp.ContentLength)
		if _, err := io.ReadFull(resp.Body, buf); err != nil {
			return nil, fmt.Errorf("read bounded body: %w", err)
		}
		return buf, nil
	}
	return io.ReadAll(resp.Body)
}

// IsSuccess reports whether code is one of the statuses Sender accepts:
// 200, 201, 202, 204, 206.
func IsSuccess(code int) bool {
	switch code {
	case 200, 201, 202, 204, 206:
		return true
	default:
		return false
	}
}
