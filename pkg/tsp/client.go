// Package tsp is a client for the TSP gateway that fronts GPS/IoT tracking
// terminals. Remote actions are sent as signed HTTP requests to a single
// gateway endpoint; track and message history is read page by page from a
// wide-column store.
package tsp

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"io"
	"k8s.io/klog/v2"
	"net/http"
	"net/url"
	"strings"
	"time"
	"tspgateway/pkg/storage"
	"tspgateway/pkg/utils/uuidutil"
)

const (
	HeaderContentType = "Content-Type"
	HeaderSource      = "source"
	HeaderToken       = "token"

	ContentTypeJSON = "application/json"
	SourceSDK       = "TspClientSdk"
)

type Option func(*Client)

// WithTransport replaces the per call HTTP transport.
func WithTransport(factory TransportFactory) Option {
	return func(c *Client) {
		if factory != nil {
			c.transport = factory
		}
	}
}

// WithStore sets the store history scans read from.
func WithStore(store storage.RangeScanner) Option {
	return func(c *Client) {
		c.store = store
	}
}

func WithMetrics(m *Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithHasher replaces the function deriving the partition key from a device
// id. It must be stable: the same id always yields the same key.
func WithHasher(hasher func(string) string) Option {
	return func(c *Client) {
		if hasher != nil {
			c.hasher = hasher
		}
	}
}

// WithLocation sets the time zone message timestamps are rendered in.
func WithLocation(loc *time.Location) Option {
	return func(c *Client) {
		if loc != nil {
			c.location = loc
		}
	}
}

// Client is safe for concurrent use. Its configuration never changes after
// NewClient returns.
type Client struct {
	config      ClientConfig
	storeConfig StoreConfig
	endpoint    *url.URL
	transport   TransportFactory
	store       storage.RangeScanner
	metrics     *Metrics
	hasher      func(string) string
	location    *time.Location
}

// NewClient validates cfg and builds a Client. It performs no network I/O.
func NewClient(cfg ClientConfig, opts ...Option) (*Client, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	endpoint, _ := url.Parse(cfg.GatewayURL)

	c := &Client{
		config:      cfg,
		storeConfig: *DefaultStoreConfig(),
		endpoint:    endpoint,
		hasher:      MD5Hex,
		location:    time.Local,
	}
	if cfg.Store != nil {
		c.storeConfig = *cfg.Store
		c.config.Store = &c.storeConfig
	}
	c.transport = defaultTransport(&c.config)
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Config returns a copy of the client configuration.
func (c *Client) Config() ClientConfig {
	cfg := c.config
	if cfg.Store != nil {
		sc := *cfg.Store
		cfg.Store = &sc
	}
	return cfg
}

// Call invokes a remote action with the HTTP method the gateway expects for
// it.
func (c *Client) Call(ctx context.Context, action Action, params Params) (*ActionResponse, error) {
	if !action.Remote() {
		return nil, &ValidationError{Field: "action", Reason: "unknown remote action " + string(action)}
	}
	return c.Invoke(ctx, action.Method(), action, params)
}

// Invoke sends action with params to the gateway and blocks until it answers.
//
// The returned error is only set for requests rejected before any I/O. Every
// other outcome is reported through the response: the gateway status passes
// through unchanged, while transport and decoding failures set Status to the
// transport code (StatusTimeout for timeouts) or StatusMalformedResponse and
// carry the cause in Err.
func (c *Client) Invoke(ctx context.Context, method string, action Action, params Params) (*ActionResponse, error) {
	if len(action) == 0 {
		return nil, &ValidationError{Field: "action", Reason: "is required"}
	}
	if !action.Remote() {
		return nil, &ValidationError{Field: "action", Reason: "unknown remote action " + string(action)}
	}
	method = strings.ToUpper(method)
	if method != http.MethodGet && method != http.MethodPost {
		return nil, &ValidationError{Field: "method", Reason: "must be GET or POST, got " + method}
	}

	req, err := c.newRequest(ctx, method, action, params)
	if err != nil {
		return nil, &ValidationError{Field: "params", Reason: err.Error()}
	}

	requestID := uuidutil.ShortUUID()
	klog.V(4).InfoS("Invoking gateway action", "action", action, "method", method, "requestId", requestID)

	start := time.Now()
	resp := c.send(req)
	c.metrics.observeCall(action, resp, time.Since(start))

	if resp.Err != nil {
		klog.V(2).InfoS("Failed to invoke gateway action", "action", action, "requestId", requestID, "status", resp.Status, "err", resp.Err)
	} else {
		klog.V(4).InfoS("Gateway answered", "action", action, "requestId", requestID, "status", resp.Status)
	}
	return resp, nil
}

func (c *Client) newRequest(ctx context.Context, method string, action Action, params Params) (*http.Request, error) {
	u := *c.endpoint
	var body io.Reader
	switch method {
	case http.MethodGet:
		query, err := encodeQuery(action, params)
		if err != nil {
			return nil, err
		}
		if len(u.RawQuery) > 0 {
			u.RawQuery = u.RawQuery + "&" + query
		} else {
			u.RawQuery = query
		}
	default:
		data, err := encodeBody(action, params)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set(HeaderContentType, ContentTypeJSON)
	req.Header.Set(HeaderSource, SourceSDK)
	req.Header.Set(HeaderToken, c.config.Token)
	return req, nil
}

func (c *Client) send(req *http.Request) *ActionResponse {
	httpResp, err := c.transport().Do(req)
	if err != nil {
		return transportFailure(classify(err))
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return transportFailure(classify(err))
	}
	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		resp := transportFailure(statusFailure(httpResp))
		resp.Raw = body
		return resp
	}
	return decodeResponse(body)
}

func decodeResponse(body []byte) *ActionResponse {
	var raw struct {
		Status  *int            `json:"status"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return decodeFailure(body, err)
	}
	if raw.Status == nil {
		return decodeFailure(body, errMissingStatus)
	}

	resp := &ActionResponse{Status: *raw.Status, Message: raw.Message, Raw: body}
	data := bytes.TrimSpace(raw.Data)
	switch {
	case len(data) == 0, bytes.Equal(data, []byte("null")):
	case bytes.Equal(data, []byte("[]")):
		// PHP gateways encode an empty map as an empty list
		resp.Data = map[string]interface{}{}
	case data[0] == '{':
		if err := json.Unmarshal(data, &resp.Data); err != nil {
			return decodeFailure(body, err)
		}
	default:
		// status and message still pass through, the data stays readable in Raw
		klog.V(4).InfoS("Gateway data is not an object", "status", resp.Status)
	}
	return resp
}

// MD5Hex is the default partition key hash: the hex encoded MD5 digest of
// the device id.
func MD5Hex(deviceID string) string {
	sum := md5.Sum([]byte(deviceID))
	return hex.EncodeToString(sum[:])
}
