package graphql

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

// Client is a client for interacting with a GraphQL API.
type Client struct {
	endpoint    string
	httpClient  *http.Client
	header      http.Header
	useGzip     bool
	closeReq    bool
	retryConfig RetryConfig

	// Log is called with various debug information.
	// To log to standard out, use:
	//  client.Log = func(s string) { log.Println(s) }
	Log func(s string)
}

// NewClient makes a new Client capable of making GraphQL requests.
func NewClient(endpoint string, opts ...ClientOption) *Client {
	c := &Client{
		endpoint: endpoint,
		header:   make(http.Header),
		Log:      func(string) {},
	}
	for _, optionFunc := range opts {
		optionFunc(c)
	}
	if c.httpClient == nil {
		c.httpClient = http.DefaultClient
	}
	return c
}

func (c *Client) logf(format string, args ...interface{}) {
	c.Log(fmt.Sprintf(format, args...))
}

// RetryConfig defines possible fields that client can supply for their retry strategies
type RetryConfig struct {
	// Optional - Max number of times client should retry
	MaxTries int `json:"maxTries"`
	// Required - Time interval to wait before trying attempt sending a request again
	Interval float64 `json:"interval"`
	// Required - Defines a policy to be used for retry
	Policy PolicyType `json:"policy"`
	// Optional - The max interval of time to wait before retrying
	MaxInterval float64 `json:"maxInterval"`
	// Optional - A mapping of statuses that client should retry.
	// If not specifed, we will use default retry behavior on certain statuses
	RetryStatus map[int]bool `json:"statusToRetry"`
	// Called with the failure and the attempt number before waiting
	BeforeRetry func(err error, attemptNum int)
}

// PolicyType defines a type of different possible Policies to be applied towards retrying
type PolicyType string

const (
	// ExponentialBackoff - the interval is doubled after every try until hitting MaxInterval or MaxTries
	ExponentialBackoff PolicyType = "exponential_backoff"
	// Linear - the interval stays the same every try until hitting MaxTries
	Linear PolicyType = "linear"
)

var (
	defaultLinearRetryConfig = RetryConfig{
		MaxTries: 5,
		Interval: 2,
		Policy:   Linear,
	}

	defaultExponentialRetryConfig = RetryConfig{
		MaxTries:    5,
		Interval:    1,
		Policy:      ExponentialBackoff,
		MaxInterval: 16,
	}
)

// Post sends the request and returns the data of the response. If the
// server returns GraphQL errors the first one is returned as an Error;
// failures of the exchange itself are returned as *TransportError.
func (c *Client) Post(ctx context.Context, req *Request) (*Response, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	if !c.retryConfig.isValid() {
		return nil, errors.New("graphql: invalid retry config")
	}
	body, err := c.encodeJSON(req)
	if err != nil {
		return nil, err
	}

	retryConfig := c.retryConfig
	// Client did not specify retry config
	if retryConfig.Policy == "" {
		gr, _, err := c.attempt(ctx, req, body)
		if err != nil {
			return nil, err
		}
		return gr.response()
	}

	var lastErr error
	for tryCount := 0; tryCount < retryConfig.MaxTries; tryCount++ {
		gr, status, err := c.attempt(ctx, req, body)
		switch {
		case err != nil && !retryConfig.isErrRetryable(err):
			return nil, err
		case err == nil && !retryConfig.shouldRetry(status) && !shouldRetry(gr.Errors):
			return gr.response()
		case err == nil:
			_, err = gr.response()
			if err == nil {
				err = statusErr(status)
			}
		}
		lastErr = err

		if tryCount+1 == retryConfig.MaxTries {
			break
		}
		if retryConfig.BeforeRetry != nil {
			retryConfig.BeforeRetry(err, tryCount+1)
		}

		c.Log("Will retry after interval expires")
		c.logf("Waiting for interval(%f) to expire...", retryConfig.Interval)
		timer := time.NewTimer(time.Duration(retryConfig.Interval * float64(time.Second)))

		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, errors.Wrap(ctx.Err(), "graphql: context finished while waiting to retry")
		case <-timer.C:
			retryConfig.increaseInterval()
			c.logf("New interval: %f", retryConfig.Interval)
		}
	}

	return nil, errors.Wrapf(lastErr, "client has retried %d times", retryConfig.MaxTries)
}

// Run executes the query and unmarshals the response from the data field
// into the response object.
// Pass in a nil response object to skip response parsing.
// If the request fails or the server returns an error, the first error
// will be returned.
func (c *Client) Run(ctx context.Context, req *Request, resp interface{}) error {
	r, err := c.Post(ctx, req)
	if err != nil {
		return err
	}
	if resp == nil || isNull(r.Data()) {
		return nil
	}
	if err := json.Unmarshal(r.Data(), resp); err != nil {
		return &ResponseShapeError{Field: "data", Err: errors.Wrap(err, "decoding response")}
	}
	return nil
}

// Increase interval for exponential backoff policy until hitting MaxInterval
func (config *RetryConfig) increaseInterval() {
	if config.Policy == ExponentialBackoff && config.Interval < config.MaxInterval {
		config.Interval = math.Min(config.Interval*2, config.MaxInterval)
	}
}

// Determines whether the client should retry the request
// If specified, the client will use consumer-specified RetryStatus to retry request based on status code
// Otherwise, retry on 502, 503, 504, and 507
func (config *RetryConfig) shouldRetry(status int) bool {
	if len(config.RetryStatus) > 0 {
		return config.RetryStatus[status]
	}
	return status == http.StatusBadGateway || status == http.StatusServiceUnavailable || status == http.StatusGatewayTimeout || status == http.StatusInsufficientStorage
}

// Network failures are retried, status failures only when the status is
// retryable. Encoding and decoding failures are not.
func (config *RetryConfig) isErrRetryable(err error) bool {
	var terr *TransportError
	if !errors.As(err, &terr) {
		return false
	}
	if terr.StatusCode == 0 {
		return terr.network
	}
	return config.shouldRetry(terr.StatusCode)
}

// Determines whether RetryConfig is valid
func (config *RetryConfig) isValid() bool {
	isConfigOptional := config.Policy == ""
	if isConfigOptional {
		return true
	}
	if config.Policy != Linear && config.Policy != ExponentialBackoff {
		return false
	}
	if config.MaxTries <= 0 || config.Interval <= 0 {
		return false
	}
	return config.Policy == Linear || config.Interval <= config.MaxInterval
}

// WithRetryConfig allows consumer to assign their retryConfig to the client's private retryConfig
func WithRetryConfig(config RetryConfig) ClientOption {
	return func(client *Client) {
		client.retryConfig = config
	}
}

// WithDefaultLinearRetryConfig provides a default set of value for linear policy
func WithDefaultLinearRetryConfig() ClientOption {
	return func(client *Client) {
		client.retryConfig = defaultLinearRetryConfig
	}
}

// WithDefaultExponentialRetryConfig provides a default set of value for exponential backoff policy
func WithDefaultExponentialRetryConfig() ClientOption {
	return func(client *Client) {
		client.retryConfig = defaultExponentialRetryConfig
	}
}

// WithBeforeRetryHandler provides a handler for beforeRetry
func WithBeforeRetryHandler(beforeRetryHandler func(err error, attemptNum int)) ClientOption {
	return func(client *Client) {
		client.retryConfig.BeforeRetry = beforeRetryHandler
	}
}

// WithHTTPClient specifies the underlying http.Client to use when
// making requests.
//  NewClient(endpoint, WithHTTPClient(specificHTTPClient))
func WithHTTPClient(httpclient *http.Client) ClientOption {
	return func(client *Client) {
		client.httpClient = httpclient
	}
}

// WithHeader adds a header sent with every request, before the headers of
// the Request itself.
func WithHeader(key, value string) ClientOption {
	return func(client *Client) {
		client.header.Add(key, value)
	}
}

// UseGzip compresses request bodies and sets Content-Encoding: gzip.
func UseGzip() ClientOption {
	return func(client *Client) {
		client.useGzip = true
	}
}

// ImmediatelyCloseReqBody makes the client close the connection after
// each request.
func ImmediatelyCloseReqBody() ClientOption {
	return func(client *Client) {
		client.closeReq = true
	}
}

// ClientOption are functions that are passed into NewClient to
// modify the behaviour of the Client.
type ClientOption func(*Client)
