package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"

	"github.com/tomek7667/nasdash/internal/domain"
	"github.com/tomek7667/nasdash/internal/metrics"
)

const (
	EndpointDiagnostics    = "/api/diagnostics"
	EndpointRestartSamba   = "/api/restart-samba"
	EndpointFolderContents = "/api/folder-contents"
	PrefixDownload         = "/api/download/"
	PrefixFile             = "/file/"
)

// Client talks to the NAS backend API.
type Client struct {
	base    *url.URL
	http    *http.Client
	log     zerolog.Logger
	metrics *metrics.Metrics
}

type Option func(*options)

type options struct {
	timeout  time.Duration
	retryMax int
	log      zerolog.Logger
	metrics  *metrics.Metrics
	base     *http.Client
}

func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithRetryMax sets how many times failed calls are retried. The default is
// zero: failures surface to the user, who retries by clicking again.
func WithRetryMax(n int) Option {
	return func(o *options) { o.retryMax = n }
}

func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.log = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.base = c }
}

func New(baseURL string, opts ...Option) (*Client, error) {
	o := options{
		timeout: 30 * time.Second,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid backend url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid backend url %q: scheme must be http or https", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid backend url %q: missing host", baseURL)
	}

	rc := retryablehttp.NewClient()
	if o.base != nil {
		hc := *o.base
		rc.HTTPClient = &hc
	}
	rc.HTTPClient.Timeout = o.timeout
	rc.RetryMax = o.retryMax
	rc.RetryWaitMin = 500 * time.Millisecond
	rc.RetryWaitMax = 5 * time.Second
	// Hand the last response back untouched so status codes stay visible.
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	rc.Logger = &retryLogger{log: o.log}

	return &Client{
		base:    u,
		http:    rc.StandardClient(),
		log:     o.log,
		metrics: o.metrics,
	}, nil
}

func (c *Client) BaseURL() *url.URL {
	u := *c.base
	return &u
}

func (c *Client) Diagnostics(ctx context.Context) (domain.Diagnostics, error) {
	var d domain.Diagnostics
	err := c.getJSON(ctx, "diagnostics", c.endpoint(EndpointDiagnostics, nil), &d)
	return d, err
}

func (c *Client) FolderContents(ctx context.Context, folderPath string) (domain.Listing, error) {
	var l domain.Listing
	q := url.Values{}
	q.Set("folder_path", folderPath)
	err := c.getJSON(ctx, "folder-contents", c.endpoint(EndpointFolderContents, q), &l)
	return l, err
}

// RestartSamba posts the restart command. A decodable body that does not
// report "success" yields an *ApplicationError carrying the server message,
// even on a non-2xx status. A non-2xx status is never a success, and a body
// without a status is a protocol error.
func (c *Client) RestartSamba(ctx context.Context) (res domain.RestartResult, err error) {
	const op = "restart-samba"
	start := time.Now()
	defer func() { c.metrics.ObserveBackend(op, outcome(err), time.Since(start)) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(EndpointRestartSamba, nil), nil)
	if err != nil {
		return res, fmt.Errorf("%s: build request: %w", op, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return res, &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return res, &NetworkError{Op: op, Err: err}
	}
	decodeErr := json.Unmarshal(body, &res)
	if !isSuccess(resp.StatusCode) {
		if decodeErr == nil && res.Status != "" && !res.OK() {
			return res, &ApplicationError{Op: op, Message: failureMessage(res)}
		}
		return res, &HTTPError{Op: op, StatusCode: resp.StatusCode}
	}
	if decodeErr != nil {
		return res, fmt.Errorf("%s: decode response: %w", op, decodeErr)
	}
	if res.Status == "" {
		return res, fmt.Errorf("%s: response has no status", op)
	}
	if !res.OK() {
		return res, &ApplicationError{Op: op, Message: failureMessage(res)}
	}
	return res, nil
}

func failureMessage(res domain.RestartResult) string {
	if res.Message != "" {
		return res.Message
	}
	return "status " + res.Status
}

// FileURL is the dashboard-relative URL used as a media src.
func FileURL(p string) string {
	return PrefixFile + EscapePath(p)
}

func DownloadURL(p string) string {
	return PrefixDownload + EscapePath(p)
}

// EscapePath escapes each segment of a slash separated relative path.
func EscapePath(p string) string {
	p = strings.Trim(p, "/")
	if p == "" {
		return ""
	}
	parts := strings.Split(p, "/")
	for i, s := range parts {
		parts[i] = url.PathEscape(s)
	}
	return strings.Join(parts, "/")
}

func (c *Client) endpoint(p string, q url.Values) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + p
	u.RawPath = ""
	if q != nil {
		u.RawQuery = q.Encode()
	}
	return u.String()
}

func (c *Client) getJSON(ctx context.Context, op, target string, out any) (err error) {
	start := time.Now()
	defer func() { c.metrics.ObserveBackend(op, outcome(err), time.Since(start)) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return &HTTPError{Op: op, StatusCode: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

func isSuccess(code int) bool {
	return code >= 200 && code < 300
}

// retryLogger adapts zerolog to retryablehttp.LeveledLogger.
type retryLogger struct {
	log zerolog.Logger
}

func (l *retryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.log.Error().Fields(keysAndValues).Msg(msg)
}

func (l *retryLogger) Info(msg string, keysAndValues ...interface{}) {}

func (l *retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l *retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.log.Warn().Fields(keysAndValues).Msg(msg)
}
