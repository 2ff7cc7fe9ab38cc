package browser

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/bnema/stwcert/internal/ports"
	"github.com/sethvargo/go-retry"
	"golang.org/x/net/publicsuffix"
)

const (
	maxResponseBytes = 8 << 20
	defaultUserAgent = "stwcert/1"
)

var ErrResponseTooLarge = errors.New("response body exceeds size limit")

type Options struct {
	Timeout   time.Duration
	Retries   uint64
	RetryBase time.Duration
	UserAgent string
}

// Client is a cookie-keeping HTTP client that understands HTML forms.
// Only GET requests are retried; form submissions are sent exactly once.
type Client struct {
	httpClient *http.Client
	retries    uint64
	retryBase  time.Duration
	userAgent  string
}

var _ ports.Browser = (*Client)(nil)

func New(opts Options) (*Client, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return NewWithHTTPClient(&http.Client{Timeout: timeout}, opts)
}

// NewWithHTTPClient wraps an existing client and gives it a cookie jar when it
// has none, since the panel session lives in cookies.
func NewWithHTTPClient(httpClient *http.Client, opts Options) (*Client, error) {
	if httpClient == nil {
		return nil, errors.New("http client is nil")
	}
	if httpClient.Jar == nil {
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, fmt.Errorf("create cookie jar: %w", err)
		}
		httpClient.Jar = jar
	}

	retryBase := opts.RetryBase
	if retryBase <= 0 {
		retryBase = 500 * time.Millisecond
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	return &Client{
		httpClient: httpClient,
		retries:    opts.Retries,
		retryBase:  retryBase,
		userAgent:  userAgent,
	}, nil
}

func (c *Client) Get(ctx context.Context, rawURL string) (*ports.Page, error) {
	var page *ports.Page
	backoff := retry.WithMaxRetries(c.retries, retry.NewExponential(c.retryBase))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}

		fetched, err := c.do(req)
		if err != nil {
			if errors.Is(err, ErrResponseTooLarge) {
				return err
			}
			return retry.RetryableError(err)
		}

		page = fetched
		if isTransientStatus(fetched.StatusCode) {
			return retry.RetryableError(fmt.Errorf("status %d", fetched.StatusCode))
		}
		return nil
	})
	if err != nil {
		// Retries exhausted on a bad status: hand the page back so the
		// caller sees the status instead of a generic error.
		if page != nil && isTransientStatus(page.StatusCode) && ctx.Err() == nil {
			return page, nil
		}
		return nil, err
	}

	return page, nil
}

func (c *Client) Submit(ctx context.Context, form ports.Form, actionURL string) (*ports.Page, error) {
	if form == nil {
		return nil, errors.New("form is nil")
	}

	if strings.EqualFold(form.Method(), http.MethodGet) {
		target, err := url.Parse(actionURL)
		if err != nil {
			return nil, fmt.Errorf("parse form action: %w", err)
		}
		target.RawQuery = form.Values().Encode()
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		return c.do(req)
	}

	var (
		body        io.Reader
		contentType string
	)
	if hf, ok := form.(*htmlForm); ok && hf.multipart() {
		encoded, boundaryType, err := hf.encodeMultipart()
		if err != nil {
			return nil, err
		}
		body, contentType = encoded, boundaryType
	} else {
		body = strings.NewReader(form.Values().Encode())
		contentType = "application/x-www-form-urlencoded"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, actionURL, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	return c.do(req)
}

func (c *Client) PostForm(ctx context.Context, rawURL string, values url.Values) (*ports.Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(values.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")

	return c.do(req)
}

func (c *Client) do(req *http.Request) (*ports.Page, error) {
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if len(body) > maxResponseBytes {
		return nil, ErrResponseTooLarge
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse response document: %w", err)
	}

	finalURL := req.URL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL
	}
	doc.Url = finalURL

	return &ports.Page{
		URL:        finalURL.String(),
		StatusCode: resp.StatusCode,
		Body:       body,
		Document:   &document{doc: doc},
	}, nil
}

func isTransientStatus(status int) bool {
	switch status {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
