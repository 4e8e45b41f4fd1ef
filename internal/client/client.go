// Package client talks to the remote translation service over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/wanze/AppTranslator/internal/metrics"
	"github.com/wanze/AppTranslator/internal/translation"
)

// DefaultBaseURL is where the demo translation service listens by default.
const DefaultBaseURL = "http://127.0.0.1:5050/"

// Client calls the translation service endpoints.
type Client struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
	logger  *logrus.Logger
}

type Option func(*Client)

// WithHTTPClient sets the HTTP client. It is copied, not modified.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.client = h
		}
	}
}

func WithLogger(l *logrus.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithTimeout bounds every call. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// New returns a client for the service at baseURL, DefaultBaseURL if empty.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
		logger:  logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		h := *c.client
		h.Timeout = c.timeout
		c.client = &h
	}
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Translate posts req to one of the translate endpoints.
func (c *Client) Translate(ctx context.Context, endpoint string, req translation.Request) (*translation.Response, error) {
	const op = "translate"

	if endpoint != translation.EndpointTranslateStrings && endpoint != translation.EndpointTranslateXML {
		return nil, translation.Errorf(translation.KindInvalidRequest, op, "unknown endpoint %q", endpoint)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, translation.Wrap(translation.KindInvalidRequest, op, fmt.Errorf("failed to marshal request: %w", err))
	}

	var resp translation.Response
	if err := c.do(ctx, op, http.MethodPost, endpoint, nil, bytes.NewReader(body), "application/json", &resp); err != nil {
		return nil, err
	}
	if resp.Translations == nil {
		return nil, translation.Errorf(translation.KindMalformed, op, "response has no translations")
	}
	return &resp, nil
}

// Upload streams r as the multipart field "file" under the given name.
// A reply with success=false is returned together with an
// upload-rejected error.
func (c *Client) Upload(ctx context.Context, filename string, r io.Reader) (*translation.UploadResult, error) {
	const op = "upload"

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	// The writer must stop reading r before Upload returns.
	done := make(chan struct{})
	defer func() {
		pr.Close()
		<-done
	}()

	go func() {
		defer close(done)
		part, err := mw.CreateFormFile("file", filepath.Base(filename))
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		n, err := io.Copy(part, r)
		metrics.AddUploadBytes(int(n))
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	var result translation.UploadResult
	if err := c.do(ctx, op, http.MethodPost, translation.EndpointUpload, nil, pr, mw.FormDataContentType(), &result); err != nil {
		return nil, err
	}
	if !result.Success {
		return &result, translation.Errorf(translation.KindUploadRejected, op, "server did not accept %s", filepath.Base(filename))
	}
	if result.Filename == "" {
		return &result, translation.Errorf(translation.KindMalformed, op, "server returned no filename")
	}
	return &result, nil
}

// TopTerms returns the most frequent terms of a language corpus.
func (c *Client) TopTerms(ctx context.Context, lang string) ([]translation.TermCount, error) {
	var terms []translation.TermCount
	q := url.Values{"lang": {lang}}
	if err := c.do(ctx, "top terms", http.MethodGet, translation.EndpointTopTerms, q, nil, "", &terms); err != nil {
		return nil, err
	}
	return terms, nil
}

// TermVariations returns how a source term was translated into target.
func (c *Client) TermVariations(ctx context.Context, source, target, term string) ([]translation.TermCount, error) {
	var variations []translation.TermCount
	q := url.Values{
		"source": {source},
		"target": {target},
		"term":   {term},
	}
	if err := c.do(ctx, "term variations", http.MethodGet, translation.EndpointTermVariations, q, nil, "", &variations); err != nil {
		return nil, err
	}
	return variations, nil
}

func (c *Client) do(ctx context.Context, op, method, endpoint string, query url.Values, body io.Reader, contentType string, out any) error {
	u := c.baseURL + "/" + endpoint
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		if closer, ok := body.(io.Closer); ok {
			closer.Close()
		}
		return translation.Wrap(translation.KindInvalidRequest, op, fmt.Errorf("failed to create request: %w", err))
	}

	reqID := uuid.New().String()
	httpReq.Header.Set("X-Request-ID", reqID)
	httpReq.Header.Set("Accept", "application/json")
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	log := c.logger.WithFields(logrus.Fields{
		"endpoint":   endpoint,
		"request_id": reqID,
	})
	log.Debug("Sending request to translation service")

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	if err != nil {
		metrics.ObserveBackend(endpoint, 0, time.Since(start))
		log.WithError(err).Error("Request to translation service failed")
		return translation.Wrap(translation.KindTransport, op, err)
	}
	defer resp.Body.Close()
	metrics.ObserveBackend(endpoint, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		log.WithField("status", resp.StatusCode).Error("Translation service returned an error status")
		return &translation.Error{
			Kind:   translation.KindStatus,
			Op:     op,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("%s", strings.TrimSpace(string(snippet))),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		log.WithError(err).Error("Failed to decode translation service response")
		return translation.Wrap(translation.KindMalformed, op, fmt.Errorf("failed to decode response: %w", err))
	}

	log.WithField("duration", time.Since(start).String()).Debug("Translation service responded")
	return nil
}
