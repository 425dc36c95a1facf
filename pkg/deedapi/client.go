// Package deedapi provides a client for the deed analysis and mortgage
// calculation service.
package deedapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/deed-cli/internal/apperr"
	"github.com/sells-group/deed-cli/internal/calculator"
	"github.com/sells-group/deed-cli/internal/report"
)

const (
	// ExtractPath is the PDF analysis endpoint.
	ExtractPath = "/api/pdf/extract"
	// PDFContentType is the only content type accepted for analysis.
	PDFContentType = "application/pdf"

	maxErrorBody = 512
)

// Client defines the service operations.
type Client interface {
	// Extract uploads a PDF and returns the parsed analysis.
	Extract(ctx context.Context, doc Document) (*report.Report, error)
	// Calculate submits normalized form fields to calc's endpoint.
	Calculate(ctx context.Context, calc *calculator.Calculator, fields []calculator.WireField) (*calculator.Result, error)
}

// Document is a file selected for upload.
type Document struct {
	Name        string
	ContentType string
	Data        []byte
}

// Option configures the client.
type Option func(*httpClient)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithTimeout bounds each request. Zero leaves requests unbounded.
func WithTimeout(d time.Duration) Option {
	return func(c *httpClient) {
		c.http.Timeout = d
	}
}

type httpClient struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the service at baseURL. Requests are not
// retried and carry no timeout unless WithTimeout is given.
func NewClient(baseURL string, opts ...Option) Client {
	c := &httpClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) Extract(ctx context.Context, doc Document) (*report.Report, error) {
	const op = "deedapi: extract"

	body, contentType, err := encodeFile(doc)
	if err != nil {
		return nil, apperr.New(apperr.KindRequestFailed, op, err)
	}

	respBody, err := c.post(ctx, op, ExtractPath, contentType, body)
	if err != nil {
		return nil, err
	}
	return report.Decode(respBody)
}

func (c *httpClient) Calculate(ctx context.Context, calc *calculator.Calculator, fields []calculator.WireField) (*calculator.Result, error) {
	op := "deedapi: calculate " + string(calc.Kind)

	body, contentType, err := encodeFields(fields)
	if err != nil {
		return nil, apperr.New(apperr.KindRequestFailed, op, err)
	}

	respBody, err := c.post(ctx, op, calc.Endpoint, contentType, body)
	if err != nil {
		return nil, err
	}
	return calculator.DecodeResult(calc, respBody)
}

// post sends a multipart body and returns the response body of a 2xx reply.
// Every other outcome is a KindRequestFailed error.
func (c *httpClient) post(ctx context.Context, op, path, contentType string, body *bytes.Buffer) ([]byte, error) {
	requestID := uuid.NewString()
	log := zap.L().With(zap.String("op", op), zap.String("request_id", requestID), zap.String("path", path))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return nil, apperr.New(apperr.KindRequestFailed, op, eris.Wrap(err, "deedapi: create request"))
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn("deedapi: request failed", zap.Error(err))
		return nil, apperr.New(apperr.KindRequestFailed, op, eris.Wrap(err, "deedapi: request failed"))
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.New(apperr.KindRequestFailed, op, eris.Wrap(err, "deedapi: read response body"))
	}

	log.Debug("deedapi: response received",
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(respBody)),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperr.New(apperr.KindRequestFailed, op,
			eris.Errorf("deedapi: unexpected status %d: %s", resp.StatusCode, truncate(respBody, maxErrorBody)))
	}
	return respBody, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func encodeFile(doc Document) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(doc.Name)))
	ct := doc.ContentType
	if ct == "" {
		ct = PDFContentType
	}
	h.Set("Content-Type", ct)

	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", eris.Wrap(err, "deedapi: create file part")
	}
	if _, err := part.Write(doc.Data); err != nil {
		return nil, "", eris.Wrap(err, "deedapi: write file part")
	}
	if err := w.Close(); err != nil {
		return nil, "", eris.Wrap(err, "deedapi: close multipart writer")
	}
	return &buf, w.FormDataContentType(), nil
}

func encodeFields(fields []calculator.WireField) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range fields {
		if err := w.WriteField(f.Name, f.Value); err != nil {
			return nil, "", eris.Wrapf(err, "deedapi: write field %s", f.Name)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", eris.Wrap(err, "deedapi: close multipart writer")
	}
	return &buf, w.FormDataContentType(), nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
