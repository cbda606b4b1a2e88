package matte

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/AnyUserName/photoedit/internal/apperr"
)

// DefaultEndpoint is where `rembg s` listens by default.
const DefaultEndpoint = "http://localhost:7000/api/remove"

// maxResponseBytes caps the body read from the server.
const maxResponseBytes = 256 << 20

// HTTP posts the image to a rembg server and reads back a PNG.
type HTTP struct {
	endpoint string
	model    string
	maskOnly bool
	client   *http.Client
}

// HTTPOption configures an HTTP generator.
type HTTPOption func(*HTTP)

// WithModel selects the server-side segmentation model.
func WithModel(model string) HTTPOption {
	return func(h *HTTP) { h.model = model }
}

// WithMaskOnly requests a bare alpha mask.
func WithMaskOnly(v bool) HTTPOption {
	return func(h *HTTP) { h.maskOnly = v }
}

// WithClient replaces the HTTP client.
func WithClient(c *http.Client) HTTPOption {
	return func(h *HTTP) { h.client = c }
}

// NewHTTP creates a generator for the rembg server at endpoint. An empty
// endpoint means DefaultEndpoint.
func NewHTTP(endpoint string, opts ...HTTPOption) *HTTP {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	transport := &http.Transport{
		MaxIdleConns:        4,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     30 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	h := &HTTP{
		endpoint: endpoint,
		// No client timeout: model inference can take arbitrarily long.
		// Callers bound it through the context.
		client: &http.Client{Transport: transport},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *HTTP) Matte(ctx context.Context, rgb *image.NRGBA) (Result, error) {
	body, contentType, err := multipartPNG(rgb)
	if err != nil {
		return Result{}, err
	}

	u, err := url.Parse(h.endpoint)
	if err != nil {
		return Result{}, apperr.NewMatteGeneratorError("invalid endpoint", err)
	}
	q := u.Query()
	if h.model != "" {
		q.Set("model", h.model)
	}
	if h.maskOnly {
		q.Set("om", "true")
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), body)
	if err != nil {
		return Result{}, apperr.NewMatteGeneratorError("build request", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "image/png")

	resp, err := h.client.Do(req)
	if err != nil {
		return Result{}, apperr.NewMatteGeneratorError("request rembg server", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Result{}, apperr.NewMatteGeneratorError("read rembg response", err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(string(data))
		if len(msg) > 200 {
			msg = msg[:200]
		}
		return Result{}, apperr.NewMatteGeneratorError(
			fmt.Sprintf("rembg server: status code %d", resp.StatusCode),
			fmt.Errorf("%s", msg))
	}
	return Bytes(data), nil
}

func multipartPNG(img image.Image) (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "image.png")
	if err != nil {
		return nil, "", apperr.NewEncodeError("build multipart body", err)
	}
	if err := png.Encode(part, img); err != nil {
		return nil, "", apperr.NewEncodeError("encode png", err)
	}
	if err := mw.Close(); err != nil {
		return nil, "", apperr.NewEncodeError("build multipart body", err)
	}
	return &buf, mw.FormDataContentType(), nil
}
