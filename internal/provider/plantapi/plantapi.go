package plantapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/shahar-caura/plantid/internal/plant"
	"github.com/shahar-caura/plantid/internal/provider"
)

// FieldName is the multipart field carrying the image.
const FieldName = "image"

// Paths are the backend endpoint paths relative to the base URL.
type Paths struct {
	Identify  string
	TestLocal string
	ModelInfo string
}

// Operation paths as named in the backend contract.
const (
	opIdentify  = "/identify"
	opTestLocal = "/test-local"
	opModelInfo = "/model-info"
)

// DefaultPaths returns the endpoint paths the service serves by default.
func DefaultPaths() Paths {
	return Paths{Identify: opIdentify, TestLocal: opTestLocal, ModelInfo: opModelInfo}
}

// ResponseChecker validates raw responses against the backend contract.
// path is the contract operation path, whatever URL was actually called.
type ResponseChecker interface {
	CheckResponse(ctx context.Context, method, path string, status int, header http.Header, body []byte) error
}

// Client talks to the plant classification service over HTTP.
type Client struct {
	baseURL string
	paths   Paths
	client  *http.Client
	checker ResponseChecker // nil disables contract checks
	logger  *slog.Logger
}

// New returns a Client for baseURL. No timeout is set: a hung backend keeps
// the call pending until ctx is done.
func New(baseURL string, paths Paths, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		paths:   paths,
		client:  &http.Client{},
		logger:  logger,
	}
}

// SetChecker enables response contract checks.
func (c *Client) SetChecker(checker ResponseChecker) { c.checker = checker }

var _ provider.Classifier = (*Client)(nil)
var _ provider.ModelInfoSource = (*Client)(nil)

// Identify posts img to the identify endpoint.
func (c *Client) Identify(ctx context.Context, img *plant.SelectedImage) (*provider.Response, error) {
	return c.upload(ctx, c.paths.Identify, opIdentify, img)
}

// TestLocal posts img to the local-model test endpoint.
func (c *Client) TestLocal(ctx context.Context, img *plant.SelectedImage) (*provider.Response, error) {
	return c.upload(ctx, c.paths.TestLocal, opTestLocal, img)
}

// ModelInfo fetches the local model metadata.
func (c *Client) ModelInfo(ctx context.Context) (*plant.ModelInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+c.paths.ModelInfo, nil)
	if err != nil {
		return nil, fmt.Errorf("plantapi: creating request: %w", err)
	}
	resp, err := c.do(req, opModelInfo)
	if err != nil {
		return nil, err
	}
	if resp.Status != http.StatusOK {
		return nil, fmt.Errorf("plantapi: unexpected status %d: %s", resp.Status, resp.Body)
	}

	var info plant.ModelInfo
	if err := json.Unmarshal(resp.Body, &info); err != nil {
		return nil, fmt.Errorf("plantapi: decoding model info: %w", err)
	}
	if info.Model == "" {
		return nil, fmt.Errorf("plantapi: model info has no model name")
	}
	return &info, nil
}

func (c *Client) upload(ctx context.Context, path, op string, img *plant.SelectedImage) (*provider.Response, error) {
	data, err := img.File.Bytes()
	if err != nil {
		return nil, fmt.Errorf("plantapi: reading image: %w", err)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(FieldName, img.File.Filename())
	if err != nil {
		return nil, fmt.Errorf("plantapi: creating form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("plantapi: writing form file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("plantapi: closing form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &body)
	if err != nil {
		return nil, fmt.Errorf("plantapi: creating request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.do(req, op)
}

func (c *Client) do(req *http.Request, op string) (*provider.Response, error) {
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("plantapi: sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("plantapi: reading response: %w", err)
	}

	c.logger.Debug("backend responded", "path", req.URL.Path, "status", resp.StatusCode, "request_id", requestID, "bytes", len(body))

	if c.checker != nil {
		if err := c.checker.CheckResponse(req.Context(), req.Method, op, resp.StatusCode, resp.Header, body); err != nil {
			c.logger.Warn("backend response does not match contract", "path", req.URL.Path, "request_id", requestID, "error", err)
		}
	}

	return &provider.Response{Status: resp.StatusCode, RequestID: requestID, Body: body}, nil
}
