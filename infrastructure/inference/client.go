// Package inference talks to the Python detection sidecar that hosts the
// actual model weights.
package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrCircuitOpen is returned without calling the sidecar while the breaker is open
var ErrCircuitOpen = errors.New("inference sidecar circuit open")

// Client communicates with the detection sidecar
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *CircuitBreaker
}

// LoadRequest asks the sidecar to load weights from its mounted uploads
// directory. Artifact is a bare filename.
type LoadRequest struct {
	ModelID  string `json:"model_id"`
	Kind     string `json:"kind"`
	Artifact string `json:"artifact"`
	SHA256   string `json:"sha256,omitempty"`
}

type LoadResponse struct {
	Success bool     `json:"success"`
	ModelID string   `json:"model_id"`
	Classes []string `json:"classes"`
	Error   string   `json:"error,omitempty"`
}

// DetectOptions are sent as query parameters alongside the raw frame
type DetectOptions struct {
	Confidence    float64
	IoU           float64
	ImageSize     int
	MaxDetections int
}

// Box is [x1, y1, x2, y2] in source-frame pixels
type Box [4]float64

type Prediction struct {
	Box        Box     `json:"box"`
	Confidence float64 `json:"confidence"`
	ClassID    int     `json:"class_id"`
	ClassName  string  `json:"class_name"`
}

type DetectResponse struct {
	Success     bool         `json:"success"`
	Detections  []Prediction `json:"detections"`
	InferenceMs float64      `json:"inference_ms"`
	Error       string       `json:"error,omitempty"`
}

type HealthResponse struct {
	Status       string   `json:"status"`
	Version      string   `json:"version"`
	Device       string   `json:"device"`
	LoadedModels []string `json:"loaded_models"`
}

type genericResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// NewClient creates a sidecar client. The breaker opens after 5 consecutive
// failures and half-opens after 30s.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		breaker: NewCircuitBreaker(5, 30*time.Second),
	}
}

// HTTPClient exposes the underlying client so tests can install transports.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

func (c *Client) Breaker() *CircuitBreaker {
	return c.breaker
}

// LoadModel loads an engine's weights into the sidecar under req.ModelID
func (c *Client) LoadModel(ctx context.Context, req LoadRequest) (*LoadResponse, error) {
	jsonBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var result LoadResponse
	if err := c.do(ctx, http.MethodPost, "/models/load", "application/json", bytes.NewReader(jsonBody), &result); err != nil {
		return nil, err
	}
	if !result.Success {
		return nil, fmt.Errorf("model load failed: %s", result.Error)
	}
	return &result, nil
}

// Detect runs one encoded frame through a loaded model
func (c *Client) Detect(ctx context.Context, modelID string, frame []byte, opts DetectOptions) (*DetectResponse, error) {
	q := url.Values{}
	q.Set("conf", strconv.FormatFloat(opts.Confidence, 'f', -1, 64))
	q.Set("iou", strconv.FormatFloat(opts.IoU, 'f', -1, 64))
	q.Set("imgsz", strconv.Itoa(opts.ImageSize))
	q.Set("max_det", strconv.Itoa(opts.MaxDetections))
	path := "/models/" + url.PathEscape(modelID) + "/detect?" + q.Encode()

	var result DetectResponse
	if err := c.do(ctx, http.MethodPost, path, "application/octet-stream", bytes.NewReader(frame), &result); err != nil {
		return nil, err
	}
	if !result.Success {
		return nil, fmt.Errorf("detection failed: %s", result.Error)
	}
	return &result, nil
}

// Unload releases a model. Unknown ids are not an error.
func (c *Client) Unload(ctx context.Context, modelID string) error {
	var result genericResponse
	err := c.do(ctx, http.MethodDelete, "/models/"+url.PathEscape(modelID), "", nil, &result)
	var statusErr *StatusError
	if errors.As(err, &statusErr) && statusErr.Code == http.StatusNotFound {
		return nil
	}
	if err != nil {
		return err
	}
	if !result.Success {
		return fmt.Errorf("model unload failed: %s", result.Error)
	}
	return nil
}

// Health checks if the sidecar is up. It bypasses the breaker.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call inference API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("inference API unhealthy (status %d)", resp.StatusCode)
	}

	var result HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &result, nil
}

func (c *Client) IsAvailable(ctx context.Context) bool {
	health, err := c.Health(ctx)
	return err == nil && health.Status == "ok"
}

// StatusError is a non-2xx answer from the sidecar
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("inference API error (status %d): %s", e.Code, e.Body)
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, out interface{}) error {
	if c.breaker.IsOpen() {
		return ErrCircuitOpen
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() == nil {
			c.breaker.RecordFailure()
		}
		return fmt.Errorf("failed to call inference API: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.breaker.RecordFailure()
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		c.breaker.RecordFailure()
	} else {
		c.breaker.RecordSuccess()
	}
	if resp.StatusCode != http.StatusOK {
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
