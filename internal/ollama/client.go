// Package ollama is the HTTP client for the local Ollama inference server.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// ErrorType categorizes client errors for handling by the pipeline.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota

	// ErrTypeUnavailable means the server is unreachable. Not retried: the
	// user has to start the server, looping would not help.
	ErrTypeUnavailable

	// ErrTypeTimeout means the request exceeded its deadline. Retried at most
	// once with identical parameters.
	ErrTypeTimeout

	ErrTypeModelNotFound
	ErrTypeInvalidResponse
)

// ClientError represents an error from the Ollama client.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// Sentinel errors for easy checking.
var (
	ErrUnavailable   = &ClientError{Type: ErrTypeUnavailable, Message: "inference server is not reachable"}
	ErrTimeout       = &ClientError{Type: ErrTypeTimeout, Message: "inference request timed out"}
	ErrModelNotFound = &ClientError{Type: ErrTypeModelNotFound, Message: "model not found"}
)

// IsUnavailable reports whether err indicates an unreachable server.
func IsUnavailable(err error) bool {
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce.Type == ErrTypeUnavailable
	}
	return false
}

// IsTimeout reports whether err is a timeout error.
func IsTimeout(err error) bool {
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce.Type == ErrTypeTimeout
	}
	return false
}

// ClientConfig holds configuration options for the client.
type ClientConfig struct {
	// BaseURL is the Ollama API base URL (default: http://localhost:11434).
	BaseURL string

	// Timeout bounds a single generation request (default: 30s).
	Timeout time.Duration
}

// Client talks to the local Ollama HTTP API. It is safe for concurrent use,
// though mimir itself issues one request per invocation.
type Client struct {
	config     ClientConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a client for the given base URL. A zero timeout falls
// back to 30 seconds. A nil logger is replaced with a no-op logger.
func NewClient(cfg ClientConfig, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:11434"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		config: cfg,
		// The http.Client carries no Timeout of its own; deadlines come from
		// the per-request context so streaming reads stay governed too.
		httpClient: &http.Client{},
		logger:     logger,
	}
}

// ListModels retrieves the models available on the server.
func (c *Client) ListModels(ctx context.Context) ([]ModelInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/api/tags", nil)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeUnknown, Message: "failed to create request", Cause: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &ClientError{
			Type:    ErrTypeInvalidResponse,
			Message: "failed to list models: " + resp.Status,
		}
	}

	var result listModelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode model list", Cause: err}
	}

	return result.Models, nil
}

// Generate sends a generation request and returns the complete response text.
// A timed-out request is retried exactly once with the same parameters; an
// unreachable server fails immediately.
func (c *Client) Generate(ctx context.Context, req Request) (*Response, error) {
	resp, err := c.generateOnce(ctx, req)
	if err != nil && IsTimeout(err) {
		c.logger.Warn("inference request timed out, retrying once",
			zap.String("model", req.Model),
			zap.Duration("timeout", c.config.Timeout),
		)
		resp, err = c.generateOnce(ctx, req)
	}
	return resp, err
}

func (c *Client) generateOnce(ctx context.Context, req Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	messages := make([]Message, 0, 2)
	if req.System != "" {
		messages = append(messages, Message{Role: "system", Content: req.System})
	}
	messages = append(messages, Message{Role: "user", Content: req.Prompt})

	body, err := json.Marshal(chatRequest{
		Model:    req.Model,
		Messages: messages,
		Stream:   req.Stream,
		Options:  &Options{Temperature: req.Temperature},
	})
	if err != nil {
		return nil, &ClientError{Type: ErrTypeUnknown, Message: "failed to marshal request", Cause: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, &ClientError{Type: ErrTypeUnknown, Message: "failed to create request", Cause: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrModelNotFound
	}

	if resp.StatusCode != http.StatusOK {
		var oerr ollamaError
		if err := json.NewDecoder(resp.Body).Decode(&oerr); err == nil && oerr.Error != "" {
			return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: oerr.Error}
		}
		return nil, &ClientError{
			Type:    ErrTypeInvalidResponse,
			Message: "generation request failed: " + resp.Status,
		}
	}

	var result *Response
	if req.Stream {
		result, err = readStream(ctx, resp.Body, req.OnChunk)
	} else {
		var single chatResponse
		if derr := json.NewDecoder(resp.Body).Decode(&single); derr != nil {
			err = &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: derr}
		} else {
			result = &Response{Model: single.Model, Content: single.Message.Content}
		}
	}
	if err != nil {
		return nil, err
	}

	c.logger.Debug("generation completed",
		zap.String("model", result.Model),
		zap.Bool("stream", req.Stream),
		zap.Duration("elapsed", time.Since(start)),
	)
	return result, nil
}

// classifyTransportError maps low-level transport failures onto the client
// error taxonomy.
func classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout
	}
	return &ClientError{
		Type:    ErrTypeUnavailable,
		Message: fmt.Sprintf("inference server is not reachable (%s)", err),
		Cause:   err,
	}
}
