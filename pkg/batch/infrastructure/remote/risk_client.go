// Package remote implements the collaborators of the workflow core that talk to the external
// risk-modeling system.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	port "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/application/port"
	config "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/config"
	model "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/domain/model"
	exception "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/support/util/exception"
	logger "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/support/util/logger"
)

const requestIDHeader = "X-Request-ID"

// StatusError is returned for non-2xx responses of the risk-modeling API.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: HTTP %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
}

// Temporary reports whether retrying the request may succeed.
func (e *StatusError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

type submitRequest struct {
	JobID     int64         `json:"job_id"`
	BatchID   int64         `json:"batch_id"`
	BatchType string        `json:"batch_type"`
	Payload   model.Payload `json:"payload"`
}

type submitResponse struct {
	WorkflowID string `json:"workflow_id"`
}

type workflowResponse struct {
	WorkflowID string  `json:"workflow_id"`
	Status     string  `json:"status"`
	Progress   float64 `json:"progress"`
	Message    string  `json:"message"`
}

type existsRequest struct {
	BatchType string        `json:"batch_type"`
	Payload   model.Payload `json:"payload"`
}

type existsResponse struct {
	Exists bool `json:"exists"`
}

// HTTPClient talks to the risk-modeling workflow API. Transient failures (timeouts, refused
// connections, HTTP 429 and 5xx) are retried with exponential backoff; everything else fails at once.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	retry      config.RetryConfig
}

// NewHTTPClient creates a client for cfg.BaseURL.
func NewHTTPClient(cfg config.RiskAPIConfig) *HTTPClient {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		retry:      cfg.Retry,
	}
}

func (c *HTTPClient) Submit(ctx context.Context, submission port.Submission) (string, error) {
	var resp submitResponse
	err := c.do(ctx, http.MethodPost, "/workflows", submitRequest{
		JobID:     submission.JobID,
		BatchID:   submission.BatchID,
		BatchType: submission.BatchType,
		Payload:   submission.Payload,
	}, &resp)
	if err != nil {
		return "", err
	}
	if resp.WorkflowID == "" {
		return "", fmt.Errorf("risk API accepted job %d without a workflow id", submission.JobID)
	}
	return resp.WorkflowID, nil
}

func (c *HTTPClient) Poll(ctx context.Context, workflowID string) (*port.WorkflowState, error) {
	var resp workflowResponse
	if err := c.do(ctx, http.MethodGet, "/workflows/"+url.PathEscape(workflowID), nil, &resp); err != nil {
		return nil, err
	}
	return &port.WorkflowState{
		WorkflowID:  workflowID,
		Status:      strings.ToUpper(resp.Status),
		ProgressPct: resp.Progress,
		Message:     resp.Message,
	}, nil
}

// Exists asks the API whether the entity described by payload already exists.
func (c *HTTPClient) Exists(ctx context.Context, batchType string, payload model.Payload) (bool, error) {
	var resp existsResponse
	if err := c.do(ctx, http.MethodPost, "/entities/exists", existsRequest{BatchType: batchType, Payload: payload}, &resp); err != nil {
		return false, err
	}
	return resp.Exists, nil
}

func (c *HTTPClient) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	if c.retry.InitialInterval > 0 {
		b.InitialInterval = time.Duration(c.retry.InitialInterval) * time.Millisecond
	}
	if c.retry.MaxInterval > 0 {
		b.MaxInterval = time.Duration(c.retry.MaxInterval) * time.Millisecond
	}
	if c.retry.Factor > 0 {
		b.Multiplier = c.retry.Factor
	}
	b.MaxElapsedTime = 0

	retries := c.retry.MaxAttempts - 1
	if retries < 0 {
		retries = 0
	}
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(retries)), ctx)
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	var encoded []byte
	if body != nil {
		var err error
		if encoded, err = json.Marshal(body); err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
	}
	requestID := uuid.NewString()
	target := c.baseURL + path

	attempt := 0
	op := func() error {
		attempt++
		err := c.roundTrip(ctx, method, target, requestID, encoded, out)
		if err == nil {
			return nil
		}
		if !isRetryable(err) {
			return backoff.Permanent(err)
		}
		logger.Warnf("Risk API %s %s (request %s) attempt %d failed: %v", method, path, requestID, attempt, err)
		return err
	}
	return backoff.Retry(op, c.backOff(ctx))
}

func (c *HTTPClient) roundTrip(ctx context.Context, method, target, requestID string, body []byte, out interface{}) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Method: method, URL: target, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response of %s %s: %w", method, target, err)
	}
	return nil
}

func isRetryable(err error) bool {
	if se, ok := err.(*StatusError); ok {
		return se.Temporary()
	}
	return exception.IsTemporary(err)
}

var (
	_ port.RiskModelingClient = (*HTTPClient)(nil)
	_ port.EntityChecker      = (*HTTPClient)(nil)
)
