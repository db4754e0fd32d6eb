// Package services provides external service integrations and technical concerns like completions and tokens
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Completion client error constants
var (
	ErrCompletionJobFailed  = errors.New("completion job failed")
	ErrCompletionJobTimeout = errors.New("completion job did not finish within the poll budget")
)

// Remote completion job states
const (
	completionJobQueued    = "queued"
	completionJobRunning   = "running"
	completionJobCompleted = "completed"
	completionJobFailed    = "failed"
)

// CompletionClient talks to the asynchronous LLM completion endpoint.
// The provider has no callback channel; waiting is a bounded poll loop.
type CompletionClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// HTTPCompletionClient implements CompletionClient over the provider's
// create-job / poll-status / fetch-result API
type HTTPCompletionClient struct {
	BaseURL         string
	APIKey          string
	Model           string
	HTTPClient      *http.Client
	PollInterval    time.Duration
	MaxPollAttempts int
}

// NewCompletionClient creates a new completion client
func NewCompletionClient(baseURL, apiKey, model string, timeout, pollInterval time.Duration, maxPollAttempts int) *HTTPCompletionClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	if maxPollAttempts <= 0 {
		maxPollAttempts = 60
	}
	return &HTTPCompletionClient{
		BaseURL:         strings.TrimRight(baseURL, "/"),
		APIKey:          apiKey,
		Model:           model,
		HTTPClient:      &http.Client{Timeout: timeout},
		PollInterval:    pollInterval,
		MaxPollAttempts: maxPollAttempts,
	}
}

type completionCreateReq struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type completionJobResp struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type completionResultResp struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Output string `json:"output"`
	Error  string `json:"error,omitempty"`
}

// Complete creates a remote job, polls it at a fixed interval up to the
// attempt ceiling, then fetches the result. A job that does not reach a
// terminal state within the budget fails with a timeout error.
func (c *HTTPCompletionClient) Complete(ctx context.Context, prompt string) (string, error) {
	jobID, err := c.createJob(ctx, prompt)
	if err != nil {
		return "", err
	}

	for attempt := 0; attempt < c.MaxPollAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(c.PollInterval):
		}

		job, err := c.pollJob(ctx, jobID)
		if err != nil {
			return "", err
		}

		switch job.Status {
		case completionJobCompleted:
			return c.fetchResult(ctx, jobID)
		case completionJobFailed:
			return "", fmt.Errorf("%w: %s", ErrCompletionJobFailed, job.Error)
		case completionJobQueued, completionJobRunning:
			// keep polling
		default:
			return "", fmt.Errorf("%w: unknown status %q", ErrCompletionJobFailed, job.Status)
		}
	}

	return "", ErrCompletionJobTimeout
}

func (c *HTTPCompletionClient) createJob(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(completionCreateReq{Model: c.Model, Prompt: prompt})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/completions/jobs", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("%w: create returned %d", ErrCompletionJobFailed, resp.StatusCode)
	}

	var job completionJobResp
	if err := json.NewDecoder(resp.Body).Decode(&job); err != nil {
		return "", err
	}
	if job.ID == "" {
		return "", fmt.Errorf("%w: create returned no job id", ErrCompletionJobFailed)
	}

	return job.ID, nil
}

func (c *HTTPCompletionClient) pollJob(ctx context.Context, jobID string) (*completionJobResp, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/v1/completions/jobs/"+jobID, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: poll returned %d", ErrCompletionJobFailed, resp.StatusCode)
	}

	var job completionJobResp
	if err := json.NewDecoder(resp.Body).Decode(&job); err != nil {
		return nil, err
	}

	return &job, nil
}

func (c *HTTPCompletionClient) fetchResult(ctx context.Context, jobID string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/v1/completions/jobs/"+jobID+"/result", nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: result returned %d", ErrCompletionJobFailed, resp.StatusCode)
	}

	var result completionResultResp
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	if result.Status == completionJobFailed {
		return "", fmt.Errorf("%w: %s", ErrCompletionJobFailed, result.Error)
	}

	return result.Output, nil
}
