package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCompletionServer mimics the provider's create/poll/result API,
// finishing the job after the configured number of polls
type fakeCompletionServer struct {
	pollsUntilDone int32
	finalStatus    string
	output         string
	polls          atomic.Int32
	lastAuth       string
	lastPrompt     string
}

func (f *fakeCompletionServer) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/completions/jobs", func(w http.ResponseWriter, r *http.Request) {
		f.lastAuth = r.Header.Get("Authorization")
		var req completionCreateReq
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.lastPrompt = req.Prompt
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(completionJobResp{ID: "job-1", Status: completionJobQueued})
	})

	mux.HandleFunc("GET /v1/completions/jobs/job-1", func(w http.ResponseWriter, r *http.Request) {
		status := completionJobRunning
		if f.polls.Add(1) >= f.pollsUntilDone {
			status = f.finalStatus
		}
		_ = json.NewEncoder(w).Encode(completionJobResp{ID: "job-1", Status: status, Error: "model exploded"})
	})

	mux.HandleFunc("GET /v1/completions/jobs/job-1/result", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(completionResultResp{ID: "job-1", Status: f.finalStatus, Output: f.output})
	})

	return mux
}

func newTestClient(baseURL string, maxPollAttempts int) *HTTPCompletionClient {
	return NewCompletionClient(baseURL, "test-key", "test-model", 5*time.Second, time.Millisecond, maxPollAttempts)
}

func TestCompleteSuccess(t *testing.T) {
	fake := &fakeCompletionServer{pollsUntilDone: 1, finalStatus: completionJobCompleted, output: "1. Q one\n2. Q two"}
	server := httptest.NewServer(fake.handler())
	defer server.Close()

	client := newTestClient(server.URL, 10)

	output, err := client.Complete(context.Background(), "generate questions")
	require.NoError(t, err)
	assert.Equal(t, "1. Q one\n2. Q two", output)
	assert.Equal(t, "Bearer test-key", fake.lastAuth)
	assert.Equal(t, "generate questions", fake.lastPrompt)
}

func TestCompletePollsUntilDone(t *testing.T) {
	fake := &fakeCompletionServer{pollsUntilDone: 3, finalStatus: completionJobCompleted, output: "answer text"}
	server := httptest.NewServer(fake.handler())
	defer server.Close()

	client := newTestClient(server.URL, 10)

	output, err := client.Complete(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "answer text", output)
	assert.GreaterOrEqual(t, fake.polls.Load(), int32(3))
}

func TestCompleteJobFailed(t *testing.T) {
	fake := &fakeCompletionServer{pollsUntilDone: 1, finalStatus: completionJobFailed}
	server := httptest.NewServer(fake.handler())
	defer server.Close()

	client := newTestClient(server.URL, 10)

	_, err := client.Complete(context.Background(), "prompt")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCompletionJobFailed)
	assert.Contains(t, err.Error(), "model exploded")
}

func TestCompletePollBudgetExhausted(t *testing.T) {
	fake := &fakeCompletionServer{pollsUntilDone: 100, finalStatus: completionJobCompleted}
	server := httptest.NewServer(fake.handler())
	defer server.Close()

	client := newTestClient(server.URL, 3)

	_, err := client.Complete(context.Background(), "prompt")
	assert.ErrorIs(t, err, ErrCompletionJobTimeout)
}

func TestCompleteContextCanceled(t *testing.T) {
	fake := &fakeCompletionServer{pollsUntilDone: 100, finalStatus: completionJobCompleted}
	server := httptest.NewServer(fake.handler())
	defer server.Close()

	client := NewCompletionClient(server.URL, "test-key", "test-model", 5*time.Second, time.Hour, 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Complete(ctx, "prompt")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCompleteCreateRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newTestClient(server.URL, 10)

	_, err := client.Complete(context.Background(), "prompt")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCompletionJobFailed)
	assert.True(t, strings.Contains(err.Error(), "401"))
}

func TestNewCompletionClientDefaults(t *testing.T) {
	client := NewCompletionClient("https://api.example.com/", "key", "model", 0, 0, 0)
	assert.Equal(t, "https://api.example.com", client.BaseURL)
	assert.Equal(t, time.Second, client.PollInterval)
	assert.Equal(t, 60, client.MaxPollAttempts)
	assert.Equal(t, 30*time.Second, client.HTTPClient.Timeout)
}
