package remote_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	port "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/application/port"
	config "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/config"
	model "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/domain/model"
	"github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/infrastructure/remote"
)

func newClient(url string) *remote.HTTPClient {
	return remote.NewHTTPClient(config.RiskAPIConfig{
		BaseURL:        url + "/",
		APIKey:         "secret",
		TimeoutSeconds: 5,
		Retry:          config.RetryConfig{MaxAttempts: 3, InitialInterval: 1, MaxInterval: 5, Factor: 2},
	})
}

func TestHTTPClient_Submit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/workflows", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "EDM Creation", body["batch_type"])
		assert.Equal(t, "EDM_A", body["payload"].(map[string]interface{})["Database"])

		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"workflow_id":"wf-1"}`))
	}))
	defer srv.Close()

	id, err := newClient(srv.URL).Submit(context.Background(), port.Submission{
		JobID: 7, BatchID: 3, BatchType: "EDM Creation", Payload: model.Payload{"Database": "EDM_A"},
	})
	require.NoError(t, err)
	assert.Equal(t, "wf-1", id)
}

func TestHTTPClient_RetriesTransientFailures(t *testing.T) {
	var calls int32
	var requestIDs []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestIDs = append(requestIDs, r.Header.Get("X-Request-ID"))
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"workflow_id":"wf-2"}`))
	}))
	defer srv.Close()

	id, err := newClient(srv.URL).Submit(context.Background(), port.Submission{JobID: 1})
	require.NoError(t, err)
	assert.Equal(t, "wf-2", id)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	require.Len(t, requestIDs, 3)
	assert.Equal(t, requestIDs[0], requestIDs[2], "retries reuse the request id")
}

func TestHTTPClient_GivesUpAfterMaxAttempts(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newClient(srv.URL).Submit(context.Background(), port.Submission{JobID: 1})
	var statusErr *remote.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestHTTPClient_DoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "bad payload", http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := newClient(srv.URL).Submit(context.Background(), port.Submission{JobID: 1})
	var statusErr *remote.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.False(t, statusErr.Temporary())
	assert.Contains(t, statusErr.Body, "bad payload")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestHTTPClient_PollAndExists(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/workflows/wf-9":
			_, _ = w.Write([]byte(`{"workflow_id":"wf-9","status":"failed","progress":40,"message":"EDM locked"}`))
		case "/entities/exists":
			_, _ = w.Write([]byte(`{"exists":true}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()
	client := newClient(srv.URL)

	state, err := client.Poll(context.Background(), "wf-9")
	require.NoError(t, err)
	assert.Equal(t, port.WorkflowStatusFailed, state.Status)
	assert.Equal(t, 40.0, state.ProgressPct)
	assert.Equal(t, "EDM locked", state.Message)

	exists, err := client.Exists(context.Background(), "EDM Creation", model.Payload{"Database": "EDM_A"})
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestDryRunClient(t *testing.T) {
	c := remote.NewDryRunClient()
	id, err := c.Submit(context.Background(), port.Submission{JobID: 1})
	require.NoError(t, err)
	assert.Contains(t, id, "dry-run-")
	assert.Equal(t, 1, c.Submitted())

	state, err := c.Poll(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, port.WorkflowStatusFinished, state.Status)

	exists, err := c.Exists(context.Background(), "EDM Creation", nil)
	require.NoError(t, err)
	assert.False(t, exists)
}
