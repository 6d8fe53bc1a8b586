package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/scy/cred"
	"github.com/viant/worker/model/task"
)

type request struct {
	Method string
	Path   string
	Query  map[string]string
	Header http.Header
	Body   []byte
}

type fakeOrchestrator struct {
	mu       sync.Mutex
	requests []*request
	handler  http.HandlerFunc
}

func (f *fakeOrchestrator) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	query := map[string]string{}
	for k := range r.URL.Query() {
		query[k] = r.URL.Query().Get(k)
	}
	f.mu.Lock()
	f.requests = append(f.requests, &request{Method: r.Method, Path: r.URL.Path, Query: query, Header: r.Header.Clone(), Body: body})
	f.mu.Unlock()
	f.handler(w, r)
}

func newFake(t *testing.T, handler http.HandlerFunc) (*fakeOrchestrator, *httptest.Server) {
	fake := &fakeOrchestrator{handler: handler}
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)
	return fake, server
}

func TestClient_Poll(t *testing.T) {
	testCases := []struct {
		name       string
		domain     string
		status     int
		body       string
		expectIDs  []string
		expectErr  bool
		expectAuth bool
	}{
		{
			name:      "two tasks",
			status:    http.StatusOK,
			body:      `[{"taskId":"t1","workflowInstanceId":"w1","taskType":"echo","inputData":{"a":1}},{"taskId":"t2","workflowInstanceId":"w1","taskType":"echo"}]`,
			expectIDs: []string{"t1", "t2"},
		},
		{
			name:   "empty array",
			status: http.StatusOK,
			body:   `[]`,
		},
		{
			name:   "no content",
			status: http.StatusNoContent,
		},
		{
			name:      "with domain",
			domain:    "gpu",
			status:    http.StatusOK,
			body:      `[{"taskId":"t3","workflowInstanceId":"w2","taskType":"echo"}]`,
			expectIDs: []string{"t3"},
		},
		{
			name:      "server error",
			status:    http.StatusInternalServerError,
			body:      `boom`,
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fake, server := newFake(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})
			client := New(server.URL, WithBasicAuth(&cred.Basic{Username: "u", Password: "p"}))
			tasks, err := client.Poll(context.Background(), "echo", "worker-1", 2, tc.domain)
			if tc.expectErr {
				require.Error(t, err)
				var statusErr *StatusError
				assert.True(t, errors.As(err, &statusErr))
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, tasks)
			var ids []string
			for _, item := range tasks {
				ids = append(ids, item.TaskID)
			}
			assert.Equal(t, tc.expectIDs, ids)

			require.Len(t, fake.requests, 1)
			req := fake.requests[0]
			assert.Equal(t, http.MethodGet, req.Method)
			assert.Equal(t, "/tasks/poll/batch/echo", req.Path)
			assert.Equal(t, "worker-1", req.Query["workerid"])
			assert.Equal(t, "2", req.Query["count"])
			domain, hasDomain := req.Query["domain"]
			assert.Equal(t, tc.domain != "", hasDomain)
			assert.Equal(t, tc.domain, domain)
			user, pass, ok := (&http.Request{Header: req.Header}).BasicAuth()
			assert.True(t, ok)
			assert.Equal(t, "u", user)
			assert.Equal(t, "p", pass)
		})
	}
}

func TestClient_Report(t *testing.T) {
	testCases := []struct {
		name        string
		outcome     *task.Outcome
		status      int
		expectErr   error
		expectCalls int
	}{
		{
			name:        "completed",
			outcome:     task.NewCompleted(&task.Task{TaskID: "t1", WorkflowInstanceID: "w1"}, "worker-1", map[string]interface{}{"success": true}),
			status:      http.StatusOK,
			expectCalls: 1,
		},
		{
			name:        "failed",
			outcome:     task.NewFailed(&task.Task{TaskID: "t1", WorkflowInstanceID: "w1"}, "worker-1", "boom"),
			status:      http.StatusOK,
			expectCalls: 1,
		},
		{
			name:      "invalid status rejected before network",
			outcome:   &task.Outcome{TaskID: "t1", WorkflowInstanceID: "w1", Status: "IN_PROGRESS"},
			status:    http.StatusOK,
			expectErr: task.ErrInvalidStatus,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fake, server := newFake(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
			})
			err := New(server.URL).Report(context.Background(), tc.outcome)
			if tc.expectErr != nil {
				assert.ErrorIs(t, err, tc.expectErr)
			} else {
				assert.NoError(t, err)
			}
			require.Len(t, fake.requests, tc.expectCalls)
			if tc.expectCalls == 0 {
				return
			}
			req := fake.requests[0]
			assert.Equal(t, http.MethodPost, req.Method)
			assert.Equal(t, "/tasks", req.Path)
			sent := &task.Outcome{}
			require.NoError(t, json.Unmarshal(req.Body, sent))
			assert.Equal(t, tc.outcome.Status, sent.Status)
			assert.Equal(t, "w1", sent.WorkflowInstanceID)
			assert.Equal(t, "worker-1", sent.WorkerID)
		})
	}
}

func TestClient_ReportTransportError(t *testing.T) {
	_, server := newFake(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	})
	client := New(server.URL, WithTimeout(20*time.Millisecond))
	err := client.Report(context.Background(), task.NewFailed(&task.Task{TaskID: "t1"}, "w", "x"))
	assert.Error(t, err)
}

func TestClient_RegisterTaskDefinitions(t *testing.T) {
	fake, server := newFake(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	def := task.NewDefinition(task.Block{"name": "echo"})
	require.NoError(t, New(server.URL).RegisterTaskDefinitions(context.Background(), def))
	require.Len(t, fake.requests, 1)
	assert.Equal(t, "/metadata/taskdefs", fake.requests[0].Path)

	var sent []*task.Definition
	require.NoError(t, json.Unmarshal(fake.requests[0].Body, &sent))
	require.Len(t, sent, 1)
	assert.Equal(t, "echo", sent[0].Name)
	assert.Equal(t, task.DefaultRetryCount, sent[0].RetryCount)
}

func TestClient_RegisterCapability(t *testing.T) {
	testCases := []struct {
		name      string
		status    int
		body      string
		expectErr bool
	}{
		{name: "accepted", status: http.StatusOK, body: `{"code":200,"message":"ok","data":{"success":true}}`},
		{name: "rejected code", status: http.StatusOK, body: `{"code":500,"message":"duplicate","data":{"success":false}}`, expectErr: true},
		{name: "not successful", status: http.StatusOK, body: `{"code":200,"message":"ok","data":{"success":false}}`, expectErr: true},
		{name: "http error", status: http.StatusForbidden, body: `forbidden`, expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fake, server := newFake(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})
			client := New("http://unused", WithRegistration(server.URL, "reg-token"))
			block := task.Block{"name": "echo"}
			err := client.RegisterCapability(context.Background(), block)
			if tc.expectErr {
				var regErr *RegistrationError
				require.True(t, errors.As(err, &regErr))
				assert.ErrorIs(t, err, ErrRegistration)
				assert.Equal(t, "echo", regErr.Block)
			} else {
				require.NoError(t, err)
			}
			require.Len(t, fake.requests, 1)
			req := fake.requests[0]
			assert.Equal(t, "/api/blocks/register", req.Path)
			assert.Equal(t, "reg-token", req.Header.Get(RegistrationKeyHeader))
			sent := map[string][]map[string]interface{}{}
			require.NoError(t, json.Unmarshal(req.Body, &sent))
			require.Len(t, sent["blocks"], 1)
			assert.Equal(t, "echo", sent["blocks"][0]["name"])
		})
	}
}
