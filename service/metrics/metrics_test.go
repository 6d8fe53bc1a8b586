package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestService(t *testing.T) {
	s := New("worker")
	s.ObservePoll("echo", PollOK, 2)
	s.ObservePoll("echo", PollEmpty, 0)
	s.ObservePoll("echo", PollOK, 1)
	s.ObserveSettled("echo", "COMPLETED", 10*time.Millisecond)
	s.ObserveReportError("echo")
	s.SetInFlight(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(s.polls.WithLabelValues("echo", PollOK)))
	assert.Equal(t, 3.0, testutil.ToFloat64(s.polled.WithLabelValues("echo")))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.settled.WithLabelValues("echo", "COMPLETED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.reportErrors.WithLabelValues("echo")))
	assert.Equal(t, 3.0, testutil.ToFloat64(s.inFlight))

	recorder := httptest.NewRecorder()
	s.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.True(t, strings.Contains(recorder.Body.String(), "worker_tasks_polled_total"))
}

func TestNilService(t *testing.T) {
	var s *Service
	s.ObservePoll("echo", PollOK, 1)
	s.ObserveSettled("echo", "FAILED", time.Second)
	s.ObserveReportError("echo")
	s.SetInFlight(1)
	assert.NoError(t, s.Shutdown(context.Background()))
}
