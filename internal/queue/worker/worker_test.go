package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/geocoder89/webtwist/internal/jobs"
	"github.com/geocoder89/webtwist/internal/notifications"
	"github.com/geocoder89/webtwist/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type fakeNotifier struct {
	sent []notifications.ContactAlert
	err  error
}

func (f *fakeNotifier) SendContactAlert(_ context.Context, a notifications.ContactAlert) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, a)
	return nil
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

func newTestWorker(t *testing.T, n notifications.Notifier, p Pinger) (*Worker, *observability.Prom) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	prom := observability.NewProm(prometheus.NewRegistry())
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	w := New(Config{RedisOpt: asynq.RedisClientOpt{Addr: "127.0.0.1:0"}}, n, p, prom, log)
	return w, prom
}

func contactTask(t *testing.T) *asynq.Task {
	t.Helper()
	task, err := jobs.NewContactNotificationTask(jobs.ContactNotificationPayload{
		MessageID:   "m-1",
		Name:        "Ann",
		Email:       "ann@example.com",
		Message:     "hi",
		SubmittedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("task: %v", err)
	}
	return task
}

func TestHandleContactNotification_Delivers(t *testing.T) {
	n := &fakeNotifier{}
	w, prom := newTestWorker(t, n, nil)

	if err := w.HandleContactNotification(context.Background(), contactTask(t)); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(n.sent) != 1 || n.sent[0].MessageID != "m-1" {
		t.Fatalf("unexpected deliveries %+v", n.sent)
	}
	if got := testutil.ToFloat64(prom.JobResults.WithLabelValues("contact_notification", "done")); got != 1 {
		t.Fatalf("expected done metric, got %v", got)
	}
}

func TestHandleContactNotification_Failures(t *testing.T) {
	n := &fakeNotifier{err: notifications.ErrCircuitOpen}
	w, prom := newTestWorker(t, n, nil)

	err := w.HandleContactNotification(context.Background(), contactTask(t))
	if !errors.Is(err, notifications.ErrCircuitOpen) {
		t.Fatalf("expected provider error to surface, got %v", err)
	}
	if got := testutil.ToFloat64(prom.JobResults.WithLabelValues("contact_notification", "failed")); got != 1 {
		t.Fatalf("expected failed metric, got %v", got)
	}

	bad := asynq.NewTask(string(jobs.JobContactNotification), []byte("{}"))
	err = w.HandleContactNotification(context.Background(), bad)
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("invalid payload should skip retries, got %v", err)
	}
}

func TestHealthHandler(t *testing.T) {
	w, _ := newTestWorker(t, &fakeNotifier{}, fakePinger{})
	h := w.HealthHandler(nil)

	check := func(path string, want int) {
		t.Helper()
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != want {
			t.Fatalf("%s: expected %d, got %d (%s)", path, want, rec.Code, rec.Body.String())
		}
	}

	check("/healthz", http.StatusOK)
	check("/readyz", http.StatusServiceUnavailable)

	w.setReady(true)
	check("/readyz", http.StatusOK)

	w.redis = fakePinger{err: errors.New("redis down")}
	check("/readyz", http.StatusServiceUnavailable)
}

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt int
		min     time.Duration
	}{
		{0, 2 * time.Second},
		{1, 4 * time.Second},
		{2, 8 * time.Second},
		{20, 5 * time.Minute},
	}

	for _, tt := range tests {
		got := ExponentialBackoff(tt.attempt)
		if got < tt.min || got >= tt.min+250*time.Millisecond {
			t.Fatalf("attempt %d: delay %s outside [%s, %s)", tt.attempt, got, tt.min, tt.min+250*time.Millisecond)
		}
	}
}
