package telegram_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/wayfinder/pkg/adapters/telegram"
	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu       sync.Mutex
	events   []domain.Event
	answered []string
	err      error
}

func (r *recorder) Dispatch(ctx context.Context, ev domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return r.err
}

func (r *recorder) AnswerCallback(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.answered = append(r.answered, id)
	return nil
}

func (r *recorder) snapshot() ([]domain.Event, []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Event(nil), r.events...), append([]string(nil), r.answered...)
}

const tapUpdate = `{"update_id":1,"callback_query":{"id":"cb","from":{"id":5,"first_name":"Ana"},"data":"start"}}`

func post(h http.Handler, body, secret string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	if secret != "" {
		req.Header.Set(telegram.SecretHeader, secret)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestWebhook_DispatchesAndAnswers(t *testing.T) {
	rec := &recorder{}
	h := telegram.NewWebhook(rec, telegram.WithSecret("s3cret"), telegram.WithAnswerer(rec))

	w := post(h, tapUpdate, "s3cret")
	assert.Equal(t, http.StatusOK, w.Code)

	events, answered := rec.snapshot()
	require.Len(t, events, 1)
	assert.Equal(t, "start", events[0].Token)
	assert.Equal(t, []string{"cb"}, answered)
}

func TestWebhook_RejectsBadSecret(t *testing.T) {
	rec := &recorder{}
	h := telegram.NewWebhook(rec, telegram.WithSecret("s3cret"))

	assert.Equal(t, http.StatusForbidden, post(h, tapUpdate, "").Code)
	assert.Equal(t, http.StatusForbidden, post(h, tapUpdate, "wrong").Code)
	events, _ := rec.snapshot()
	assert.Empty(t, events)
}

func TestWebhook_BadBody(t *testing.T) {
	h := telegram.NewWebhook(&recorder{})
	assert.Equal(t, http.StatusBadRequest, post(h, "{", "").Code)
}

func TestWebhook_DispatchErrorIsAcknowledged(t *testing.T) {
	rec := &recorder{err: errors.New("send failed")}
	h := telegram.NewWebhook(rec)
	assert.Equal(t, http.StatusOK, post(h, tapUpdate, "").Code)
}

func TestWebhook_HealthAndMetrics(t *testing.T) {
	healthy := true
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("wayfinder_events_total 1\n"))
	})
	h := telegram.NewWebhook(&recorder{},
		telegram.WithMetricsHandler(metrics),
		telegram.WithHealthCheck(func(ctx context.Context) error {
			if healthy {
				return nil
			}
			return errors.New("redis down")
		}),
	)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	healthy = false
	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, w.Body.String(), "wayfinder_events_total")
}

type scriptedSource struct {
	mu      sync.Mutex
	batches [][]telegram.Update
	offsets []int64
	fail    int
}

func (s *scriptedSource) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]telegram.Update, error) {
	s.mu.Lock()
	s.offsets = append(s.offsets, offset)
	if s.fail > 0 {
		s.fail--
		s.mu.Unlock()
		return nil, errors.New("network down")
	}
	if len(s.batches) == 0 {
		s.mu.Unlock()
		<-ctx.Done()
		return nil, ctx.Err()
	}
	batch := s.batches[0]
	s.batches = s.batches[1:]
	s.mu.Unlock()
	return batch, nil
}

func TestPoller_AdvancesOffsetAndStopsOnCancel(t *testing.T) {
	src := &scriptedSource{
		fail: 1,
		batches: [][]telegram.Update{
			{{UpdateID: 7, Message: &telegram.Message{
				From: &telegram.User{ID: 5}, Chat: telegram.Chat{ID: 5, Type: "private"}, Text: "hello",
			}}},
			{{UpdateID: 8, CallbackQuery: &telegram.CallbackQuery{ID: "cb", From: telegram.User{ID: 5}, Data: "start"}}},
		},
	}
	rec := &recorder{}
	p := telegram.NewPoller(src, rec,
		telegram.WithBackoff(time.Millisecond),
		telegram.WithPollAnswerer(rec),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	require.Eventually(t, func() bool {
		events, _ := rec.snapshot()
		return len(events) == 2
	}, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	src.mu.Lock()
	defer src.mu.Unlock()
	assert.Equal(t, []int64{0, 0, 8, 9}, src.offsets)
	_, answered := rec.snapshot()
	assert.Equal(t, []string{"cb"}, answered)
}

type conflictSource struct{}

func (conflictSource) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]telegram.Update, error) {
	return nil, &telegram.APIError{Method: "getUpdates", Code: 409, Description: "Conflict: webhook is active"}
}

func TestPoller_ConflictIsFatal(t *testing.T) {
	err := telegram.NewPoller(conflictSource{}, &recorder{}).Run(context.Background())
	var apiErr *telegram.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 409, apiErr.Code)
}
