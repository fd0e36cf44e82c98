package alert

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-redis/redis/v8"
	"github.com/go-sod/rad/internal/detector"
	"github.com/go-sod/rad/internal/httputil"
	"github.com/go-sod/rad/internal/run/model"
	"github.com/google/uuid"
)

func testReport() model.Report {
	return model.NewReport(uuid.New(), model.Params{Model: "WINDOWED", AnomalyFraction: 0.002, Compression: 100},
		2.5, 100, 4, []detector.Anomaly{{Value: []float64{9}, Error: 7, Index: 3}})
}

func TestWebhook_Notify(t *testing.T) {
	t.Parallel()
	report := testReport()

	var (
		mu       sync.Mutex
		received []model.Report
		auth     []string
	)
	handler := func(status int, gz bool) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			var got model.Report
			if err := json.NewDecoder(r.Body).Decode(&got); err == nil {
				mu.Lock()
				received = append(received, got)
				auth = append(auth, r.Header.Get("Authorization"))
				mu.Unlock()
			}
			if gz {
				w.Header().Set("Content-Encoding", "gzip")
				w.WriteHeader(status)
				zw := gzip.NewWriter(w)
				_, _ = zw.Write([]byte(`{"ok":true}`))
				_ = zw.Close()
				return
			}
			w.WriteHeader(status)
		}
	}
	plain := httptest.NewServer(handler(http.StatusOK, false))
	defer plain.Close()
	zipped := httptest.NewServer(handler(http.StatusAccepted, true))
	defer zipped.Close()
	failing := httptest.NewServer(handler(http.StatusBadGateway, false))
	defer failing.Close()

	ok, err := NewWebhook(Targets{
		{URL: plain.URL, Name: "plain", HTTPConfig: httputil.HTTPClientConfig{BearerToken: "secret"}},
		{URL: zipped.URL, Name: "zipped"},
	}, WithMaxConcurrentRequest(1))
	if err != nil {
		t.Fatalf("new webhook: %v", err)
	}
	if err := ok.Notify(context.Background(), report); err != nil {
		t.Fatalf("notify: %v", err)
	}

	mu.Lock()
	if len(received) != 2 || received[0].ID != report.ID || received[1].Anomalies[0].Index != 3 {
		t.Errorf("received reports, got: %v, expected two copies of %v", received, report.ID)
	}
	foundBearer := false
	for _, a := range auth {
		if a == "Bearer secret" {
			foundBearer = true
		}
	}
	mu.Unlock()
	if !foundBearer {
		t.Errorf("bearer token was not sent, got: %v", auth)
	}

	bad, err := NewWebhook(Targets{{URL: failing.URL, Name: "failing"}})
	if err != nil {
		t.Fatalf("new webhook: %v", err)
	}
	if err := bad.Notify(context.Background(), report); err == nil {
		t.Errorf("notify failing target must return an error")
	}

	if _, err := NewWebhook(Targets{{URL: "not a url", Name: "broken"}}); err == nil {
		t.Errorf("invalid target url must fail")
	}
}

type fakeRedis struct {
	mu        sync.Mutex
	lists     map[string][]interface{}
	published []string
	err       error
}

func (f *fakeRedis) RPush(_ context.Context, key string, values ...interface{}) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return redis.NewIntResult(0, f.err)
	}
	f.lists[key] = append(f.lists[key], values...)
	return redis.NewIntResult(int64(len(f.lists[key])), nil)
}

func (f *fakeRedis) Publish(_ context.Context, channel string, message interface{}) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, channel+"="+message.(string))
	return redis.NewIntResult(1, nil)
}

func TestRedis_Notify(t *testing.T) {
	t.Parallel()
	report := testReport()
	fake := &fakeRedis{lists: map[string][]interface{}{}}

	if err := NewRedis(fake, "reports", "runs").Notify(context.Background(), report); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(fake.lists["reports"]) != 1 {
		t.Fatalf("pushed reports, got: %d, expected: 1", len(fake.lists["reports"]))
	}
	var got model.Report
	if err := json.Unmarshal(fake.lists["reports"][0].([]byte), &got); err != nil || got.ID != report.ID {
		t.Errorf("pushed report, got: %v (%v), expected id %v", got.ID, err, report.ID)
	}
	if len(fake.published) != 1 || fake.published[0] != "runs="+report.ID.String() {
		t.Errorf("published, got: %v, expected: runs=%v", fake.published, report.ID)
	}

	failing := &fakeRedis{lists: map[string][]interface{}{}, err: errors.New("connection refused")}
	if err := NewRedis(failing, "reports", "runs").Notify(context.Background(), report); err == nil {
		t.Errorf("notify with failing redis must return an error")
	}
	if len(failing.published) != 0 {
		t.Errorf("nothing must be published after a failed push")
	}
}

func TestMulti_Notify(t *testing.T) {
	t.Parallel()
	boom := errors.New("boom")
	calls := 0
	count := notifierFunc(func(context.Context, model.Report) error { calls++; return nil })
	fail := notifierFunc(func(context.Context, model.Report) error { calls++; return boom })

	err := Multi{count, fail, Nop{}, count}.Notify(context.Background(), testReport())
	if !errors.Is(err, boom) {
		t.Errorf("multi error, got: %v, expected: %v", err, boom)
	}
	if calls != 3 {
		t.Errorf("notifier calls, got: %d, expected: 3", calls)
	}
}

type notifierFunc func(ctx context.Context, report model.Report) error

func (f notifierFunc) Notify(ctx context.Context, report model.Report) error {
	return f(ctx, report)
}
