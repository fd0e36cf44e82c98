package integration

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-sod/rad/internal/database"
	"github.com/go-sod/rad/internal/detect"
	"github.com/go-sod/rad/internal/detector"
	"github.com/go-sod/rad/internal/model"
	"github.com/go-sod/rad/internal/model/lowpass"
	"github.com/go-sod/rad/internal/pipeline"
	rundb "github.com/go-sod/rad/internal/run/database"
	"github.com/go-sod/rad/internal/server"
	"github.com/google/uuid"
)

func startServer(t *testing.T) *Client {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())

	db, err := database.NewFromEnv(ctx, &database.Config{
		FileName:       filepath.Join(t.TempDir(), "rad.db"),
		LockTimeoutSec: 1,
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	runs := rundb.New(db)

	detectHandler, err := detect.NewHandler(
		&detect.Config{RequestTimeout: 10 * time.Second, MaxBodyBytes: 1 << 20, MaxSamples: 10000},
		func() (model.Model, error) { return lowpass.New(lowpass.WithWidth(3)) },
		detector.New(),
		pipeline.Params{AnomalyFraction: 0.01, Compression: 100},
		pipeline.WithRunStore(runs),
		pipeline.WithModelName("LOWPASS"),
	)
	if err != nil {
		t.Fatalf("new detect handler: %v", err)
	}

	srv, err := server.New("127.0.0.1:0")
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		router := server.NewRouter(ctx, server.Routes{Detect: detectHandler, Runs: detect.NewRunsHandler(runs)})
		if err := srv.ServeHTTPHandler(ctx, router); err != nil {
			t.Errorf("serve: %v", err)
		}
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		_ = db.Close(context.Background())
	})
	return NewClient(srv.Addr())
}

func TestClient(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	client := startServer(t)

	if err := client.Health(ctx); err != nil {
		t.Fatalf("health: %v", err)
	}

	values := make([]float64, 400)
	values[250] = 40
	resp, err := client.Detect(ctx, DetectRequest{Values: values, Fraction: 0.003})
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if resp.Scored != 400 {
		t.Errorf("scored, got: %d, expected: 400", resp.Scored)
	}
	var spike bool
	for _, a := range resp.Anomalies {
		spike = spike || a.Index == 250
	}
	if !spike {
		t.Errorf("spike at 250 not flagged, got: %v", resp.Anomalies)
	}

	run, err := client.Run(ctx, resp.RunID)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if run.ID != resp.RunID || len(run.Anomalies) != len(resp.Anomalies) {
		t.Errorf("stored run, got: %+v, expected: %+v", run, resp)
	}

	_, err = client.Run(ctx, uuid.New())
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.Code != http.StatusNotFound {
		t.Errorf("missing run, got: %v, expected: status %d", err, http.StatusNotFound)
	}

	_, err = client.Detect(ctx, DetectRequest{Dim: 3, Values: []float64{1, 2}})
	if !errors.As(err, &statusErr) || statusErr.Code != http.StatusBadRequest {
		t.Errorf("ragged detect, got: %v, expected: status %d", err, http.StatusBadRequest)
	}
}
