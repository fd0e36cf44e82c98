package alert

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/go-sod/rad/internal/httputil"
	"github.com/go-sod/rad/internal/run/model"
	"github.com/go-sod/rad/pkg/rworker"
)

const UserAgent = "RAD/0.1"

func WithMaxConcurrentRequest(n int) Option {
	return func(w *Webhook) {
		if n > 0 {
			w.maxConcurrentRequest = n
		}
	}
}

func WithRequestTimeout(t time.Duration) Option {
	return func(w *Webhook) {
		w.requestTimeout = t
	}
}

type Option func(*Webhook)

// Webhook posts the JSON report to every target.
type Webhook struct {
	maxConcurrentRequest int
	requestTimeout       time.Duration
	targets              Targets
	clients              []*http.Client
}

func NewWebhook(targets Targets, opts ...Option) (*Webhook, error) {
	w := &Webhook{
		maxConcurrentRequest: 16,
		requestTimeout:       10 * time.Second,
		targets:              targets,
	}
	for _, f := range opts {
		f(w)
	}
	for _, target := range targets {
		if _, err := url.ParseRequestURI(target.URL); err != nil {
			return nil, fmt.Errorf("invalid url of target %s: %w", target.Name, err)
		}
		client, err := httputil.NewClientFromConfig(target.HTTPConfig, true, w.requestTimeout)
		if err != nil {
			return nil, fmt.Errorf("unable create client for target %s: %w", target.Name, err)
		}
		w.clients = append(w.clients, client)
	}
	return w, nil
}

// Notify posts to all targets concurrently and returns the first failure.
func (w *Webhook) Notify(ctx context.Context, report model.Report) error {
	body, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("unable encode json data: %w", err)
	}

	errCh := make(chan error, 1)
	rateCh := make(chan struct{}, w.maxConcurrentRequest)
	wg := sync.WaitGroup{}
	for i := range w.targets {
		target, client := w.targets[i], w.clients[i]
		rworker.Job(&wg, func() error {
			if err := w.do(ctx, client, target, body); err != nil {
				return fmt.Errorf("alert target %s: %w", target.Name, err)
			}
			return nil
		}, rateCh, errCh)
	}
	wg.Wait()
	close(errCh)
	return <-errCh
}

func (w *Webhook) do(ctx context.Context, client *http.Client, target Target, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request error: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept-Encoding", "gzip")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("sending request error: %w", err)
	}
	defer resp.Body.Close()

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return fmt.Errorf("unable create gzip.NewReader: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	respBody, err := io.ReadAll(io.LimitReader(reader, 64*1024))
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("response was %d: %s", resp.StatusCode, respBody)
	}
	return nil
}
