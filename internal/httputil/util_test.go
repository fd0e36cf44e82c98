package httputil

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestDecodeErr(t *testing.T) {
	t.Parallel()
	type payload struct {
		Values []float64 `json:"values"`
	}
	tests := []struct {
		name     string
		body     string
		limit    int64
		expected int
	}{
		{name: "syntax", body: `{"values": [1,}`, limit: 1024, expected: http.StatusBadRequest},
		{name: "wrong_type", body: `{"values": "x"}`, limit: 1024, expected: http.StatusBadRequest},
		{name: "unknown_field", body: `{"other": 1}`, limit: 1024, expected: http.StatusBadRequest},
		{name: "empty", body: ``, limit: 1024, expected: http.StatusBadRequest},
		{name: "too_large", body: `{"values": [1, 2, 3, 4, 5, 6, 7, 8, 9]}`, limit: 8, expected: http.StatusRequestEntityTooLarge},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(test.body))
			dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, test.limit))
			dec.DisallowUnknownFields()
			var p payload
			err := dec.Decode(&p)
			if err == nil {
				t.Fatalf("decode must fail")
			}
			DecodeErr(context.Background(), w, err)
			if w.Code != test.expected {
				t.Errorf("status, got: %d, expected: %d", w.Code, test.expected)
			}
		})
	}

	w := httptest.NewRecorder()
	DecodeErr(context.Background(), w, errors.New("boom"))
	if w.Code != http.StatusInternalServerError {
		t.Errorf("unknown error status, got: %d, expected: %d", w.Code, http.StatusInternalServerError)
	}
}

func TestRespJSON(t *testing.T) {
	t.Parallel()
	w := httptest.NewRecorder()
	RespJSON(context.Background(), w, http.StatusCreated, map[string]int{"a": 1})
	if w.Code != http.StatusCreated || w.Header().Get("Content-Type") != "application/json" {
		t.Errorf("response, got: %d %s, expected: 201 application/json", w.Code, w.Header().Get("Content-Type"))
	}
	if !bytes.Equal(bytes.TrimSpace(w.Body.Bytes()), []byte(`{"a":1}`)) {
		t.Errorf("body, got: %s, expected: {\"a\":1}", w.Body.String())
	}
}

func TestNewClientFromConfig(t *testing.T) {
	t.Parallel()
	headers := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers <- r.Header.Get("Authorization")
	}))
	defer srv.Close()

	tests := []struct {
		name     string
		cfg      HTTPClientConfig
		expected string
		wantErr  bool
	}{
		{name: "bearer", cfg: HTTPClientConfig{BearerToken: "tok"}, expected: "Bearer tok"},
		{name: "basic", cfg: HTTPClientConfig{BasicAuth: &BasicAuth{Username: "u", Password: "p"}}, expected: "Basic dTpw"},
		{name: "none", cfg: HTTPClientConfig{}, expected: ""},
		{name: "both", cfg: HTTPClientConfig{BearerToken: "tok", BasicAuth: &BasicAuth{Username: "u"}}, wantErr: true},
	}
	for _, test := range tests {
		client, err := NewClientFromConfig(test.cfg, true, 0)
		if (err != nil) != test.wantErr {
			t.Fatalf("%s: new client error, got: %v, expected error: %v", test.name, err, test.wantErr)
		}
		if err != nil {
			continue
		}
		resp, err := client.Get(srv.URL)
		if err != nil {
			t.Fatalf("%s: request: %v", test.name, err)
		}
		resp.Body.Close()
		if got := <-headers; got != test.expected {
			t.Errorf("%s: authorization, got: %q, expected: %q", test.name, got, test.expected)
		}
	}
}
