package integration

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

type DetectRequest struct {
	Dim         int       `json:"dim,omitempty"`
	Values      []float64 `json:"values"`
	Fit         []float64 `json:"fit,omitempty"`
	Fraction    float64   `json:"fraction,omitempty"`
	Compression float64   `json:"compression,omitempty"`
}

type Anomaly struct {
	Value []float64 `json:"value"`
	Error float64   `json:"error"`
	Index int       `json:"index"`
}

type DetectResponse struct {
	RunID     uuid.UUID `json:"runId"`
	Threshold float64   `json:"threshold"`
	Scored    int       `json:"scored"`
	Dropped   int       `json:"dropped"`
	Anomalies []Anomaly `json:"anomalies"`
}

type Run struct {
	ID        uuid.UUID `json:"id"`
	Threshold float64   `json:"threshold"`
	Scored    int       `json:"scored"`
	Dropped   int       `json:"dropped"`
	Anomalies []Anomaly `json:"anomalies"`
	CreatedAt time.Time `json:"createdAt"`
}

// StatusError is returned for every non 2xx response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return "unexpected status " + http.StatusText(e.Code) + ": " + e.Body
}
