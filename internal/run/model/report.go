// Package model holds the summary of a finished detection run.
package model

import (
	"time"

	"github.com/go-sod/rad/internal/detector"
	"github.com/google/uuid"
)

type Params struct {
	Model           string  `json:"model"`
	AnomalyFraction float64 `json:"anomalyFraction"`
	Compression     float64 `json:"compression"`
}

// Report is what a run leaves behind: the threshold it chose and the samples
// it flagged. Dropped counts the trailing samples the model did not cover.
type Report struct {
	ID        uuid.UUID          `json:"id"`
	Params    Params             `json:"params"`
	Threshold float64            `json:"threshold"`
	Scored    int                `json:"scored"`
	Dropped   int                `json:"dropped"`
	Anomalies []detector.Anomaly `json:"anomalies"`
	CreatedAt time.Time          `json:"createdAt"`
}

func NewReport(id uuid.UUID, params Params, threshold float64, scored, dropped int, anomalies []detector.Anomaly) Report {
	return Report{
		ID:        id,
		Params:    params,
		Threshold: threshold,
		Scored:    scored,
		Dropped:   dropped,
		Anomalies: anomalies,
		CreatedAt: time.Now().UTC(),
	}
}
