// Package artifact writes the diagnostic outputs of a run and ships them to
// a sink.
package artifact

import (
	"bufio"
	"fmt"
	"io"

	"github.com/go-sod/rad/internal/codebook"
	"github.com/go-sod/rad/internal/detector"
	"github.com/go-sod/rad/internal/series"
)

const (
	CodebookName  = "dict.tsv"
	TraceName     = "trace.tsv"
	AnomaliesName = "anomalies.tsv"
)

// WriteCodebook writes one centroid per line.
func WriteCodebook(w io.Writer, cb *codebook.Codebook) error {
	bw := bufio.NewWriter(w)
	for _, c := range cb.Centroids {
		writeRow(bw, c)
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// WriteTrace writes the observed sample, its reconstruction and the codeword
// label for every reconstructed sample. Missing labels are written as -1.
func WriteTrace(w io.Writer, data, reconstructed *series.Series, labels []int) error {
	if reconstructed.Len() > data.Len() {
		return fmt.Errorf("reconstruction longer than data: %d > %d", reconstructed.Len(), data.Len())
	}
	bw := bufio.NewWriter(w)
	for i := 0; i < reconstructed.Len(); i++ {
		label := -1
		if i < len(labels) {
			label = labels[i]
		}
		writeRow(bw, data.Row(i))
		bw.WriteByte('\t')
		writeRow(bw, reconstructed.Row(i))
		fmt.Fprintf(bw, "\t%d\n", label)
	}
	return bw.Flush()
}

// WriteAnomalies writes the sample value, residual and index of every anomaly.
func WriteAnomalies(w io.Writer, anomalies []detector.Anomaly) error {
	bw := bufio.NewWriter(w)
	for _, a := range anomalies {
		writeRow(bw, a.Value)
		fmt.Fprintf(bw, "\t%.3f\t%d\n", a.Error, a.Index)
	}
	return bw.Flush()
}

func writeRow(w *bufio.Writer, row []float64) {
	for i, v := range row {
		if i > 0 {
			w.WriteByte('\t')
		}
		fmt.Fprintf(w, "%.3f", v)
	}
}
