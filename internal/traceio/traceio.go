// Package traceio reads raw traces into series.
package traceio

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-sod/rad/internal/series"
)

// DefaultScale converts raw 16 bit EKG counts to millivolts.
const DefaultScale = 1.0 / 200

type Format string

const (
	FormatBinary16 Format = "BIN16"
	FormatTSV      Format = "TSV"
)

var (
	ErrOddLength = errors.New("16 bit trace has an odd number of bytes")
	ErrRagged    = errors.New("rows have different number of columns")
)

// Read16b reads big-endian signed 16 bit samples, each multiplied by scale.
func Read16b(r io.Reader, scale float64) (*series.Series, error) {
	raw, err := io.ReadAll(bufio.NewReader(r))
	if err != nil {
		return nil, fmt.Errorf("read trace: %w", err)
	}
	if len(raw)%2 != 0 {
		return nil, fmt.Errorf("%w: %d", ErrOddLength, len(raw))
	}
	values := make([]float64, len(raw)/2)
	for i := range values {
		values[i] = float64(int16(binary.BigEndian.Uint16(raw[2*i:]))) * scale
	}
	return series.FromScalars(values), nil
}

// ReadTSV reads one sample per line with tab or space separated features.
// Blank lines and lines starting with # are skipped.
func ReadTSV(r io.Reader) (*series.Series, error) {
	var (
		values []float64
		dim    int
		line   int
	)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if dim == 0 {
			dim = len(fields)
		}
		if len(fields) != dim {
			return nil, fmt.Errorf("line %d: %w: %d != %d", line, ErrRagged, len(fields), dim)
		}
		for _, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			values = append(values, v)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan trace: %w", err)
	}
	if dim == 0 {
		dim = 1
	}
	return series.New(dim, values)
}

// Open reads the trace at path. Scale only applies to binary traces.
func Open(path string, format Format, scale float64) (*series.Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open trace: %w", err)
	}
	defer f.Close()

	switch format {
	case FormatBinary16:
		return Read16b(f, scale)
	case FormatTSV:
		return ReadTSV(f)
	default:
		return nil, fmt.Errorf("unknown trace format: %s", format)
	}
}
