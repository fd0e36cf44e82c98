package traceio

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRead16b(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		raw      []byte
		scale    float64
		expected []float64
		err      error
	}{
		{
			name:     "signed_big_endian",
			raw:      []byte{0x00, 0xc8, 0xff, 0x38, 0x7f, 0xff, 0x80, 0x00},
			scale:    DefaultScale,
			expected: []float64{1, -1, 32767.0 / 200, -32768.0 / 200},
		},
		{
			name:     "empty",
			raw:      nil,
			scale:    1,
			expected: []float64{},
		},
		{
			name:  "odd_length",
			raw:   []byte{0x00, 0x01, 0x02},
			scale: 1,
			err:   ErrOddLength,
		},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			s, err := Read16b(bytes.NewReader(test.raw), test.scale)
			if !errors.Is(err, test.err) {
				t.Fatalf("read error, got: %v, expected: %v", err, test.err)
			}
			if err != nil {
				return
			}
			if s.Len() != len(test.expected) {
				t.Fatalf("samples, got: %d, expected: %d", s.Len(), len(test.expected))
			}
			for i, v := range test.expected {
				if math.Abs(s.Scalar(i)-v) > 1e-12 {
					t.Errorf("sample %d, got: %v, expected: %v", i, s.Scalar(i), v)
				}
			}
		})
	}
}

func TestReadTSV(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		input    string
		dim      int
		expected []float64
		wantErr  bool
	}{
		{name: "single_column", input: "1.5\n-2\n\n3\n", dim: 1, expected: []float64{1.5, -2, 3}},
		{name: "two_columns_with_comment", input: "# a\tb\n1\t2\n3 4\n", dim: 2, expected: []float64{1, 2, 3, 4}},
		{name: "ragged", input: "1\t2\n3\n", wantErr: true},
		{name: "not_a_number", input: "1\nabc\n", wantErr: true},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			s, err := ReadTSV(strings.NewReader(test.input))
			if (err != nil) != test.wantErr {
				t.Fatalf("read error, got: %v, expected error: %v", err, test.wantErr)
			}
			if err != nil {
				return
			}
			if s.Dim() != test.dim || len(s.Values()) != len(test.expected) {
				t.Fatalf("series, got: dim %d values %v, expected: dim %d values %v", s.Dim(), s.Values(), test.dim, test.expected)
			}
			for i, v := range test.expected {
				if s.Values()[i] != v {
					t.Errorf("value %d, got: %v, expected: %v", i, s.Values()[i], v)
				}
			}
		})
	}
}

func TestOpen(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	bin := filepath.Join(dir, "trace.bin")
	if err := os.WriteFile(bin, []byte{0x00, 0x02, 0x00, 0x04}, 0o600); err != nil {
		t.Fatalf("write trace: %v", err)
	}
	s, err := Open(bin, FormatBinary16, 0.5)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if s.Len() != 2 || s.Scalar(1) != 2 {
		t.Errorf("binary trace, got: %v, expected: [1 2]", s.Values())
	}
	if _, err := Open(bin, "WAV", 1); err == nil {
		t.Errorf("unknown format must fail")
	}
	if _, err := Open(filepath.Join(dir, "missing"), FormatTSV, 1); err == nil {
		t.Errorf("missing file must fail")
	}
}
