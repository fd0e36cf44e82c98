package series

import (
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		dim         int
		values      []float64
		expectedLen int
		expectedErr error
	}{
		{name: "scalar", dim: 1, values: []float64{1, 2, 3}, expectedLen: 3},
		{name: "vector", dim: 2, values: []float64{1, 2, 3, 4}, expectedLen: 2},
		{name: "ragged", dim: 2, values: []float64{1, 2, 3}, expectedErr: ErrDimension},
		{name: "zero_dim", dim: 0, values: []float64{1}, expectedErr: ErrDimension},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			s, err := New(test.dim, test.values)
			if !errors.Is(err, test.expectedErr) {
				t.Fatalf("new series, got err: %v, expected: %v", err, test.expectedErr)
			}
			if err == nil && s.Len() != test.expectedLen {
				t.Errorf("series length, got: %d, expected: %d", s.Len(), test.expectedLen)
			}
		})
	}
}

func TestSeries_RowHeadColumn(t *testing.T) {
	t.Parallel()
	s, err := New(2, []float64{1, 2, 3, 4, 5, 6})
	if err != nil {
		t.Fatal(err)
	}
	if row := s.Row(1); len(row) != 2 || row[0] != 3 || row[1] != 4 {
		t.Errorf("row 1, got: %v, expected: [3 4]", row)
	}
	if s.Scalar(2) != 5 {
		t.Errorf("scalar 2, got: %v, expected: 5", s.Scalar(2))
	}
	head := s.Head(2)
	if head.Len() != 2 || head.Dim() != 2 {
		t.Errorf("head, got len %d dim %d, expected len 2 dim 2", head.Len(), head.Dim())
	}
	if s.Head(10).Len() != 3 {
		t.Errorf("head beyond length must clamp, got: %d", s.Head(10).Len())
	}
	col := s.Column(1)
	if len(col) != 3 || col[0] != 2 || col[2] != 6 {
		t.Errorf("column 1, got: %v, expected: [2 4 6]", col)
	}
	c := s.Copy()
	c.Values()[0] = 100
	if s.Scalar(0) != 1 {
		t.Errorf("copy must not share storage")
	}
}
