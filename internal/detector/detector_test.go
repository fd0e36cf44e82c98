package detector

import (
	"errors"
	"math"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/go-sod/rad/internal/quantile"
	"github.com/go-sod/rad/internal/series"
	"github.com/valyala/fastrand"
)

func uniform(seed uint32, n int) []float64 {
	var rng fastrand.RNG
	rng.Seed(seed)
	values := make([]float64, n)
	for i := range values {
		values[i] = float64(rng.Uint32()) / (1 << 32)
	}
	return values
}

func TestDetect_FractionConverges(t *testing.T) {
	t.Parallel()
	const n = 100000
	data := series.FromScalars(uniform(11, n))
	zeros := series.FromScalars(make([]float64, n))

	for _, fraction := range []float64{0.002, 0.01, 0.05} {
		anomalies, threshold, err := New().Detect(data, zeros, fraction, 100)
		if err != nil {
			t.Fatalf("detect %v: %v", fraction, err)
		}
		observed := float64(len(anomalies)) / n
		if math.Abs(observed-fraction) >= 0.001 {
			t.Errorf("flagged fraction, got: %v (threshold %v), expected: %v", observed, threshold, fraction)
		}
		for i, a := range anomalies {
			if a.Error <= threshold {
				t.Fatalf("anomaly %d residual %v not above threshold %v", i, a.Error, threshold)
			}
			if i > 0 && anomalies[i-1].Index >= a.Index {
				t.Fatalf("anomalies out of order at %d", i)
			}
		}
	}
}

func TestDetect_IdentityFlagsNothing(t *testing.T) {
	t.Parallel()
	pairs, _ := series.New(2, uniform(5, 2000))
	tests := []struct {
		name     string
		data     *series.Series
		fraction float64
	}{
		{name: "scalar_small_fraction", data: series.FromScalars(uniform(3, 1000)), fraction: 0.001},
		{name: "scalar_large_fraction", data: series.FromScalars(uniform(3, 1000)), fraction: 0.999},
		{name: "pairs", data: pairs, fraction: 0.5},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			anomalies, threshold, err := New().Detect(test.data, test.data.Copy(), test.fraction, 100)
			if err != nil {
				t.Fatalf("detect: %v", err)
			}
			if len(anomalies) != 0 || threshold != 0 {
				t.Errorf("identity reconstruction, got: %d anomalies at %v, expected: none at 0", len(anomalies), threshold)
			}
		})
	}
}

func TestDetect_Monotonic(t *testing.T) {
	t.Parallel()
	data := series.FromScalars(uniform(21, 20000))
	recon := series.FromScalars(uniform(22, 20000))
	tests := []struct {
		name      string
		estimator quantile.ProvideFn
	}{
		{name: "tdigest", estimator: quantile.NewDigest},
		{name: "exact", estimator: quantile.NewExact},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			d := New(WithEstimator(test.estimator))
			previous := -1
			for _, fraction := range []float64{0.001, 0.002, 0.005, 0.01, 0.05, 0.1, 0.3, 0.5, 0.9} {
				anomalies, _, err := d.Detect(data, recon, fraction, 100)
				if err != nil {
					t.Fatalf("detect %v: %v", fraction, err)
				}
				if len(anomalies) < previous {
					t.Errorf("fraction %v, got: %d anomalies, expected at least %d", fraction, len(anomalies), previous)
				}
				previous = len(anomalies)
			}
		})
	}
}

func TestDetect_Errors(t *testing.T) {
	t.Parallel()
	data := series.FromScalars([]float64{1, 2, 3, 4})
	pairs, _ := series.New(2, []float64{1, 2, 3, 4, 5, 6, 7, 8})
	tests := []struct {
		name        string
		recon       *series.Series
		fraction    float64
		compression float64
		expected    error
	}{
		{name: "shorter_by_one", recon: series.FromScalars([]float64{1, 2, 3}), fraction: 0.1, compression: 100, expected: ErrLengthMismatch},
		{name: "longer_by_one", recon: series.FromScalars([]float64{1, 2, 3, 4, 5}), fraction: 0.1, compression: 100, expected: ErrLengthMismatch},
		{name: "other_dim", recon: pairs, fraction: 0.1, compression: 100, expected: series.ErrDimension},
		{name: "zero_fraction", recon: data, fraction: 0, compression: 100, expected: ErrFraction},
		{name: "unit_fraction", recon: data, fraction: 1, compression: 100, expected: ErrFraction},
		{name: "zero_compression", recon: data, fraction: 0.1, compression: 0, expected: ErrCompression},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			anomalies, _, err := New().Detect(data, test.recon, test.fraction, test.compression)
			if !errors.Is(err, test.expected) {
				t.Errorf("detect error, got: %v, expected: %v", err, test.expected)
			}
			if anomalies != nil {
				t.Errorf("partial output on error: %s", spew.Sdump(anomalies))
			}
		})
	}

	empty := series.FromScalars(nil)
	if _, _, err := New().Detect(empty, empty, 0.1, 100); !errors.Is(err, ErrEmpty) {
		t.Errorf("detect on empty series, got: %v, expected: %v", err, ErrEmpty)
	}
}

func TestDetect_MultiFeatureResidual(t *testing.T) {
	t.Parallel()
	data, _ := series.New(2, []float64{0, 0, 3, 4, 0, 0, 0, 0})
	recon, _ := series.New(2, make([]float64, 8))

	anomalies, _, err := New(WithEstimator(quantile.NewExact)).Detect(data, recon, 0.25, 100)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if len(anomalies) != 1 || anomalies[0].Index != 1 || anomalies[0].Error != 5 {
		t.Fatalf("anomalies, got: %s, expected index 1 with error 5", spew.Sdump(anomalies))
	}
	anomalies[0].Value[0] = 100
	if data.Row(1)[0] != 3 {
		t.Errorf("anomaly value must be a copy of the sample")
	}

	squared := func(observed, reconstructed []float64) float64 {
		e := EuclideanError(observed, reconstructed)
		return e * e
	}
	anomalies, threshold, err := New(WithEstimator(quantile.NewExact), WithErrorFn(squared)).Detect(data, recon, 0.25, 100)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if len(anomalies) != 1 || anomalies[0].Error != 25 {
		t.Errorf("squared error anomalies, got: %s (threshold %v), expected error 25", spew.Sdump(anomalies), threshold)
	}
}

func TestTwoSidedPolicy(t *testing.T) {
	t.Parallel()
	values := make([]float64, 101)
	for i := range values {
		values[i] = float64(i - 50)
	}
	data := series.FromScalars(values)
	zeros := series.FromScalars(make([]float64, len(values)))

	d := New(WithEstimator(quantile.NewExact), WithPolicy(TwoSidedPolicy{Quantile: 0.9}))
	anomalies, upper, err := d.Detect(data, zeros, 0.5, 100)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if upper != 40 {
		t.Errorf("upper threshold, got: %v, expected: 40", upper)
	}
	if len(anomalies) != 20 {
		t.Fatalf("anomalies, got: %d, expected: 20", len(anomalies))
	}
	if anomalies[0].Error != -50 || anomalies[19].Error != 50 {
		t.Errorf("signed residuals, got: %v .. %v, expected: -50 .. 50", anomalies[0].Error, anomalies[19].Error)
	}

	bad := New(WithPolicy(TwoSidedPolicy{Quantile: 0.3}))
	if _, _, err := bad.Detect(data, zeros, 0.5, 100); err == nil {
		t.Errorf("two-sided quantile below one half must fail")
	}
}

func TestConfig_Options(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "fraction", cfg: Config{Policy: PolicyTypeFraction, Estimator: quantile.EstimatorTypeDigest}},
		{name: "two_sided", cfg: Config{Policy: PolicyTypeTwoSided, Estimator: quantile.EstimatorTypeExact, TwoSidedQuantile: 0.9}},
		{name: "unknown_policy", cfg: Config{Policy: "MEDIAN", Estimator: quantile.EstimatorTypeDigest}, wantErr: true},
		{name: "unknown_estimator", cfg: Config{Policy: PolicyTypeFraction, Estimator: "HLL"}, wantErr: true},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			_, err := test.cfg.Options()
			if (err != nil) != test.wantErr {
				t.Errorf("options error, got: %v, expected error: %v", err, test.wantErr)
			}
		})
	}
}
