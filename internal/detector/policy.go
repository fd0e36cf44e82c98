package detector

import (
	"fmt"

	"github.com/go-sod/rad/internal/quantile"
	"github.com/go-sod/rad/internal/series"
)

const DefaultTwoSidedQuantile = 0.9

// Policy turns residuals into a threshold and the samples beyond it.
type Policy interface {
	Score(data, reconstructed *series.Series, errFn ErrorFn, est quantile.Estimator, fraction float64) ([]Anomaly, float64, error)
}

// FractionPolicy flags the samples whose residual magnitude is strictly above
// the 1-fraction quantile, so that about fraction of all samples are flagged.
type FractionPolicy struct{}

func (FractionPolicy) Score(data, reconstructed *series.Series, errFn ErrorFn, est quantile.Estimator, fraction float64) ([]Anomaly, float64, error) {
	if !(fraction > 0 && fraction < 1) {
		return nil, 0, fmt.Errorf("%w: %v", ErrFraction, fraction)
	}

	residuals := make([]float64, data.Len())
	for i := range residuals {
		residuals[i] = errFn(data.Row(i), reconstructed.Row(i))
		est.Add(residuals[i])
	}
	threshold := est.Quantile(1 - fraction)

	var anomalies []Anomaly
	for i, r := range residuals {
		if r > threshold {
			anomalies = append(anomalies, Anomaly{Value: copyRow(data.Row(i)), Error: r, Index: i})
		}
	}
	return anomalies, threshold, nil
}

// TwoSidedPolicy flags samples whose signed residual of the first feature
// lies outside [Quantile(1-q), Quantile(q)]. The anomaly fraction and the
// error function are not used; the upper bound is returned as threshold.
type TwoSidedPolicy struct {
	Quantile float64
}

func (p TwoSidedPolicy) Score(data, reconstructed *series.Series, _ ErrorFn, est quantile.Estimator, _ float64) ([]Anomaly, float64, error) {
	q := p.Quantile
	if q == 0 {
		q = DefaultTwoSidedQuantile
	}
	if !(q > 0.5 && q < 1) {
		return nil, 0, fmt.Errorf("two-sided quantile must be in (0.5, 1): %v", q)
	}

	residuals := make([]float64, data.Len())
	for i := range residuals {
		residuals[i] = data.Scalar(i) - reconstructed.Scalar(i)
		est.Add(residuals[i])
	}
	upper := est.Quantile(q)
	lower := est.Quantile(1 - q)

	var anomalies []Anomaly
	for i, r := range residuals {
		if r > upper || r < lower {
			anomalies = append(anomalies, Anomaly{Value: copyRow(data.Row(i)), Error: r, Index: i})
		}
	}
	return anomalies, upper, nil
}
