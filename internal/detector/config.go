package detector

import (
	"fmt"

	"github.com/go-sod/rad/internal/quantile"
)

type PolicyType string

const (
	PolicyTypeFraction PolicyType = "FRACTION"
	PolicyTypeTwoSided PolicyType = "TWO_SIDED"
)

type Config struct {
	AnomalyFraction  float64                `envconfig:"RAD_ANOMALY_FRACTION" default:"0.002" yaml:"anomaly_fraction" toml:"anomaly_fraction"`
	Compression      float64                `envconfig:"RAD_COMPRESSION" default:"100" yaml:"compression" toml:"compression"`
	Policy           PolicyType             `envconfig:"RAD_POLICY" default:"FRACTION" yaml:"policy" toml:"policy"`
	TwoSidedQuantile float64                `envconfig:"RAD_TWO_SIDED_QUANTILE" default:"0.9" yaml:"two_sided_quantile" toml:"two_sided_quantile"`
	Estimator        quantile.EstimatorType `envconfig:"RAD_ESTIMATOR" default:"TDIGEST" yaml:"estimator" toml:"estimator"`
}

func (c Config) Options() ([]Option, error) {
	provide, ok := quantile.ProvideFor(c.Estimator)
	if !ok {
		return nil, fmt.Errorf("unknown estimator type: %s", c.Estimator)
	}
	opts := []Option{WithEstimator(provide)}
	switch c.Policy {
	case PolicyTypeFraction:
		opts = append(opts, WithPolicy(FractionPolicy{}))
	case PolicyTypeTwoSided:
		opts = append(opts, WithPolicy(TwoSidedPolicy{Quantile: c.TwoSidedQuantile}))
	default:
		return nil, fmt.Errorf("unknown threshold policy: %s", c.Policy)
	}
	return opts, nil
}
