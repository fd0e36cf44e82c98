package windowed

import (
	"fmt"

	"github.com/go-sod/rad/internal/codebook"
	"github.com/go-sod/rad/internal/geom"
	"github.com/go-sod/rad/internal/window"
)

type Config struct {
	Window       int                   `envconfig:"RAD_WINDOW" default:"32" yaml:"window" toml:"window"`
	Step         int                   `envconfig:"RAD_STEP" default:"2" yaml:"step" toml:"step"`
	Samples      int                   `envconfig:"RAD_SAMPLES" default:"200000" yaml:"samples" toml:"samples"`
	Clusters     int                   `envconfig:"RAD_CLUSTERS" default:"400" yaml:"clusters" toml:"clusters"`
	Iterations   int                   `envconfig:"RAD_ITERATIONS" default:"10" yaml:"iterations" toml:"iterations"`
	Taper        window.TaperType      `envconfig:"RAD_TAPER" default:"HANN" yaml:"taper" toml:"taper"`
	SearchAlg    codebook.SearchAlg    `envconfig:"RAD_SEARCH_ALG" default:"BRUTE" yaml:"search_alg" toml:"search_alg"`
	Distance     geom.DistanceFuncType `envconfig:"RAD_DISTANCE" default:"EUCLIDEAN" yaml:"distance" toml:"distance"`
	Seed         uint32                `envconfig:"RAD_SEED" default:"1" yaml:"seed" toml:"seed"`
	TrimFraction float64               `envconfig:"RAD_TRIM_FRACTION" default:"0.9" yaml:"trim_fraction" toml:"trim_fraction"`
	Workers      int                   `envconfig:"RAD_WORKERS" default:"0" yaml:"workers" toml:"workers"`
}

// Options translates the configuration into model options.
func (c Config) Options() ([]Option, error) {
	taper, err := window.TaperFor(c.Taper, c.Window)
	if err != nil {
		return nil, fmt.Errorf("unable provide taper: %w", err)
	}
	distFn, err := geom.DistanceFuncFor(c.Distance)
	if err != nil {
		return nil, fmt.Errorf("unable provide distance function: %w", err)
	}
	return []Option{
		WithTaper(taper),
		WithStep(c.Step),
		WithSamples(c.Samples),
		WithClusters(c.Clusters),
		WithIterations(c.Iterations),
		WithSearchAlg(c.SearchAlg),
		WithDistance(distFn),
		WithWorkers(c.Workers),
		WithClusterer(codebook.NewKMeans(
			codebook.WithSeed(c.Seed),
			codebook.WithTrimFraction(c.TrimFraction),
			codebook.WithDistance(distFn),
			codebook.WithWorkers(c.Workers),
		)),
	}, nil
}
