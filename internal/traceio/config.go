package traceio

type Config struct {
	// Trace scored in DETECT mode.
	Path string `envconfig:"RAD_TRACE_FILE" yaml:"path" toml:"path"`
	// Training trace; the scored trace is used when empty.
	FitPath string  `envconfig:"RAD_FIT_FILE" yaml:"fit_path" toml:"fit_path"`
	Format  Format  `envconfig:"RAD_TRACE_FORMAT" default:"BIN16" yaml:"format" toml:"format"`
	Scale   float64 `envconfig:"RAD_TRACE_SCALE" default:"0.005" yaml:"scale" toml:"scale"`
}
