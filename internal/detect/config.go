package detect

import "time"

type Config struct {
	RequestTimeout time.Duration `envconfig:"RAD_DETECT_REQUEST_TIMEOUT" default:"30s" yaml:"request_timeout" toml:"request_timeout"`
	MaxBodyBytes   int64         `envconfig:"RAD_DETECT_MAX_BODY_BYTES" default:"67108864" yaml:"max_body_bytes" toml:"max_body_bytes"`
	MaxSamples     int           `envconfig:"RAD_DETECT_MAX_SAMPLES" default:"1000000" yaml:"max_samples" toml:"max_samples"`
}
