// Package config aggregates the configuration of every rad component.
package config

import (
	"github.com/go-sod/rad/internal/alert"
	"github.com/go-sod/rad/internal/artifact"
	"github.com/go-sod/rad/internal/database"
	"github.com/go-sod/rad/internal/detect"
	"github.com/go-sod/rad/internal/detector"
	"github.com/go-sod/rad/internal/model"
	"github.com/go-sod/rad/internal/model/lowpass"
	"github.com/go-sod/rad/internal/model/windowed"
	"github.com/go-sod/rad/internal/run/retention"
	"github.com/go-sod/rad/internal/setup"
	"github.com/go-sod/rad/internal/traceio"
)

var (
	_ setup.FileConfigProvider     = (*Config)(nil)
	_ setup.MetricsConfigProvider  = (*Config)(nil)
	_ setup.DatabaseConfigProvider = (*Config)(nil)
	_ setup.ArtifactConfigProvider = (*Config)(nil)
	_ setup.ModelConfigProvider    = (*Config)(nil)
	_ setup.DetectorConfigProvider = (*Config)(nil)
	_ setup.NotifierConfigProvider = (*Config)(nil)
)

const (
	SvcModeTypeDetect = "DETECT"
	SvcModeTypeServe  = "SERVE"
)

type Config struct {
	ConfigFile       string `envconfig:"RAD_CONFIG_FILE" yaml:"-" toml:"-"`
	SvcModeType      string `envconfig:"RAD_SVC_MODE" default:"DETECT" yaml:"svc_mode" toml:"svc_mode"`
	SrvAddr          string `envconfig:"RAD_ADDR" default:":8787" yaml:"addr" toml:"addr"`
	GRPCAddr         string `envconfig:"RAD_GRPC_ADDR" default:":8788" yaml:"grpc_addr" toml:"grpc_addr"`
	LogLevel         string `envconfig:"RAD_LOG_LEVEL" default:"info" yaml:"log_level" toml:"log_level"`
	LogDevelopment   bool   `envconfig:"RAD_LOG_DEVELOPMENT" default:"false" yaml:"log_development" toml:"log_development"`
	MetricsNamespace string `envconfig:"RAD_METRICS_NAMESPACE" default:"rad" yaml:"metrics_namespace" toml:"metrics_namespace"`

	Trace     traceio.Config   `yaml:"trace" toml:"trace"`
	Model     model.Config     `yaml:"model" toml:"model"`
	Windowed  windowed.Config  `yaml:"windowed" toml:"windowed"`
	LowPass   lowpass.Config   `yaml:"lowpass" toml:"lowpass"`
	Detector  detector.Config  `yaml:"detector" toml:"detector"`
	Artifact  artifact.Config  `yaml:"artifact" toml:"artifact"`
	Database  database.Config  `yaml:"database" toml:"database"`
	Alert     alert.Config     `yaml:"alert" toml:"alert"`
	Detect    detect.Config    `yaml:"detect" toml:"detect"`
	Retention retention.Config `yaml:"retention" toml:"retention"`
}

func (c *Config) SvcMode() string {
	return c.SvcModeType
}

func (c *Config) FilePath() string {
	return c.ConfigFile
}

func (c *Config) Namespace() string {
	return c.MetricsNamespace
}

func (c *Config) DatabaseConfig() *database.Config {
	return &c.Database
}

func (c *Config) ArtifactConfig() *artifact.Config {
	return &c.Artifact
}

func (c *Config) ModelConfig() *model.Config {
	return &c.Model
}

func (c *Config) WindowedConfig() *windowed.Config {
	return &c.Windowed
}

func (c *Config) LowPassConfig() *lowpass.Config {
	return &c.LowPass
}

func (c *Config) DetectorConfig() *detector.Config {
	return &c.Detector
}

func (c *Config) NotifyConfig() *alert.Config {
	return &c.Alert
}
