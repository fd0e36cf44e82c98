package alert

import (
	"encoding/json"
	"time"

	"github.com/go-sod/rad/internal/httputil"
)

type Config struct {
	AllowAlerts          bool          `envconfig:"RAD_ALLOW_ALERTS" default:"false" yaml:"allow_alerts" toml:"allow_alerts"`
	Targets              Targets       `envconfig:"RAD_ALERT_TARGETS" yaml:"targets" toml:"targets"`
	MaxConcurrentRequest int           `envconfig:"RAD_ALERT_MAX_CONCURRENT_REQUEST" default:"16" yaml:"max_concurrent_request" toml:"max_concurrent_request"`
	RequestTimeout       time.Duration `envconfig:"RAD_ALERT_REQUEST_TIMEOUT" default:"10s" yaml:"request_timeout" toml:"request_timeout"`
	Redis                RedisConfig   `yaml:"redis" toml:"redis"`
}

type RedisConfig struct {
	Addr     string `envconfig:"RAD_REDIS_ADDR" yaml:"addr" toml:"addr"`
	Password string `envconfig:"RAD_REDIS_PASSWORD" yaml:"password" toml:"password"`
	DB       int    `envconfig:"RAD_REDIS_DB" default:"0" yaml:"db" toml:"db"`
	List     string `envconfig:"RAD_REDIS_LIST" default:"rad:reports" yaml:"list" toml:"list"`
	Channel  string `envconfig:"RAD_REDIS_CHANNEL" default:"rad:runs" yaml:"channel" toml:"channel"`
}

type Targets []Target

// Decode reads targets from a JSON array in the environment.
func (ts *Targets) Decode(value string) error {
	targets := []Target{}
	if err := json.Unmarshal([]byte(value), &targets); err != nil {
		return err
	}
	*ts = targets
	return nil
}

type Target struct {
	URL        string                    `json:"url" yaml:"url" toml:"url"`
	Name       string                    `json:"name" yaml:"name" toml:"name"`
	HTTPConfig httputil.HTTPClientConfig `json:"httpConfig" yaml:"http_config" toml:"http_config"`
}
