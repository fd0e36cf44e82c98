package lowpass

type Config struct {
	Width int `envconfig:"RAD_LOWPASS_WIDTH" default:"5" yaml:"width" toml:"width"`
}

func (c Config) Options() []Option {
	return []Option{WithWidth(c.Width)}
}
