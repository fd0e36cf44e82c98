package model

type Type string

const (
	TypeWindowed Type = "WINDOWED"
	TypeIdentity Type = "IDENTITY"
	TypeLowPass  Type = "LOWPASS"
)

type Config struct {
	Type Type `envconfig:"RAD_MODEL_TYPE" default:"WINDOWED" yaml:"type" toml:"type"`
}

func (c Config) ModelType() Type {
	return c.Type
}
