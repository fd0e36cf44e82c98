package database

type Config struct {
	// Path of the bbolt file holding codebooks and run reports. Empty disables persistence.
	FileName string `envconfig:"RAD_DB_FILE" yaml:"file" toml:"file"`
	// Seconds to wait for the file lock before giving up.
	LockTimeoutSec int `envconfig:"RAD_DB_LOCK_TIMEOUT_SEC" default:"5" yaml:"lock_timeout_sec" toml:"lock_timeout_sec"`
}

func (c Config) Enabled() bool {
	return c.FileName != ""
}
