package httputil

import "errors"

type HTTPClientConfig struct {
	BasicAuth   *BasicAuth `json:"basicAuth,omitempty" yaml:"basic_auth,omitempty" toml:"basic_auth"`
	BearerToken string     `json:"bearerToken,omitempty" yaml:"bearer_token,omitempty" toml:"bearer_token"`
}

func (c *HTTPClientConfig) Validate() error {
	if c.BasicAuth != nil && len(c.BearerToken) > 0 {
		return errors.New("at most one of basic_auth & bearer_token must be configured")
	}
	if c.BasicAuth != nil && c.BasicAuth.Username == "" {
		return errors.New("basic_auth needs a username")
	}
	return nil
}

type BasicAuth struct {
	Username string `json:"username" yaml:"username" toml:"username"`
	Password string `json:"password,omitempty" yaml:"password,omitempty" toml:"password"`
}
