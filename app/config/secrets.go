package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix is the prefix of environment variables read by the application.
const EnvPrefix = "VESTIBULE_"

// Secrets holds the values that are only accepted from the environment.
type Secrets struct {
	// Session are the session cookie signing secrets. The first one signs new
	// cookies, and all of them are accepted when verifying.
	Session []string `env:"SECRETS,required,notEmpty" envSeparator:","`
}

// LoadSecrets reads the secrets from the given environment variables.
func LoadSecrets(environ map[string]string) (*Secrets, error) {
	s := &Secrets{}
	err := env.ParseWithOptions(s, env.Options{
		Environment: environ,
		Prefix:      EnvPrefix,
	})
	if err != nil {
		return nil, fmt.Errorf("failed loading secrets: %w", err)
	}

	return s, nil
}
