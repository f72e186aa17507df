package config

import (
	"os"

	"github.com/joho/godotenv"

	"git.home.luguber.info/inful/prismicgen/internal/foundation/errors"
)

// envFiles are loaded in order. godotenv never overrides a variable that is
// already set, so earlier files and the process environment take precedence.
var envFiles = []string{".env.local", ".env"}

// LoadEnvFiles loads the env files that exist and returns their names.
func LoadEnvFiles() ([]string, error) {
	var loaded []string
	for _, name := range envFiles {
		if _, err := os.Stat(name); err != nil {
			continue
		}
		if err := godotenv.Load(name); err != nil {
			return loaded, errors.ConfigError("failed to load env file").
				WithCause(err).
				WithContext("path", name).
				Build()
		}
		loaded = append(loaded, name)
	}
	return loaded, nil
}
