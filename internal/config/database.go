package config

import (
	"fmt"
	"net/url"
	"strings"
)

const preparedBinaryParam = "disable_prepared_binary_result"

// DatabaseConfig is the subset of settings the migration binary needs.
type DatabaseConfig struct {
	URL                   string
	DisablePreparedBinary bool
	MigrationsDir         string
}

// LoadDatabase reads only the database settings so the migrator does not
// depend on API-only variables.
func LoadDatabase() (DatabaseConfig, error) {
	cfg := DatabaseConfig{
		URL:           strings.TrimSpace(getEnv("DB_URL", "")),
		MigrationsDir: strings.TrimSpace(getEnv("MIGRATIONS_DIR", "")),
	}
	if cfg.URL == "" {
		return DatabaseConfig{}, fmt.Errorf("DB_URL is required")
	}
	var err error
	if cfg.DisablePreparedBinary, err = parseBool("DB_DISABLE_PREPARED_BINARY_RESULT", "true"); err != nil {
		return DatabaseConfig{}, err
	}
	return cfg, nil
}

// DSN returns the connection string with pooler settings applied.
func (c DatabaseConfig) DSN() string {
	return PostgresDSN(c.URL, c.DisablePreparedBinary)
}

// PostgresDSN adds disable_prepared_binary_result=yes for poolers that cannot
// handle binary results of prepared statements. An explicit value in the URL
// is left alone, as are key=value DSNs.
func PostgresDSN(raw string, disablePreparedBinary bool) string {
	if !disablePreparedBinary {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		return raw
	}
	q := u.Query()
	if q.Has(preparedBinaryParam) {
		return raw
	}
	q.Set(preparedBinaryParam, "yes")
	u.RawQuery = q.Encode()
	return u.String()
}
