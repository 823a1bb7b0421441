// Package maskconfig loads the optional .pgdeltamask TOML file that lets a
// user extend the built-in sensitive-option-key set of spec §4.1 beyond the
// defaults (password/user/host/port/dbname), decoded with
// github.com/BurntSushi/toml.
package maskconfig

import (
	"os"

	"github.com/BurntSushi/toml"
)

// FileName is the default mask-config file name looked up in the working
// directory.
const FileName = ".pgdeltamask"

// Config is the parsed structure of a .pgdeltamask file.
type Config struct {
	SensitiveOptionKeys []string `toml:"sensitive_option_keys,omitempty"`
	SensitiveConnKeys   []string `toml:"sensitive_conn_keys,omitempty"`
}

// DefaultSensitiveOptionKeys is the built-in sensitive-option-key set from
// spec §4.1 ("Masking"): server/user-mapping/FDW option values whose key is
// in this set are replaced with __OPTION_<KEY>__ at extraction time.
var DefaultSensitiveOptionKeys = []string{"password", "user", "host", "port", "dbname"}

// Load reads FileName from the working directory. A missing file is not an
// error; masking falls back to the built-in defaults.
func Load() (*Config, error) {
	return LoadFromPath(FileName)
}

// LoadFromPath reads and parses path, returning (nil, nil) if it does not exist.
func LoadFromPath(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SensitiveOptionKeySet merges the built-in defaults with any keys added by
// cfg into a lookup set. cfg may be nil.
func SensitiveOptionKeySet(cfg *Config) map[string]bool {
	set := make(map[string]bool, len(DefaultSensitiveOptionKeys))
	for _, k := range DefaultSensitiveOptionKeys {
		set[k] = true
	}
	if cfg != nil {
		for _, k := range cfg.SensitiveOptionKeys {
			set[k] = true
		}
	}
	return set
}

// SensitiveConnKeySet returns the set of subscription connection-string
// keys ("password=", "host=", ...) that must be masked. Defaults to the
// same key vocabulary as option masking.
func SensitiveConnKeySet(cfg *Config) map[string]bool {
	if cfg == nil || len(cfg.SensitiveConnKeys) == 0 {
		return SensitiveOptionKeySet(cfg)
	}
	set := make(map[string]bool, len(cfg.SensitiveConnKeys))
	for _, k := range cfg.SensitiveConnKeys {
		set[k] = true
	}
	return set
}
