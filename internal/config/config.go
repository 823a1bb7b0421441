// Package config builds connection/runtime settings from defaults, an
// optional YAML file, and environment variables, in one precedence order
// (env > file > defaults); no CLI flags are bound. The YAML file is decoded
// through sigs.k8s.io/yaml (JSON-compatible unmarshal), and the environment
// is read through os.Getenv.
package config

import (
	"os"

	"github.com/spf13/viper"
	yaml "sigs.k8s.io/yaml"
)

// Connection holds one database connection's settings.
type Connection struct {
	Host           string `json:"host" mapstructure:"host"`
	Port           int    `json:"port" mapstructure:"port"`
	Database       string `json:"database" mapstructure:"database"`
	User           string `json:"user" mapstructure:"user"`
	Password       string `json:"password" mapstructure:"password"`
	SSLMode        string `json:"sslmode" mapstructure:"sslmode"`
	SSLRootCert    string `json:"sslrootcert" mapstructure:"sslrootcert"`
	ApplicationName string `json:"application_name" mapstructure:"application_name"`
}

// Config is the full runtime configuration for the CLI boundary (§6.4).
type Config struct {
	Source     Connection `json:"source" mapstructure:"source"`
	Target     Connection `json:"target" mapstructure:"target"`
	Role       string     `json:"role,omitempty" mapstructure:"role"`
	MaxRounds  int        `json:"max_rounds" mapstructure:"max_rounds"`
	NoValidate bool       `json:"no_validate" mapstructure:"no_validate"`
}

// Default returns baseline settings: localhost:5432, prefer SSL, 5 rounds.
func Default() *Config {
	return &Config{
		Source:    Connection{Host: "localhost", Port: 5432, SSLMode: "prefer"},
		Target:    Connection{Host: "localhost", Port: 5432, SSLMode: "prefer"},
		MaxRounds: 5,
	}
}

// Load builds a Config from defaults, an optional YAML file at yamlPath,
// and environment variables, in that precedence order (env wins). Env vars
// follow spec §6.5: PGDELTA_SOURCE_SSLROOTCERT / PGDELTA_TARGET_SSLROOTCERT
// are read directly; the rest follow the PG* convention libpq clients use
// (PGHOST, PGPORT, PGDATABASE, PGUSER, PGPASSWORD) for the target
// connection, since that is what the CLI's "apply" subcommand talks to.
func Load(yamlPath string) (*Config, error) {
	cfg := Default()

	if yamlPath != "" {
		if data, err := os.ReadFile(yamlPath); err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, err
			}
		} else if !os.IsNotExist(err) {
			return nil, err
		}
	}

	v := viper.New()
	v.SetEnvPrefix("PGDELTA")
	v.AutomaticEnv()

	if sslroot := os.Getenv("PGDELTA_SOURCE_SSLROOTCERT"); sslroot != "" {
		cfg.Source.SSLRootCert = sslroot
	}
	if sslroot := os.Getenv("PGDELTA_TARGET_SSLROOTCERT"); sslroot != "" {
		cfg.Target.SSLRootCert = sslroot
	}

	applyLibpqEnv(&cfg.Target)

	return cfg, nil
}

func applyLibpqEnv(c *Connection) {
	if v := os.Getenv("PGHOST"); v != "" {
		c.Host = v
	}
	if v := os.Getenv("PGPORT"); v != "" {
		if p, err := atoiSafe(v); err == nil {
			c.Port = p
		}
	}
	if v := os.Getenv("PGDATABASE"); v != "" {
		c.Database = v
	}
	if v := os.Getenv("PGUSER"); v != "" {
		c.User = v
	}
	if v := os.Getenv("PGPASSWORD"); v != "" {
		c.Password = v
	}
}

func atoiSafe(s string) (int, error) {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, os.ErrInvalid
		}
		n = n*10 + int(r-'0')
	}
	return n, nil
}
