// Package config provides functionality for managing configuration options
// for the application using command-line flags and environment variables.
package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
)

const (
	// EnvTest is the value of APP_ENV that selects the test locations.
	EnvTest = "test"

	defaultSecret = "gophcms-development-session-secret"
)

// Options holds the configuration values for the application.
type Options struct {
	// Port defines the server's listening address (ip:port).
	Port string `json:"port"`

	// DatabaseDSN selects PostgreSQL for credentials when non-empty.
	DatabaseDSN string `json:"database_dsn"`

	// Config is the path to the Config file.
	Config string `json:"-"`

	// DataDir is the document root.
	DataDir string `json:"data_dir"`

	// UsersFile is the YAML credentials file.
	UsersFile string `json:"users_file"`

	// SessionSecret signs session cookies.
	SessionSecret string `json:"session_secret"`

	// LogLevel is the zap level name ("debug", "info", ...).
	LogLevel string `json:"log_level"`

	// TLSCert and TLSKey enable HTTPS when both are set.
	TLSCert string `json:"tls_cert"`
	TLSKey  string `json:"tls_key"`
}

// Paths returns the document root and credentials file used for the given
// APP_ENV value. The test environment keeps its data under test/.
func Paths(env string) (dataDir, usersFile string) {
	if env == EnvTest {
		return filepath.Join("test", "data"), filepath.Join("test", "users.yml")
	}
	return "data", "users.yml"
}

// NewFlagSet registers all flags on a new FlagSet writing into o, with
// defaults chosen by the APP_ENV environment value.
func NewFlagSet(name string, o *Options) *flag.FlagSet {
	dataDir, usersFile := Paths(os.Getenv("APP_ENV"))

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVar(&o.Port, "a", "localhost:4567", "run on ip:port server")
	fs.StringVar(&o.DatabaseDSN, "d", "", "postgres DSN for credentials (optional)")
	fs.StringVar(&o.Config, "config", "config.json", "path to config file")
	fs.StringVar(&o.Config, "c", "config.json", "path to config file (shorthand)")
	fs.StringVar(&o.DataDir, "data", dataDir, "document root directory")
	fs.StringVar(&o.UsersFile, "users", usersFile, "YAML credentials file")
	fs.StringVar(&o.SessionSecret, "secret", defaultSecret, "session cookie signing secret")
	fs.StringVar(&o.LogLevel, "log-level", "info", "log level")
	fs.StringVar(&o.TLSCert, "tls-cert", "", "TLS certificate file")
	fs.StringVar(&o.TLSKey, "tls-key", "", "TLS key file")
	return fs
}

// Parse parses the command-line flags, then the optional JSON config file,
// then environment variables, each overriding the previous source. It
// returns the resulting Options.
func Parse(name string, args []string) (*Options, error) {
	options := &Options{}
	fs := NewFlagSet(name, options)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// Override flags with environment variables if set
	if configPath := os.Getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if options.Config != "" {
		if _, err := os.Stat(options.Config); err == nil {
			data, err := os.ReadFile(options.Config)
			if err != nil {
				return nil, fmt.Errorf("error while reading config file: %w", err)
			}
			if err := json.Unmarshal(data, options); err != nil {
				return nil, fmt.Errorf("error while parsing config file: %w", err)
			}
		}
	}

	for env, dst := range map[string]*string{
		"SERVER_ADDRESS": &options.Port,
		"DATABASE_DSN":   &options.DatabaseDSN,
		"SESSION_SECRET": &options.SessionSecret,
		"LOG_LEVEL":      &options.LogLevel,
	} {
		if v := os.Getenv(env); v != "" {
			*dst = v
		}
	}

	return options, nil
}

// UsesDefaultSecret reports whether the development session secret is in use.
func (o *Options) UsesDefaultSecret() bool {
	return o.SessionSecret == defaultSecret
}
