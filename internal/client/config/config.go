package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/worklog/internal/filex"
	"github.com/dmitrijs2005/worklog/internal/timex"
)

// Backend names accepted in Config.Backend.
const (
	BackendLocal  = "local"
	BackendRemote = "remote"
)

// DBFileName is the local session database inside the user data directory.
const DBFileName = "worklog.db"

// Config holds runtime settings for the worklog CLI.
//
// Fields:
//   - Backend: "local" (SQLite file) or "remote" (gRPC backend).
//   - ServerEndpointAddr: host:port of the backend gRPC endpoint.
//   - AccessKey: backend access key sent with every remote call.
//   - DBPath: local SQLite database file.
//   - UsersFile: credential store file.
//   - Timezone: reference zone for calendar fields and durations.
//   - OnlineCheckInterval: how often the client probes the remote backend.
//   - RequestTimeout: per-call deadline for remote calls.
type Config struct {
	Backend             string
	ServerEndpointAddr  string
	AccessKey           string
	DBPath              string
	UsersFile           string
	Timezone            string
	OnlineCheckInterval time.Duration
	RequestTimeout      time.Duration

	// EnvSource names where environment values were taken from.
	EnvSource string
}

// LoadDefaults populates c with sensible defaults. Files default to the
// per-user data directory, or the working directory if it cannot be found.
func (c *Config) LoadDefaults() {
	c.Backend = BackendLocal
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.AccessKey = ""
	c.Timezone = timex.DefaultTimezone
	c.OnlineCheckInterval = 3 * time.Second
	c.RequestTimeout = 10 * time.Second

	dir, err := filex.UserDataDir()
	if err != nil {
		dir = "."
	}
	c.DBPath = filepath.Join(dir, DBFileName)
	c.UsersFile = filepath.Join(dir, "users.json")
}

// Validate reports settings the CLI cannot start with.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendLocal:
		if c.DBPath == "" {
			return fmt.Errorf("local backend needs a database path")
		}
	case BackendRemote:
		if c.ServerEndpointAddr == "" {
			return fmt.Errorf("remote backend needs an endpoint address")
		}
	default:
		return fmt.Errorf("unknown backend %q (want %q or %q)", c.Backend, BackendLocal, BackendRemote)
	}
	if c.UsersFile == "" {
		return fmt.Errorf("users file is not set")
	}
	if _, err := timex.LoadLocation(c.Timezone); err != nil {
		return err
	}
	return nil
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	return timex.LoadLocation(c.Timezone)
}

// LoadConfig constructs a Config, applies defaults, then overlays the
// resolved environment, JSON (if present) and command-line flags (if
// present). Later sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
