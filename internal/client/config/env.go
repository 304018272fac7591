package config

import (
	_ "embed"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// Environment keys.
const (
	EnvBackend   = "WORKLOG_BACKEND"
	EnvEndpoint  = "WORKLOG_ENDPOINT"
	EnvAccessKey = "WORKLOG_ACCESS_KEY"
	EnvDBPath    = "WORKLOG_DB_PATH"
	EnvUsersFile = "WORKLOG_USERS_FILE"
	EnvTimezone  = "WORKLOG_TIMEZONE"
)

var envKeys = []string{EnvBackend, EnvEndpoint, EnvAccessKey, EnvDBPath, EnvUsersFile, EnvTimezone}

// Names reported in Config.EnvSource.
const (
	SourceDotEnv  = ".env"
	SourceBundled = "bundled"
	SourceProcess = "process"
	SourceNone    = "none"
)

const dotEnvFileName = ".env"

//go:embed default.env
var bundledEnv string

// Test seams.
var (
	executable = os.Executable
	getwd      = os.Getwd
	lookupEnv  = os.LookupEnv
)

// resolveEnv returns the environment values from the first source that
// defines any worklog key, without merging:
//
//  1. the .env found by dotEnvPath;
//  2. the .env bundled into the binary;
//  3. the process environment.
//
// A .env that exists but cannot be parsed is skipped.
func resolveEnv() (map[string]string, string) {
	if path := dotEnvPath(); path != "" {
		if vals, err := godotenv.Read(path); err == nil {
			if vals = pick(vals); len(vals) > 0 {
				return vals, SourceDotEnv + ":" + path
			}
		}
	}

	if vals, err := godotenv.Unmarshal(bundledEnv); err == nil {
		if vals = pick(vals); len(vals) > 0 {
			return vals, SourceBundled
		}
	}

	vals := map[string]string{}
	for _, k := range envKeys {
		if v, ok := lookupEnv(k); ok {
			vals[k] = v
		}
	}
	if len(vals) > 0 {
		return vals, SourceProcess
	}
	return vals, SourceNone
}

// dotEnvPath is the .env beside the executable, or in the working
// directory when the binary runs from a build cache.
func dotEnvPath() string {
	exe, err := executable()
	if err == nil {
		if dir := filepath.Dir(exe); !isBuildCache(dir) {
			return filepath.Join(dir, dotEnvFileName)
		}
	}
	wd, err := getwd()
	if err != nil {
		return ""
	}
	return filepath.Join(wd, dotEnvFileName)
}

// isBuildCache reports whether dir is a go run / go test build directory.
func isBuildCache(dir string) bool {
	return strings.Contains(dir, "go-build")
}

func pick(vals map[string]string) map[string]string {
	out := map[string]string{}
	for _, k := range envKeys {
		if v, ok := vals[k]; ok {
			out[k] = v
		}
	}
	return out
}

// parseEnv overlays cfg with non-empty values from resolveEnv.
func parseEnv(cfg *Config) {
	vals, source := resolveEnv()
	cfg.EnvSource = source

	set := func(key string, dst *string) {
		if v := strings.TrimSpace(vals[key]); v != "" {
			*dst = v
		}
	}
	set(EnvBackend, &cfg.Backend)
	set(EnvEndpoint, &cfg.ServerEndpointAddr)
	set(EnvAccessKey, &cfg.AccessKey)
	set(EnvDBPath, &cfg.DBPath)
	set(EnvUsersFile, &cfg.UsersFile)
	set(EnvTimezone, &cfg.Timezone)
}
