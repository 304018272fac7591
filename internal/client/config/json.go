package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/worklog/internal/flagx"
	"github.com/dmitrijs2005/worklog/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Intervals use
// timex.Duration so they can be written as "3s" or as integer nanoseconds.
type JsonConfig struct {
	Backend             string         `json:"backend"`
	ServerEndpointAddr  string         `json:"server_endpoint_addr"`
	AccessKey           string         `json:"access_key"`
	DBPath              string         `json:"db_path"`
	UsersFile           string         `json:"users_file"`
	Timezone            string         `json:"timezone"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	RequestTimeout      timex.Duration `json:"request_timeout"`
}

// parseJson overlays Config with the non-empty values of the JSON file named
// by -c or -config. Without such a flag it does nothing. Read and decode
// errors panic.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	overlay := func(src string, dst *string) {
		if src != "" {
			*dst = src
		}
	}
	overlay(jc.Backend, &cfg.Backend)
	overlay(jc.ServerEndpointAddr, &cfg.ServerEndpointAddr)
	overlay(jc.AccessKey, &cfg.AccessKey)
	overlay(jc.DBPath, &cfg.DBPath)
	overlay(jc.UsersFile, &cfg.UsersFile)
	overlay(jc.Timezone, &cfg.Timezone)

	if jc.OnlineCheckInterval.Duration > 0 {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
}
