package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/worklog/internal/flagx"
	"github.com/dmitrijs2005/worklog/internal/timex"
)

// JsonConfig is an intermediate DTO used only for reading JSON
// configuration files. Durations use timex.Duration, which accepts both
// strings such as "15m" and integer nanoseconds.
type JsonConfig struct {
	EndpointAddrGRPC          string         `json:"endpoint_addr_grpc"`
	DatabaseDSN               string         `json:"database_dsn"`
	SecretKey                 string         `json:"secret_key"`
	AccessKeyValidityDuration timex.Duration `json:"access_key_validity_duration"`
	S3RootUser                string         `json:"s3_root_user"`
	S3RootPassword            string         `json:"s3_root_password"`
	S3Bucket                  string         `json:"s3_bucket"`
	S3Region                  string         `json:"s3_region"`
	S3BaseEndpoint            string         `json:"s3_base_endpoint"`
	ReportURLValidity         timex.Duration `json:"report_url_validity"`
	Timezone                  string         `json:"timezone"`
}

// parseJson overlays Config with the non-empty values of the JSON file named
// by -c or -config. Without such a flag no file is loaded. If the file
// cannot be read or contains invalid JSON, the function panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	overlay := func(src string, dst *string) {
		if src != "" {
			*dst = src
		}
	}
	overlay(c.EndpointAddrGRPC, &config.EndpointAddrGRPC)
	overlay(c.DatabaseDSN, &config.DatabaseDSN)
	overlay(c.SecretKey, &config.SecretKey)
	overlay(c.S3RootUser, &config.S3RootUser)
	overlay(c.S3RootPassword, &config.S3RootPassword)
	overlay(c.S3Bucket, &config.S3Bucket)
	overlay(c.S3Region, &config.S3Region)
	overlay(c.S3BaseEndpoint, &config.S3BaseEndpoint)
	overlay(c.Timezone, &config.Timezone)

	if c.AccessKeyValidityDuration.Duration > 0 {
		config.AccessKeyValidityDuration = c.AccessKeyValidityDuration.Duration
	}
	if c.ReportURLValidity.Duration > 0 {
		config.ReportURLValidity = c.ReportURLValidity.Duration
	}
}
