// Package config loads runtime configuration for the worklog CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment, resolved by taking the first of these that defines any
//     WORKLOG_* key, without merging: a .env beside the executable (the
//     working directory under go run), the default.env bundled into the
//     binary, the process environment. Files are parsed with godotenv.
//  3. Optional JSON file selected with -c or -config.
//  4. Command-line flags, which override everything else.
//
// Supported flags
//
//	-a string   address:port of the backend gRPC endpoint
//	-k string   backend access key
//	-b string   backend: local or remote
//	-i int      online status check interval (seconds)
//
// # Environment keys
//
//	WORKLOG_BACKEND     local | remote
//	WORKLOG_ENDPOINT    host:port
//	WORKLOG_ACCESS_KEY  access key issued by the backend operator
//	WORKLOG_DB_PATH     local SQLite file
//	WORKLOG_USERS_FILE  credential store
//	WORKLOG_TIMEZONE    IANA zone, default America/Sao_Paulo
//
// # JSON schema
//
//	{
//	  "backend": "remote",
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "access_key": "...",
//	  "db_path": "/home/ana/.local/share/RegistroAtividades/worklog.db",
//	  "users_file": "/home/ana/.local/share/RegistroAtividades/users.json",
//	  "timezone": "America/Sao_Paulo",
//	  "online_check_interval": "3s",
//	  "request_timeout": "10s"
//	}
package config
