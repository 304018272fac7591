package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/worklog/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   gRPC bind address (e.g., ":50051")
//	-d string   PostgreSQL DSN
//	-s string   access key HMAC secret
//	-t int      access key validity, hours
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-l int      report link validity, minutes
//	-z string   reference timezone (IANA name)
//
// os.Args is first filtered with flagx.FilterArgs so flags owned by other
// components do not make parsing fail.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-t", "-u", "-p", "-b", "-g", "-e", "-l", "-z"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessKeyValidity := fs.Int("t", int(config.AccessKeyValidityDuration.Hours()), "access key validity (in hours)")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 report bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	reportURLValidity := fs.Int("l", int(config.ReportURLValidity.Minutes()), "report link validity (in minutes)")

	fs.StringVar(&config.Timezone, "z", config.Timezone, "reference timezone")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessKeyValidityDuration = time.Duration(*accessKeyValidity) * time.Hour
	config.ReportURLValidity = time.Duration(*reportURLValidity) * time.Minute
}
