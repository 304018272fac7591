package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/worklog/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
//	-a string   address and port of the backend server
//	-k string   backend access key
//	-b string   backend: local or remote
//	-i int      online check interval in seconds
//
// Only these flags are taken from os.Args (see flagx.FilterArgs), so -c is
// left to parseJson.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-k", "-b", "-i"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	fs.StringVar(&cfg.AccessKey, "k", cfg.AccessKey, "backend access key")
	fs.StringVar(&cfg.Backend, "b", cfg.Backend, "session backend: local or remote")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
}
