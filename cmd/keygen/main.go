// Command keygen issues an access key for a client of the worklog server.
// It reads the same configuration as the server, so the key is signed with
// the server secret:
//
//	keygen -c server.json -n desk-01
//
// With -secret it prints a fresh random signing secret instead.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/dmitrijs2005/worklog/internal/common"
	"github.com/dmitrijs2005/worklog/internal/flagx"
	"github.com/dmitrijs2005/worklog/internal/server/auth"
	"github.com/dmitrijs2005/worklog/internal/server/config"
)

const secretSize = 32

func main() {
	fs := flag.NewFlagSet("keygen", flag.ExitOnError)
	name := fs.String("n", "", "client name the key is issued to")
	newSecret := fs.Bool("secret", false, "print a new random signing secret and exit")
	_ = fs.Parse(flagx.FilterArgs(os.Args[1:], []string{"-n", "-secret"}))

	if *newSecret {
		s, err := common.MakeRandHexString(secretSize)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(s)
		return
	}

	cfg := config.LoadConfig()

	if *name == "" {
		fmt.Fprintln(os.Stderr, "usage: keygen -n <client name> [-s secret] [-t hours] [-c config.json] | keygen -secret")
		os.Exit(2)
	}

	key, err := auth.GenerateAccessKey(*name, []byte(cfg.SecretKey), cfg.AccessKeyValidityDuration)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(key)
}
