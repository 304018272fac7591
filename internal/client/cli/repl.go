package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to. *App satisfies it.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Types(ctx context.Context) error
	Select(ctx context.Context, args []string) error
	Deselect(ctx context.Context) error
	Start(ctx context.Context, args []string) error
	Stop(ctx context.Context) error
	Status(ctx context.Context) error
	Sync(ctx context.Context) error
	List(ctx context.Context, args []string) error
	Export(ctx context.Context, args []string) error
}

const (
	helpLoggedOut = "Available commands: register, login, exit"
	helpLoggedIn  = "Available commands: types, select <n|name>, deselect, start [description], stop, status, sync, list [n], export <year> <month>, logout, exit"
)

// runREPL reads one command per line from reader and dispatches it to a.
// Command errors are printed and the loop goes on. It returns on EOF, on
// "exit" or "quit", or when ctx is cancelled.
//
// The prompt shows statusFn's output:
//
//	Logged out: help, register, login, exit | quit
//	Logged in:  help, types, select, deselect, start, stop, status, sync,
//	            list, export, logout, exit | quit
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}

		printlnFn(fmt.Sprintf("wl> %s > ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || strings.TrimSpace(line) == "") {
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := strings.ToLower(parts[0]), parts[1:]

		if cmd == "exit" || cmd == "quit" {
			printlnFn("Bye!")
			return
		}

		if err := dispatch(ctx, a, cmd, args); err != nil {
			printlnFn("Error: " + err.Error())
		}
	}
}

func dispatch(ctx context.Context, a execIface, cmd string, args []string) error {
	switch cmd {
	case "help", "h":
		if a.isLoggedIn() {
			printlnFn(helpLoggedIn)
		} else {
			printlnFn(helpLoggedOut)
		}
		return nil
	case "register":
		return a.Register(ctx)
	case "login":
		return a.Login(ctx)
	}

	if !a.isLoggedIn() {
		if isKnownCommand(cmd) {
			return fmt.Errorf("please login first")
		}
		return fmt.Errorf("unknown command %q, type 'help'", cmd)
	}

	switch cmd {
	case "logout":
		return a.Logout(ctx)
	case "types", "t":
		return a.Types(ctx)
	case "select", "sel":
		return a.Select(ctx, args)
	case "deselect":
		return a.Deselect(ctx)
	case "start":
		return a.Start(ctx, args)
	case "stop":
		return a.Stop(ctx)
	case "status", "s":
		return a.Status(ctx)
	case "sync":
		return a.Sync(ctx)
	case "list", "l":
		return a.List(ctx, args)
	case "export":
		return a.Export(ctx, args)
	default:
		return fmt.Errorf("unknown command %q, type 'help'", cmd)
	}
}

func isKnownCommand(cmd string) bool {
	switch cmd {
	case "logout", "types", "t", "select", "sel", "deselect", "start", "stop",
		"status", "s", "sync", "list", "l", "export":
		return true
	}
	return false
}
