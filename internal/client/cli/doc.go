// Package cli provides the interactive worklog command-line client.
//
// It wires configuration, the credential store, the session backend (local
// SQLite or the remote gRPC server) and a REPL. Typical flow: register or
// log in, select an activity type, start it, stop it when done.
//
// Key features:
//   - Register / Login / Logout against the local credential file
//   - Select, start and stop timed activity sessions
//   - Recovery of a session left open by an earlier run
//   - Session history and monthly CSV export (remote backend)
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher and runREPL for details.
package cli
