// Package client connects the worklog CLI to its session storage.
//
// # Overview
//
// The package provides:
//  1. The Client contract: the session repository operations plus Ping,
//     ExportReport and Close.
//  2. GRPCClient, the remote implementation talking to the activity backend.
//     An interceptor attaches the access key and a request id to every call
//     and bounds it with the configured timeout. gRPC status codes are mapped
//     to common.ErrBackendUnavailable or common.ErrBackendRejected.
//  3. InitDatabase, which opens the local SQLite file and applies the
//     embedded goose migrations for the local backend.
//
// All operations accept a context and honor its cancellation.
package client
