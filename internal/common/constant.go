// Package common contains shared constants and sentinel errors used across
// worklog components.
package common

// AccessKeyHeaderName is the gRPC metadata key used to carry the backend
// access key on outbound requests.
const AccessKeyHeaderName = "access_key"

// RequestIDHeaderName is the gRPC metadata key carrying an optional
// client-generated request id.
const RequestIDHeaderName = "x-request-id"
