// Package api implements the HTTP REST API for Configurizer.
//
// This package provides:
//   - REST endpoints for listing machines and reading their setting schemas
//   - The apply endpoint submitting a settings batch for validation
//   - Apply history read from the audit trail
//   - Middleware stack (request ID, logging, recovery, CORS, body limits)
//
// # Architecture
//
// The API server is thin plumbing around the machine registry: it parses
// wire requests into typed batches, rejects malformed units and values
// before the validation engine runs, and translates the engine's error
// list into a structured 400 response. On a successful apply it records
// the audit entry, publishes the applied-settings MQTT event, and writes
// the apply metric — all best-effort side effects that never fail the
// request.
//
// The server follows the standard lifecycle pattern:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
package api
