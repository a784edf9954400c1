// Package client contains client-side building blocks for vaultgate.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface) to talk to
//     the credential store: config fetch/create/update, candidate
//     verification, the reset flows, the WebAuthn endpoints, and vault items.
//  2. A concrete REST implementation (see HTTPClient) that attaches the
//     primary session's access token, applies a per-call timeout, and maps
//     transport/status failures to sentinel errors.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) wiring an
//     SQLite cache and applying embedded goose migrations.
//
// # Error Handling
//
// Common conditions are exposed as sentinel errors that callers match with
// errors.Is: ErrUnavailable (retryable), ErrNotFound (setup required),
// ErrUnauthorized (fatal for the session).
//
// All operations accept context.Context and honor cancellation/timeouts.
package client
