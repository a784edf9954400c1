// Package cli provides the interactive vaultgate command-line client.
//
// It wires configuration, the primary session, the REST client, the security
// gate, the method registry, and the encrypted item store into an interactive
// REPL. Typical flow: paste the primary-auth access token, pass the gate's
// challenge if a method is configured, then manage methods and vault items.
//
// Key features:
//   - Session from a pasted JWT (primary auth happens elsewhere)
//   - Secondary gate: unlock, biometric retry, forgot/reset flows
//   - Method setup: pin, password, pattern, biometric, security questions
//   - Vault items: logins, notes, cards, encrypted before transmission
//   - visibility command simulating the re-lock a real UI performs
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// While the gate is locked only unlock and recovery commands are dispatched.
// See App and runREPL for details.
package cli
