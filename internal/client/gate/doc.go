// Package gate implements the secondary-authentication gate that stands
// between a signed-in user and the vault content.
//
// # Overview
//
// The Gate is a mutex-serialized state machine with three phases: loading,
// unlocked, and locked. On mount and on every visibility regain it fetches
// the user's security config fresh and decides whether to challenge:
//
//   - no primary session, no config, or no enabled method: unlocked;
//   - config fetch failure: unlocked with a warning (the gate fails open so
//     a backend outage never locks users out of their own data);
//   - biometric enabled: a silent platform ceremony runs first, falling back
//     to the highest-priority interactive method (pattern, then password,
//     then pin) on an unsupported platform or a declined ceremony;
//   - otherwise: locked on the highest-priority enabled method.
//
// While locked the gate owns the challenge input buffer; every transition
// wipes it, so backgrounding the app never leaves a half-typed secret behind.
// The recovery flow (Forgot, SendResetEmail, AnswerSecurityQuestion,
// ResetWithToken) moves through explicit steps and unlocks on success.
//
// Concurrent refreshes are ordered by a generation counter: a response that
// lost the race is discarded, so an unlocked gate never re-locks off a stale
// fetch. A busy flag rejects overlapping remote operations with
// common.ErrBusy.
package gate
