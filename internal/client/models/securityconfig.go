// Package models defines the client-side data model: the security
// configuration mirrored from the credential store, and vault items whose
// secret fields travel as cipher envelopes.
package models

import (
	"fmt"
	"time"
)

// QuestionCooldown is how long security questions stay frozen after an update.
const QuestionCooldown = 6 * 30 * 24 * time.Hour

// RequiredQuestionCount is how many questions must be configured before the
// answer-based reset path becomes available.
const RequiredQuestionCount = 3

// SecurityQuestion is one configured question. The answer is stored hashed;
// the client never compares it locally.
type SecurityQuestion struct {
	Question   string `json:"question"`
	AnswerHash string `json:"answerHash,omitempty"`
}

// BiometricCredential is a registered WebAuthn credential descriptor. The
// client treats it as opaque beyond id/publicKey bookkeeping; binary fields
// are base64url on the wire.
type BiometricCredential struct {
	ID         string   `json:"id"`
	PublicKey  string   `json:"publicKey,omitempty"`
	Transports []string `json:"transports,omitempty"`
}

// SecurityConfig is the per-user gate configuration, owned by the backend and
// cached client-side only for the lifetime of a page/session.
//
// Invariant (enforced by the method registry, not the backend): at most one of
// the *Enabled flags is true at any time.
type SecurityConfig struct {
	UserID string `json:"userId"`

	PinEnabled       bool `json:"pinEnabled"`
	PasswordEnabled  bool `json:"passwordEnabled"`
	PatternEnabled   bool `json:"patternEnabled"`
	BiometricEnabled bool `json:"biometricEnabled"`

	// Opaque hashes. Presence means the method was configured at some point;
	// the client never reads them for comparison.
	PinHash      string `json:"pinHash,omitempty"`
	PasswordHash string `json:"passwordHash,omitempty"`
	PatternHash  string `json:"patternHash,omitempty"`

	SecurityQuestions              []SecurityQuestion `json:"securityQuestions,omitempty"`
	SecurityQuestionsLastUpdatedAt *time.Time         `json:"securityQuestionsLastUpdatedAt,omitempty"`

	BiometricCredentials []BiometricCredential `json:"biometricCredentials,omitempty"`
}

// Validate checks a config received from the credential store.
func (c SecurityConfig) Validate() error {
	if c.UserID == "" {
		return fmt.Errorf("security config: missing userId")
	}
	if len(c.SecurityQuestions) > RequiredQuestionCount {
		return fmt.Errorf("security config: %d security questions, max %d",
			len(c.SecurityQuestions), RequiredQuestionCount)
	}
	return nil
}

// MethodEnabled reports whether the given method is currently enabled.
func (c SecurityConfig) MethodEnabled(m Method) bool {
	switch m {
	case MethodPin:
		return c.PinEnabled
	case MethodPassword:
		return c.PasswordEnabled
	case MethodPattern:
		return c.PatternEnabled
	case MethodBiometric:
		return c.BiometricEnabled
	}
	return false
}

// AnyEnabled reports whether any method at all is enabled.
func (c SecurityConfig) AnyEnabled() bool {
	return c.PinEnabled || c.PasswordEnabled || c.PatternEnabled || c.BiometricEnabled
}

// EnabledCount returns how many *Enabled flags are set. Anything above one is
// an invariant violation that the gate handles defensively.
func (c SecurityConfig) EnabledCount() int {
	n := 0
	for _, m := range Methods {
		if c.MethodEnabled(m) {
			n++
		}
	}
	return n
}

// ChallengeMethod picks which method the gate should challenge interactively:
// pattern > password > pin. Biometric is excluded here because the gate
// auto-attempts it silently before falling back to this choice. Returns ""
// when no interactive method is enabled.
func (c SecurityConfig) ChallengeMethod() Method {
	for _, m := range challengePriority {
		if c.MethodEnabled(m) {
			return m
		}
	}
	return ""
}

// HasAllQuestions reports whether the answer-based reset path is available.
func (c SecurityConfig) HasAllQuestions() bool {
	return len(c.SecurityQuestions) == RequiredQuestionCount
}

// QuestionsLocked reports whether the question-update cooldown is still
// running at the given instant.
func (c SecurityConfig) QuestionsLocked(now time.Time) bool {
	if c.SecurityQuestionsLastUpdatedAt == nil {
		return false
	}
	return now.Sub(*c.SecurityQuestionsLastUpdatedAt) < QuestionCooldown
}

// ConfigUpdate carries a partial update: only non-nil fields change on the
// server. Hashes are set by the client on the setup path; the server remains
// the source of truth for what is stored.
type ConfigUpdate struct {
	PinEnabled       *bool `json:"pinEnabled,omitempty"`
	PasswordEnabled  *bool `json:"passwordEnabled,omitempty"`
	PatternEnabled   *bool `json:"patternEnabled,omitempty"`
	BiometricEnabled *bool `json:"biometricEnabled,omitempty"`

	PinHash      *string `json:"pinHash,omitempty"`
	PasswordHash *string `json:"passwordHash,omitempty"`
	PatternHash  *string `json:"patternHash,omitempty"`
}

// Bool returns a pointer to b, for building ConfigUpdate literals.
func Bool(b bool) *bool { return &b }

// String returns a pointer to s, for building ConfigUpdate literals.
func String(s string) *string { return &s }
