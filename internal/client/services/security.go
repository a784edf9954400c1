// Package services contains application services for the vaultgate client.
// This file defines the security service: the method registry that keeps
// exactly one local-auth method enabled, security-question management, and
// biometric enrollment.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/antonkosov/vaultgate/internal/client/client"
	"github.com/antonkosov/vaultgate/internal/client/models"
	"github.com/antonkosov/vaultgate/internal/client/webauthnx"
	"github.com/antonkosov/vaultgate/internal/common"
	"github.com/antonkosov/vaultgate/internal/cryptox"
	"github.com/antonkosov/vaultgate/internal/logging"
)

// Enroller runs the biometric registration ceremony. *webauthnx.Adapter
// satisfies it; tests provide a stub.
type Enroller interface {
	Supported() bool
	BeginRegistration(ctx context.Context, userID string) error
}

// SecurityService defines setup-time operations on the security config.
//
// Contract:
//   - EnsureConfig: fetch the user's config, creating it lazily on first access.
//   - SetMethod: enable exactly one method, hashing the secret client-side.
//   - DisableMethod: turn the gate into a pass-through.
//   - EnrollBiometric: run WebAuthn registration; restore prior flags on failure.
//   - SaveQuestions: store up to 3 questions, honoring the 6-month cooldown.
//
// All methods honor context cancellation/timeouts.
type SecurityService interface {
	EnsureConfig(ctx context.Context, userID string) (*models.SecurityConfig, error)
	SetMethod(ctx context.Context, userID string, method models.Method, secret, confirmSecret []byte) (*models.SecurityConfig, error)
	DisableMethod(ctx context.Context, userID string, method models.Method) (*models.SecurityConfig, error)
	EnrollBiometric(ctx context.Context, userID string) (*models.SecurityConfig, error)
	SaveQuestions(ctx context.Context, userID string, questions []QuestionAnswer) error
}

// QuestionAnswer is a question with its plaintext answer as entered by the
// user. The answer is hashed before it leaves the process.
type QuestionAnswer struct {
	Question string
	Answer   string
}

type securityService struct {
	client   client.Client
	enroller Enroller
	log      logging.Logger
	now      func() time.Time
}

// NewSecurityService constructs a SecurityService bound to the given API
// client and biometric enroller.
func NewSecurityService(c client.Client, enroller Enroller, log logging.Logger) SecurityService {
	return &securityService{client: c, enroller: enroller, log: log, now: time.Now}
}

// EnsureConfig fetches the user's security config, creating it on NotFound
// (configs are created lazily on first access).
func (s *securityService) EnsureConfig(ctx context.Context, userID string) (*models.SecurityConfig, error) {
	cfg, err := s.client.FetchConfig(ctx, userID)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, client.ErrNotFound) {
		return nil, err
	}

	cfg, err = s.client.CreateConfig(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("create config: %w", err)
	}
	s.log.Info(ctx, "security config created", "userId", userID)
	return cfg, nil
}

// SetMethod validates the secret, hashes it, and pushes an update that enables
// only the chosen method, disabling every other one in the same request so the
// exclusivity invariant holds after any sequence of calls.
//
// Biometric enrollment does not go through here; see EnrollBiometric.
func (s *securityService) SetMethod(ctx context.Context, userID string, method models.Method, secret, confirmSecret []byte) (*models.SecurityConfig, error) {
	if !method.Valid() || method == models.MethodBiometric {
		return nil, fmt.Errorf("cannot set method %q with a secret", method)
	}
	if string(secret) != string(confirmSecret) {
		return nil, common.ErrMismatch
	}
	if method.SecretLen(secret) < method.MinSecretLen() {
		if method == models.MethodPattern {
			return nil, common.ErrPatternTooShort
		}
		return nil, common.ErrSecretTooShort
	}

	hash := cryptox.HashSecret(secret)
	update := exclusiveUpdate(method)
	switch method {
	case models.MethodPin:
		update.PinHash = models.String(hash)
	case models.MethodPassword:
		update.PasswordHash = models.String(hash)
	case models.MethodPattern:
		update.PatternHash = models.String(hash)
	}

	cfg, err := s.client.UpdateConfig(ctx, userID, update)
	if err != nil {
		return nil, fmt.Errorf("push config: %w", err)
	}

	s.log.Info(ctx, "security method set", "userId", userID, "method", method)
	return cfg, nil
}

// DisableMethod clears the given method's flag. With no method left enabled
// the gate becomes a no-op pass-through.
func (s *securityService) DisableMethod(ctx context.Context, userID string, method models.Method) (*models.SecurityConfig, error) {
	if !method.Valid() {
		return nil, fmt.Errorf("unknown method %q", method)
	}

	update := models.ConfigUpdate{}
	switch method {
	case models.MethodPin:
		update.PinEnabled = models.Bool(false)
	case models.MethodPassword:
		update.PasswordEnabled = models.Bool(false)
	case models.MethodPattern:
		update.PatternEnabled = models.Bool(false)
	case models.MethodBiometric:
		update.BiometricEnabled = models.Bool(false)
	}

	cfg, err := s.client.UpdateConfig(ctx, userID, update)
	if err != nil {
		return nil, fmt.Errorf("push config: %w", err)
	}

	s.log.Info(ctx, "security method disabled", "userId", userID, "method", method)
	return cfg, nil
}

// EnrollBiometric flips the biometric flag on, runs the registration ceremony,
// and restores the previously enabled flags server-side when the ceremony
// fails, so state never drifts to "enabled but unregistered" and a failed
// enrollment never strips the method the user already had.
func (s *securityService) EnrollBiometric(ctx context.Context, userID string) (*models.SecurityConfig, error) {
	if s.enroller == nil || !s.enroller.Supported() {
		return nil, webauthnx.ErrUnsupported
	}

	prev, err := s.EnsureConfig(ctx, userID)
	if err != nil {
		return nil, err
	}

	cfg, err := s.client.UpdateConfig(ctx, userID, exclusiveUpdate(models.MethodBiometric))
	if err != nil {
		return nil, fmt.Errorf("push config: %w", err)
	}

	if err := s.enroller.BeginRegistration(ctx, userID); err != nil {
		revert := models.ConfigUpdate{
			PinEnabled:       models.Bool(prev.PinEnabled),
			PasswordEnabled:  models.Bool(prev.PasswordEnabled),
			PatternEnabled:   models.Bool(prev.PatternEnabled),
			BiometricEnabled: models.Bool(prev.BiometricEnabled),
		}
		if _, revertErr := s.client.UpdateConfig(ctx, userID, revert); revertErr != nil {
			s.log.Error(ctx, "failed to restore method flags after enrollment failure", "userId", userID, "error", revertErr)
		}
		return nil, err
	}

	s.log.Info(ctx, "biometric enrolled", "userId", userID)
	return cfg, nil
}

// SaveQuestions hashes the answers and stores the questions, enforcing the
// count and the 6-month update cooldown.
func (s *securityService) SaveQuestions(ctx context.Context, userID string, questions []QuestionAnswer) error {
	if len(questions) == 0 || len(questions) > models.RequiredQuestionCount {
		return fmt.Errorf("between 1 and %d questions required", models.RequiredQuestionCount)
	}

	cfg, err := s.EnsureConfig(ctx, userID)
	if err != nil {
		return err
	}
	if cfg.QuestionsLocked(s.now()) {
		return common.ErrQuestionsCooldown
	}

	hashed := make([]models.SecurityQuestion, 0, len(questions))
	for _, qa := range questions {
		if qa.Question == "" || qa.Answer == "" {
			return fmt.Errorf("question and answer must not be empty")
		}
		hashed = append(hashed, models.SecurityQuestion{
			Question:   qa.Question,
			AnswerHash: cryptox.HashSecret([]byte(qa.Answer)),
		})
	}

	if err := s.client.SaveSecurityQuestions(ctx, userID, hashed); err != nil {
		return fmt.Errorf("save questions: %w", err)
	}
	return nil
}

// exclusiveUpdate builds the partial update that enables only the given
// method, explicitly disabling the rest.
func exclusiveUpdate(method models.Method) models.ConfigUpdate {
	return models.ConfigUpdate{
		PinEnabled:       models.Bool(method == models.MethodPin),
		PasswordEnabled:  models.Bool(method == models.MethodPassword),
		PatternEnabled:   models.Bool(method == models.MethodPattern),
		BiometricEnabled: models.Bool(method == models.MethodBiometric),
	}
}
