package client

import (
	"context"

	"github.com/antonkosov/vaultgate/internal/client/models"
	"github.com/antonkosov/vaultgate/internal/client/webauthnx"
	"github.com/go-webauthn/webauthn/protocol"
)

// Client is the transport-agnostic contract for the credential store: the
// external collaborator that owns security configs, verifies candidates
// server-side, and runs the reset flows.
type Client interface {
	Close() error

	// Config lifecycle.
	FetchConfig(ctx context.Context, userID string) (*models.SecurityConfig, error)
	CreateConfig(ctx context.Context, userID string) (*models.SecurityConfig, error)
	UpdateConfig(ctx context.Context, userID string, update models.ConfigUpdate) (*models.SecurityConfig, error)

	// VerifyCandidate sends the raw candidate secret; the server hashes and
	// compares. The client never performs this comparison locally.
	VerifyCandidate(ctx context.Context, userID string, method models.Method, value string) (bool, error)

	// Reset flows.
	RequestMethodReset(ctx context.Context, userID, email string, method models.Method) error
	ResetMethodWithToken(ctx context.Context, userID, token string, method models.Method, newValue string) (bool, error)
	VerifySecurityAnswer(ctx context.Context, userID, question, answer string) (bool, error)
	SaveSecurityQuestions(ctx context.Context, userID string, questions []models.SecurityQuestion) error

	// Biometric endpoints (webauthnx.Transport).
	BiometricRegistrationOptions(ctx context.Context, userID string) (*protocol.CredentialCreation, error)
	VerifyBiometricRegistration(ctx context.Context, userID string, payload *webauthnx.RegistrationPayload) (bool, error)
	BiometricAuthenticationOptions(ctx context.Context, userID string) (*protocol.CredentialAssertion, error)
	VerifyBiometric(ctx context.Context, userID string, payload *webauthnx.AssertionPayload) (bool, error)

	// Vault items.
	SaveItem(ctx context.Context, userID string, item *models.VaultItem) error
	ListItems(ctx context.Context, userID string) ([]*models.VaultItem, error)
	DeleteItem(ctx context.Context, userID, itemID string) error
}
