package gate

import (
	"context"
	"io"
	"log/slog"

	"github.com/go-webauthn/webauthn/protocol"

	"github.com/antonkosov/vaultgate/internal/client/client"
	"github.com/antonkosov/vaultgate/internal/client/models"
	"github.com/antonkosov/vaultgate/internal/client/webauthnx"
	"github.com/antonkosov/vaultgate/internal/logging"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// fakeClient implements client.Client with per-call hooks so tests can script
// each exchange.
type fakeClient struct {
	fetchFn  func(ctx context.Context, userID string) (*models.SecurityConfig, error)
	verifyFn func(ctx context.Context, userID string, method models.Method, value string) (bool, error)
	resetFn  func(ctx context.Context, userID, email string, method models.Method) error
	tokenFn  func(ctx context.Context, userID, token string, method models.Method, newValue string) (bool, error)
	answerFn func(ctx context.Context, userID, question, answer string) (bool, error)

	fetchCalls  int
	verifyCalls int
}

func (f *fakeClient) Close() error { return nil }

func (f *fakeClient) FetchConfig(ctx context.Context, userID string) (*models.SecurityConfig, error) {
	f.fetchCalls++
	if f.fetchFn == nil {
		return nil, client.ErrNotFound
	}
	return f.fetchFn(ctx, userID)
}

func (f *fakeClient) CreateConfig(ctx context.Context, userID string) (*models.SecurityConfig, error) {
	return &models.SecurityConfig{UserID: userID}, nil
}

func (f *fakeClient) UpdateConfig(ctx context.Context, userID string, update models.ConfigUpdate) (*models.SecurityConfig, error) {
	return &models.SecurityConfig{UserID: userID}, nil
}

func (f *fakeClient) VerifyCandidate(ctx context.Context, userID string, method models.Method, value string) (bool, error) {
	f.verifyCalls++
	if f.verifyFn == nil {
		return false, nil
	}
	return f.verifyFn(ctx, userID, method, value)
}

func (f *fakeClient) RequestMethodReset(ctx context.Context, userID, email string, method models.Method) error {
	if f.resetFn == nil {
		return nil
	}
	return f.resetFn(ctx, userID, email, method)
}

func (f *fakeClient) ResetMethodWithToken(ctx context.Context, userID, token string, method models.Method, newValue string) (bool, error) {
	if f.tokenFn == nil {
		return false, nil
	}
	return f.tokenFn(ctx, userID, token, method, newValue)
}

func (f *fakeClient) VerifySecurityAnswer(ctx context.Context, userID, question, answer string) (bool, error) {
	if f.answerFn == nil {
		return false, nil
	}
	return f.answerFn(ctx, userID, question, answer)
}

func (f *fakeClient) SaveSecurityQuestions(ctx context.Context, userID string, questions []models.SecurityQuestion) error {
	return nil
}

func (f *fakeClient) BiometricRegistrationOptions(ctx context.Context, userID string) (*protocol.CredentialCreation, error) {
	return nil, client.ErrUnavailable
}

func (f *fakeClient) VerifyBiometricRegistration(ctx context.Context, userID string, payload *webauthnx.RegistrationPayload) (bool, error) {
	return false, nil
}

func (f *fakeClient) BiometricAuthenticationOptions(ctx context.Context, userID string) (*protocol.CredentialAssertion, error) {
	return nil, client.ErrUnavailable
}

func (f *fakeClient) VerifyBiometric(ctx context.Context, userID string, payload *webauthnx.AssertionPayload) (bool, error) {
	return false, nil
}

func (f *fakeClient) SaveItem(ctx context.Context, userID string, item *models.VaultItem) error {
	return nil
}

func (f *fakeClient) ListItems(ctx context.Context, userID string) ([]*models.VaultItem, error) {
	return nil, nil
}

func (f *fakeClient) DeleteItem(ctx context.Context, userID, itemID string) error {
	return nil
}

// fakeBiometric scripts the platform ceremony outcome.
type fakeBiometric struct {
	supported bool
	authErr   error
	attempts  int
}

func (f *fakeBiometric) Supported() bool { return f.supported }

func (f *fakeBiometric) BeginAuthentication(ctx context.Context, userID string) error {
	f.attempts++
	return f.authErr
}
