package services

import (
	"context"
	"time"

	"github.com/antonkosov/vaultgate/internal/client/client"
	"github.com/antonkosov/vaultgate/internal/client/models"
	"github.com/antonkosov/vaultgate/internal/client/webauthnx"
	"github.com/go-webauthn/webauthn/protocol"
)

// fakeClient implements client.Client for unit tests. It keeps one config in
// memory and applies partial updates the way the real backend does.
type fakeClient struct {
	cfg *models.SecurityConfig

	fetchErr  error
	createErr error
	updateErr error

	verifyOK  bool
	verifyErr error

	items map[string]*models.VaultItem

	updateCalls int
	saveCalls   int

	lastQuestions []models.SecurityQuestion
	lastVerify    struct {
		method models.Method
		value  string
	}
}

var _ client.Client = (*fakeClient)(nil)

func newFakeClient() *fakeClient {
	return &fakeClient{items: map[string]*models.VaultItem{}}
}

func (f *fakeClient) Close() error { return nil }

func (f *fakeClient) FetchConfig(ctx context.Context, userID string) (*models.SecurityConfig, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	if f.cfg == nil {
		return nil, client.ErrNotFound
	}
	cp := *f.cfg
	return &cp, nil
}

func (f *fakeClient) CreateConfig(ctx context.Context, userID string) (*models.SecurityConfig, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.cfg = &models.SecurityConfig{UserID: userID}
	cp := *f.cfg
	return &cp, nil
}

func (f *fakeClient) UpdateConfig(ctx context.Context, userID string, u models.ConfigUpdate) (*models.SecurityConfig, error) {
	f.updateCalls++
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	if f.cfg == nil {
		f.cfg = &models.SecurityConfig{UserID: userID}
	}
	if u.PinEnabled != nil {
		f.cfg.PinEnabled = *u.PinEnabled
	}
	if u.PasswordEnabled != nil {
		f.cfg.PasswordEnabled = *u.PasswordEnabled
	}
	if u.PatternEnabled != nil {
		f.cfg.PatternEnabled = *u.PatternEnabled
	}
	if u.BiometricEnabled != nil {
		f.cfg.BiometricEnabled = *u.BiometricEnabled
	}
	if u.PinHash != nil {
		f.cfg.PinHash = *u.PinHash
	}
	if u.PasswordHash != nil {
		f.cfg.PasswordHash = *u.PasswordHash
	}
	if u.PatternHash != nil {
		f.cfg.PatternHash = *u.PatternHash
	}
	cp := *f.cfg
	return &cp, nil
}

func (f *fakeClient) VerifyCandidate(ctx context.Context, userID string, method models.Method, value string) (bool, error) {
	f.lastVerify.method = method
	f.lastVerify.value = value
	return f.verifyOK, f.verifyErr
}

func (f *fakeClient) RequestMethodReset(ctx context.Context, userID, email string, method models.Method) error {
	return nil
}

func (f *fakeClient) ResetMethodWithToken(ctx context.Context, userID, token string, method models.Method, newValue string) (bool, error) {
	return false, nil
}

func (f *fakeClient) VerifySecurityAnswer(ctx context.Context, userID, question, answer string) (bool, error) {
	return false, nil
}

func (f *fakeClient) SaveSecurityQuestions(ctx context.Context, userID string, questions []models.SecurityQuestion) error {
	f.lastQuestions = questions
	if f.cfg != nil {
		now := time.Now()
		f.cfg.SecurityQuestions = questions
		f.cfg.SecurityQuestionsLastUpdatedAt = &now
	}
	return nil
}

func (f *fakeClient) BiometricRegistrationOptions(ctx context.Context, userID string) (*protocol.CredentialCreation, error) {
	return &protocol.CredentialCreation{}, nil
}

func (f *fakeClient) VerifyBiometricRegistration(ctx context.Context, userID string, payload *webauthnx.RegistrationPayload) (bool, error) {
	return true, nil
}

func (f *fakeClient) BiometricAuthenticationOptions(ctx context.Context, userID string) (*protocol.CredentialAssertion, error) {
	return &protocol.CredentialAssertion{}, nil
}

func (f *fakeClient) VerifyBiometric(ctx context.Context, userID string, payload *webauthnx.AssertionPayload) (bool, error) {
	return true, nil
}

func (f *fakeClient) SaveItem(ctx context.Context, userID string, item *models.VaultItem) error {
	f.saveCalls++
	cp := *item
	f.items[item.ID] = &cp
	return nil
}

func (f *fakeClient) ListItems(ctx context.Context, userID string) ([]*models.VaultItem, error) {
	out := make([]*models.VaultItem, 0, len(f.items))
	for _, it := range f.items {
		cp := *it
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeClient) DeleteItem(ctx context.Context, userID, itemID string) error {
	delete(f.items, itemID)
	return nil
}
