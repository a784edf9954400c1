package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/antonkosov/vaultgate/internal/client/models"
	"github.com/antonkosov/vaultgate/internal/client/webauthnx"
	"github.com/antonkosov/vaultgate/internal/common"
	"github.com/antonkosov/vaultgate/internal/logging"
	"github.com/go-webauthn/webauthn/protocol"
)

// DefaultRequestTimeout bounds every remote call so a hung request can never
// leave the gate busy forever.
const DefaultRequestTimeout = 10 * time.Second

// HTTPClient is the REST implementation of Client. It attaches the primary
// session's access token to every request and maps transport and status
// failures to the package sentinel errors.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	tokenFn func() string
	log     logging.Logger
}

// NewHTTPClient constructs a client for the credential store at baseURL.
// tokenFn supplies the current primary-auth access token; it may return ""
// (no primary session). A nil tokenFn sends no auth header. A non-positive
// timeout falls back to DefaultRequestTimeout.
func NewHTTPClient(baseURL string, timeout time.Duration, tokenFn func() string, log logging.Logger) *HTTPClient {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return &HTTPClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		tokenFn: tokenFn,
		log:     log,
	}
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// ackResponse is the generic {success} body most verify endpoints return.
type ackResponse struct {
	Success  bool `json:"success"`
	Verified bool `json:"verified"`
}

func (r ackResponse) ok() bool { return r.Success || r.Verified }

func (c *HTTPClient) FetchConfig(ctx context.Context, userID string) (*models.SecurityConfig, error) {
	var cfg models.SecurityConfig
	if err := c.do(ctx, http.MethodGet, "/security-config/"+url.PathEscape(userID), nil, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *HTTPClient) CreateConfig(ctx context.Context, userID string) (*models.SecurityConfig, error) {
	body := map[string]string{"userId": userID}
	var cfg models.SecurityConfig
	if err := c.do(ctx, http.MethodPost, "/security-config", body, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *HTTPClient) UpdateConfig(ctx context.Context, userID string, update models.ConfigUpdate) (*models.SecurityConfig, error) {
	var cfg models.SecurityConfig
	if err := c.do(ctx, http.MethodPut, "/security-config/"+url.PathEscape(userID), update, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *HTTPClient) VerifyCandidate(ctx context.Context, userID string, method models.Method, value string) (bool, error) {
	body := map[string]string{
		"userId": userID,
		"value":  value,
		"method": string(method),
	}
	var ack ackResponse
	if err := c.do(ctx, http.MethodPost, "/security-config/verify", body, &ack); err != nil {
		return false, err
	}
	return ack.ok(), nil
}

func (c *HTTPClient) RequestMethodReset(ctx context.Context, userID, email string, method models.Method) error {
	body := map[string]string{
		"userId":        userID,
		"email":         email,
		"methodToReset": string(method),
	}
	var ack ackResponse
	if err := c.do(ctx, http.MethodPost, "/security-config/request-method-reset", body, &ack); err != nil {
		return err
	}
	if !ack.ok() {
		return fmt.Errorf("reset email was not sent")
	}
	return nil
}

func (c *HTTPClient) ResetMethodWithToken(ctx context.Context, userID, token string, method models.Method, newValue string) (bool, error) {
	body := map[string]string{
		"userId":     userID,
		"token":      token,
		"methodType": string(method),
		"newValue":   newValue,
	}
	var ack ackResponse
	if err := c.do(ctx, http.MethodPost, "/security-config/reset-method-with-token", body, &ack); err != nil {
		return false, err
	}
	return ack.ok(), nil
}

func (c *HTTPClient) VerifySecurityAnswer(ctx context.Context, userID, question, answer string) (bool, error) {
	body := map[string]string{
		"userId":   userID,
		"question": question,
		"answer":   answer,
	}
	var ack ackResponse
	if err := c.do(ctx, http.MethodPost, "/security-config/verify-security-answer", body, &ack); err != nil {
		return false, err
	}
	return ack.ok(), nil
}

func (c *HTTPClient) SaveSecurityQuestions(ctx context.Context, userID string, questions []models.SecurityQuestion) error {
	type questionPayload struct {
		Question string `json:"question"`
		Answer   string `json:"answer"`
	}
	payload := struct {
		Questions []questionPayload `json:"questions"`
	}{}
	for _, q := range questions {
		payload.Questions = append(payload.Questions, questionPayload{Question: q.Question, Answer: q.AnswerHash})
	}
	return c.do(ctx, http.MethodPut, "/security-config/security-questions/"+url.PathEscape(userID), payload, nil)
}

func (c *HTTPClient) BiometricRegistrationOptions(ctx context.Context, userID string) (*protocol.CredentialCreation, error) {
	var cc protocol.CredentialCreation
	err := c.do(ctx, http.MethodGet, "/security-config/biometric/generate-registration-options/"+url.PathEscape(userID), nil, &cc)
	if err != nil {
		return nil, err
	}
	return &cc, nil
}

func (c *HTTPClient) VerifyBiometricRegistration(ctx context.Context, userID string, payload *webauthnx.RegistrationPayload) (bool, error) {
	var ack ackResponse
	err := c.do(ctx, http.MethodPost, "/security-config/biometric/verify-registration/"+url.PathEscape(userID), payload, &ack)
	if err != nil {
		return false, err
	}
	return ack.ok(), nil
}

func (c *HTTPClient) BiometricAuthenticationOptions(ctx context.Context, userID string) (*protocol.CredentialAssertion, error) {
	var ca protocol.CredentialAssertion
	err := c.do(ctx, http.MethodGet, "/security-config/biometric/generate-authentication-options/"+url.PathEscape(userID), nil, &ca)
	if err != nil {
		return nil, err
	}
	return &ca, nil
}

func (c *HTTPClient) VerifyBiometric(ctx context.Context, userID string, payload *webauthnx.AssertionPayload) (bool, error) {
	body := struct {
		UserID     string                      `json:"userId"`
		Credential *webauthnx.AssertionPayload `json:"credential"`
	}{UserID: userID, Credential: payload}

	var ack ackResponse
	if err := c.do(ctx, http.MethodPost, "/security-config/biometric/verify", body, &ack); err != nil {
		return false, err
	}
	return ack.ok(), nil
}

func (c *HTTPClient) SaveItem(ctx context.Context, userID string, item *models.VaultItem) error {
	return c.do(ctx, http.MethodPut, "/vault-items/"+url.PathEscape(userID), item, nil)
}

func (c *HTTPClient) ListItems(ctx context.Context, userID string) ([]*models.VaultItem, error) {
	var items []*models.VaultItem
	if err := c.do(ctx, http.MethodGet, "/vault-items/"+url.PathEscape(userID), nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *HTTPClient) DeleteItem(ctx context.Context, userID, itemID string) error {
	return c.do(ctx, http.MethodDelete, "/vault-items/"+url.PathEscape(userID)+"/"+url.PathEscape(itemID), nil, nil)
}

// do performs one JSON request/response cycle with a per-call timeout and
// sentinel error mapping.
func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.http.Timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokenFn != nil {
		if token := c.tokenFn(); token != "" {
			req.Header.Set(common.AccessTokenHeaderName, common.BearerPrefix+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if c.log != nil {
			c.log.Warn(ctx, "credential store request failed", "method", method, "path", path, "error", err)
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return ErrUnauthorized
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: status %s", ErrUnavailable, resp.Status)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %s: %s", resp.Status, string(b))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
