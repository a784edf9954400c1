package webauthnx

import (
	"context"
	"fmt"
	"time"

	"github.com/antonkosov/vaultgate/internal/logging"
	"github.com/go-webauthn/webauthn/protocol"
)

// Transport is the slice of the credential store the adapter needs: the four
// biometric endpoints. *client.HTTPClient satisfies it.
//
// The Verify* methods report (false, nil) when the server processed the
// request and rejected the credential; transport-level failures come back as
// errors and stay retryable.
type Transport interface {
	BiometricRegistrationOptions(ctx context.Context, userID string) (*protocol.CredentialCreation, error)
	VerifyBiometricRegistration(ctx context.Context, userID string, payload *RegistrationPayload) (bool, error)
	BiometricAuthenticationOptions(ctx context.Context, userID string) (*protocol.CredentialAssertion, error)
	VerifyBiometric(ctx context.Context, userID string, payload *AssertionPayload) (bool, error)
}

// Adapter runs WebAuthn ceremonies end to end: fetch options, convert
// transport encoding to the binary form the platform wants, invoke the
// platform, convert the result back, and submit it for verification.
type Adapter struct {
	transport Transport
	auth      Authenticator
	log       logging.Logger
}

func NewAdapter(transport Transport, auth Authenticator, log logging.Logger) *Adapter {
	return &Adapter{transport: transport, auth: auth, log: log}
}

// Supported reports whether the platform authenticator is usable at all.
func (a *Adapter) Supported() bool {
	return a.auth != nil && a.auth.Supported()
}

// BeginRegistration enrolls a platform credential for the user.
// Returns ErrUnsupported, ErrUserCancelled, or ErrServerRejected per the
// outcome; any other error is a transport failure and retryable.
func (a *Adapter) BeginRegistration(ctx context.Context, userID string) error {
	if !a.Supported() {
		return ErrUnsupported
	}

	cc, err := a.transport.BiometricRegistrationOptions(ctx, userID)
	if err != nil {
		return fmt.Errorf("fetch registration options: %w", err)
	}

	req, err := creationRequest(cc)
	if err != nil {
		return fmt.Errorf("decode registration options: %w", err)
	}

	att, err := a.auth.Create(ctx, req)
	if err != nil {
		return err
	}

	ok, err := a.transport.VerifyBiometricRegistration(ctx, userID, registrationPayload(att))
	if err != nil {
		return fmt.Errorf("verify registration: %w", err)
	}
	if !ok {
		return ErrServerRejected
	}

	if a.log != nil {
		a.log.Info(ctx, "biometric credential registered", "userId", userID)
	}
	return nil
}

// BeginAuthentication performs the assertion ceremony. Error taxonomy matches
// BeginRegistration.
func (a *Adapter) BeginAuthentication(ctx context.Context, userID string) error {
	if !a.Supported() {
		return ErrUnsupported
	}

	ca, err := a.transport.BiometricAuthenticationOptions(ctx, userID)
	if err != nil {
		return fmt.Errorf("fetch authentication options: %w", err)
	}

	req := assertionRequest(ca)

	asrt, err := a.auth.Get(ctx, req)
	if err != nil {
		return err
	}

	ok, err := a.transport.VerifyBiometric(ctx, userID, assertionPayload(asrt))
	if err != nil {
		return fmt.Errorf("verify assertion: %w", err)
	}
	if !ok {
		return ErrServerRejected
	}
	return nil
}

// creationRequest converts fetched creation options into the binary form the
// platform credential API requires.
func creationRequest(cc *protocol.CredentialCreation) (*CreationRequest, error) {
	opts := cc.Response

	userID, err := decodeUserID(opts.User.ID)
	if err != nil {
		return nil, err
	}

	excl := make([][]byte, 0, len(opts.CredentialExcludeList))
	for _, d := range opts.CredentialExcludeList {
		excl = append(excl, []byte(d.CredentialID))
	}

	return &CreationRequest{
		Challenge:  []byte(opts.Challenge),
		RPID:       opts.RelyingParty.ID,
		RPName:     opts.RelyingParty.Name,
		UserID:     userID,
		UserName:   opts.User.Name,
		ExcludeIDs: excl,
		Timeout:    time.Duration(opts.Timeout) * time.Millisecond,
	}, nil
}

// decodeUserID handles the wire shapes user.id arrives in: a base64url
// string or already-decoded bytes.
func decodeUserID(v any) ([]byte, error) {
	switch id := v.(type) {
	case nil:
		return nil, nil
	case string:
		return DecodeBase64URL(id)
	case []byte:
		return id, nil
	case protocol.URLEncodedBase64:
		return []byte(id), nil
	default:
		return nil, fmt.Errorf("unexpected user.id type %T", v)
	}
}

func registrationPayload(att *Attestation) *RegistrationPayload {
	return &RegistrationPayload{
		ID:    EncodeBase64URL(att.CredentialID),
		RawID: protocol.URLEncodedBase64(att.CredentialID),
		Type:  publicKeyCredentialType,
		Response: AttestationResponseJSON{
			ClientDataJSON:    protocol.URLEncodedBase64(att.ClientDataJSON),
			AttestationObject: protocol.URLEncodedBase64(att.AttestationObject),
		},
		Transports: att.Transports,
	}
}

func assertionRequest(ca *protocol.CredentialAssertion) *AssertionRequest {
	opts := ca.Response

	allow := make([][]byte, 0, len(opts.AllowedCredentials))
	for _, d := range opts.AllowedCredentials {
		allow = append(allow, []byte(d.CredentialID))
	}

	return &AssertionRequest{
		Challenge: []byte(opts.Challenge),
		RPID:      opts.RelyingPartyID,
		AllowIDs:  allow,
		Timeout:   time.Duration(opts.Timeout) * time.Millisecond,
	}
}

func assertionPayload(asrt *Assertion) *AssertionPayload {
	return &AssertionPayload{
		ID:    EncodeBase64URL(asrt.CredentialID),
		RawID: protocol.URLEncodedBase64(asrt.CredentialID),
		Type:  publicKeyCredentialType,
		Response: AssertionResponseJSON{
			ClientDataJSON:    protocol.URLEncodedBase64(asrt.ClientDataJSON),
			AuthenticatorData: protocol.URLEncodedBase64(asrt.AuthenticatorData),
			Signature:         protocol.URLEncodedBase64(asrt.Signature),
			UserHandle:        protocol.URLEncodedBase64(asrt.UserHandle),
		},
	}
}
