package webauthnx

import (
	"github.com/go-webauthn/webauthn/protocol"
)

// RegistrationPayload is the attestation response in transport form, as posted
// to the verify-registration endpoint. Binary fields use the go-webauthn
// URLEncodedBase64 type so they marshal as base64url strings.
type RegistrationPayload struct {
	ID         string                    `json:"id"`
	RawID      protocol.URLEncodedBase64 `json:"rawId"`
	Type       string                    `json:"type"`
	Response   AttestationResponseJSON   `json:"response"`
	Transports []string                  `json:"transports,omitempty"`
}

type AttestationResponseJSON struct {
	ClientDataJSON    protocol.URLEncodedBase64 `json:"clientDataJSON"`
	AttestationObject protocol.URLEncodedBase64 `json:"attestationObject"`
}

// AssertionPayload is the assertion response in transport form, as posted to
// the biometric verify endpoint.
type AssertionPayload struct {
	ID       string                    `json:"id"`
	RawID    protocol.URLEncodedBase64 `json:"rawId"`
	Type     string                    `json:"type"`
	Response AssertionResponseJSON     `json:"response"`
}

type AssertionResponseJSON struct {
	ClientDataJSON    protocol.URLEncodedBase64 `json:"clientDataJSON"`
	AuthenticatorData protocol.URLEncodedBase64 `json:"authenticatorData"`
	Signature         protocol.URLEncodedBase64 `json:"signature"`
	UserHandle        protocol.URLEncodedBase64 `json:"userHandle,omitempty"`
}

// publicKeyCredentialType is the only credential type WebAuthn defines today.
const publicKeyCredentialType = "public-key"
