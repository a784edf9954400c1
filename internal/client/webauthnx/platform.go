package webauthnx

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrUnsupported means the platform lacks the credential capability.
	// Callers fall back to another configured method, never a hard failure.
	ErrUnsupported = errors.New("platform authenticator unsupported")

	// ErrUserCancelled means the user dismissed the platform prompt.
	ErrUserCancelled = errors.New("user cancelled")

	// ErrServerRejected means the server refused the attestation/assertion.
	ErrServerRejected = errors.New("server rejected credential")
)

// CreationRequest is the binary form of registration options, as the platform
// credential API wants them.
type CreationRequest struct {
	Challenge  []byte
	RPID       string
	RPName     string
	UserID     []byte
	UserName   string
	ExcludeIDs [][]byte
	Timeout    time.Duration
}

// Attestation is the binary result of a platform credential creation.
type Attestation struct {
	CredentialID      []byte
	ClientDataJSON    []byte
	AttestationObject []byte
	Transports        []string
}

// AssertionRequest is the binary form of authentication options.
type AssertionRequest struct {
	Challenge []byte
	RPID      string
	AllowIDs  [][]byte
	Timeout   time.Duration
}

// Assertion is the binary result of a platform credential get.
type Assertion struct {
	CredentialID      []byte
	ClientDataJSON    []byte
	AuthenticatorData []byte
	Signature         []byte
	UserHandle        []byte
}

// Authenticator abstracts the platform credential API
// (navigator.credentials.create/get in a browser). Implementations speak raw
// bytes; the adapter owns all transport-encoding conversions.
type Authenticator interface {
	// Supported reports whether the platform can perform credential ceremonies
	// at all. When false, Create and Get must not be called.
	Supported() bool

	Create(ctx context.Context, req *CreationRequest) (*Attestation, error)
	Get(ctx context.Context, req *AssertionRequest) (*Assertion, error)
}
