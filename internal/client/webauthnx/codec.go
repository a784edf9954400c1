// Package webauthnx bridges the credential store's WebAuthn endpoints and the
// platform credential API. Binary fields cross the REST boundary as base64url
// strings; this package owns every conversion between the two forms.
package webauthnx

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// EncodeBase64URL encodes arbitrary bytes as unpadded base64url, the transport
// form used by the credential store.
func EncodeBase64URL(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

// DecodeBase64URL is the exact inverse of EncodeBase64URL. It additionally
// accepts padded input, since some peers emit '=' padding.
func DecodeBase64URL(s string) ([]byte, error) {
	b, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "="))
	if err != nil {
		return nil, fmt.Errorf("invalid base64url: %w", err)
	}
	return b, nil
}
