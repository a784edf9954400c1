package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenClaims is the subset of the access-token claims the client reads.
// Signature verification is the backend's job; the client only parses the
// payload to know who is signed in and when the token lapses.
type tokenClaims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// JWTProvider derives the current user from the primary-auth access token.
type JWTProvider struct {
	notifier

	mu    sync.Mutex
	user  *User
	token string
	now   func() time.Time
}

func NewJWTProvider() *JWTProvider {
	return &JWTProvider{now: time.Now}
}

// SetToken installs a new access token, parses its claims, and notifies
// listeners. An empty token signs the user out. Returns an error when the
// token cannot be parsed or is already expired.
func (p *JWTProvider) SetToken(token string) error {
	if token == "" {
		p.clear()
		return nil
	}

	var claims tokenClaims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return fmt.Errorf("parse access token: %w", err)
	}
	if claims.Subject == "" {
		return fmt.Errorf("access token has no subject")
	}
	if claims.ExpiresAt != nil && !claims.ExpiresAt.After(p.now()) {
		return fmt.Errorf("access token expired at %s", claims.ExpiresAt)
	}

	u := &User{ID: claims.Subject, Email: claims.Email}

	p.mu.Lock()
	p.user, p.token = u, token
	p.mu.Unlock()

	p.notify(u)
	return nil
}

// SignOut drops the session and notifies listeners with nil.
func (p *JWTProvider) SignOut() { p.clear() }

func (p *JWTProvider) clear() {
	p.mu.Lock()
	p.user, p.token = nil, ""
	p.mu.Unlock()
	p.notify(nil)
}

func (p *JWTProvider) CurrentUser() *User {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.user != nil && p.expiredLocked() {
		return nil
	}
	return p.user
}

func (p *JWTProvider) AccessToken() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.expiredLocked() {
		return ""
	}
	return p.token
}

// expiredLocked re-checks expiry lazily so a token that lapses mid-session
// stops being presented. Callers must hold p.mu.
func (p *JWTProvider) expiredLocked() bool {
	if p.token == "" {
		return false
	}
	var claims tokenClaims
	if _, _, err := jwt.NewParser().ParseUnverified(p.token, &claims); err != nil {
		return true
	}
	return claims.ExpiresAt != nil && !claims.ExpiresAt.After(p.now())
}

func (p *JWTProvider) OnChange(fn func(*User)) func() {
	return p.subscribe(fn)
}
