package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"
)

// DefaultTokenTTL is how long issued tokens stay valid.
const DefaultTokenTTL = 24 * time.Hour

// Tokens issues and checks opaque bearer tokens. It is safe for concurrent
// use.
type Tokens struct {
	ttl time.Duration
	now func() time.Time

	mu     sync.RWMutex
	expiry map[string]time.Time
}

// NewTokens creates a token store. A non-positive ttl uses DefaultTokenTTL.
func NewTokens(ttl time.Duration) *Tokens {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Tokens{
		ttl:    ttl,
		now:    time.Now,
		expiry: make(map[string]time.Time),
	}
}

// Issue creates a new random 256-bit token.
func (t *Tokens) Issue() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	token := hex.EncodeToString(b)

	t.mu.Lock()
	t.expiry[token] = t.now().Add(t.ttl)
	t.mu.Unlock()
	return token, nil
}

// Valid reports whether token was issued and has not expired.
func (t *Tokens) Valid(token string) bool {
	if token == "" {
		return false
	}

	t.mu.RLock()
	exp, ok := t.expiry[token]
	t.mu.RUnlock()
	return ok && t.now().Before(exp)
}

// Revoke invalidates token.
func (t *Tokens) Revoke(token string) {
	t.mu.Lock()
	delete(t.expiry, token)
	t.mu.Unlock()
}

// Prune drops expired tokens and returns how many were removed.
func (t *Tokens) Prune() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	n := 0
	for token, exp := range t.expiry {
		if !now.Before(exp) {
			delete(t.expiry, token)
			n++
		}
	}
	return n
}

// Len returns the number of stored tokens, expired or not.
func (t *Tokens) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.expiry)
}
