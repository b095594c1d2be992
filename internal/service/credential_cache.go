package service

import (
	"sync"
	"time"

	"ossgate/internal/domain"
)

// CredentialCache holds at most one issued credential. A cached credential is
// reusable while now < expiresAt - margin.
type CredentialCache struct {
	mu        sync.RWMutex
	cred      domain.Credential
	expiresAt time.Time
	ttl       time.Duration
	margin    time.Duration
	now       func() time.Time
}

// NewCredentialCache creates an empty cache. A nil clock defaults to time.Now.
func NewCredentialCache(ttl, margin time.Duration, now func() time.Time) *CredentialCache {
	if now == nil {
		now = time.Now
	}
	return &CredentialCache{ttl: ttl, margin: margin, now: now}
}

// Get returns the cached credential if it is still inside its reuse window.
func (c *CredentialCache) Get() (domain.Credential, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.expiresAt.IsZero() || !c.now().Before(c.expiresAt.Add(-c.margin)) {
		return domain.Credential{}, false
	}
	return c.cred, true
}

// Put replaces the cached credential. The entry expires ttl after issuedAt,
// or at the provider-reported expiration when that comes first.
func (c *CredentialCache) Put(cred domain.Credential, issuedAt time.Time) {
	expiresAt := issuedAt.Add(c.ttl)
	if cred.Expiration != nil && cred.Expiration.Before(expiresAt) {
		expiresAt = *cred.Expiration
	}

	c.mu.Lock()
	c.cred = cred
	c.expiresAt = expiresAt
	c.mu.Unlock()
}

// Invalidate drops the cached credential.
func (c *CredentialCache) Invalidate() {
	c.mu.Lock()
	c.cred = domain.Credential{}
	c.expiresAt = time.Time{}
	c.mu.Unlock()
}

// ExpiresAt reports when the cached entry stops being served, if one is held.
func (c *CredentialCache) ExpiresAt() (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.expiresAt.IsZero() {
		return time.Time{}, false
	}
	return c.expiresAt.Add(-c.margin), true
}

// Now returns the cache's clock reading.
func (c *CredentialCache) Now() time.Time {
	return c.now()
}
