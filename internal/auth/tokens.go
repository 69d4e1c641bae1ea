package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"lexdash/internal/cache"
	"lexdash/internal/ports"
)

const tokenPrefix = "lxd_"

// GenerateToken returns a fresh random token. Only its hash is stored.
func GenerateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return tokenPrefix + base64.RawURLEncoding.EncodeToString(buf), nil
}

// HashToken is the lookup key stored for a token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(token)))
	return hex.EncodeToString(sum[:])
}

// DefaultRevalidateAfter bounds how long a cached resolution is trusted
// before the store is asked again. Tokens revoked by another process, such
// as lexdashctl, stop working within this interval.
const DefaultRevalidateAfter = 15 * time.Second

// CachedUser is a token resolution and the time it was last confirmed by
// the store.
type CachedUser struct {
	UserID    string
	CheckedAt time.Time
}

// TokenService issues, resolves and revokes API tokens. Resolved tokens are
// cached by hash so authenticated requests rarely touch the database.
type TokenService struct {
	store           ports.TokenStore
	cache           cache.Cache[CachedUser]
	revalidateAfter time.Duration
	now             func() time.Time
}

var _ UserResolver = (*TokenService)(nil)

// NewTokenService wires the service. c may be nil to disable caching.
// A non-positive revalidateAfter selects DefaultRevalidateAfter.
func NewTokenService(store ports.TokenStore, c cache.Cache[CachedUser], revalidateAfter time.Duration) *TokenService {
	if revalidateAfter <= 0 {
		revalidateAfter = DefaultRevalidateAfter
	}
	return &TokenService{store: store, cache: c, revalidateAfter: revalidateAfter, now: time.Now}
}

func (s *TokenService) ResolveUser(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrUnauthorized
	}
	hash := HashToken(token)
	now := s.now().UTC()
	if s.cache != nil {
		if hit, ok := s.cache.Get(hash); ok && now.Sub(hit.CheckedAt) < s.revalidateAfter {
			return hit.UserID, nil
		}
	}

	userID, err := s.store.UserForToken(ctx, hash, now)
	if errors.Is(err, ports.ErrNotFound) {
		if s.cache != nil {
			s.cache.Delete(hash)
		}
		return "", ErrUnauthorized
	}
	if err != nil {
		return "", fmt.Errorf("resolve token: %w", err)
	}
	if s.cache != nil {
		s.cache.Set(hash, CachedUser{UserID: userID, CheckedAt: now})
	}
	return userID, nil
}

// Issue creates a token for userID and returns it in clear, once.
func (s *TokenService) Issue(ctx context.Context, userID, description string) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", errors.New("user id is required")
	}
	token, err := GenerateToken()
	if err != nil {
		return "", err
	}
	if err := s.store.CreateToken(ctx, HashToken(token), userID, description, s.now().UTC()); err != nil {
		return "", fmt.Errorf("store token: %w", err)
	}
	return token, nil
}

// Revoke deletes every token of userID and evicts them from this service's
// cache. Other processes notice on their next revalidation.
func (s *TokenService) Revoke(ctx context.Context, userID string) (int64, error) {
	n, err := s.store.RevokeTokens(ctx, userID)
	if err != nil {
		return 0, err
	}
	if s.cache != nil {
		s.cache.DeleteFunc(func(hit CachedUser) bool { return hit.UserID == userID })
	}
	return n, nil
}
