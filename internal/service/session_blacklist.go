package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/shopportal/accounts-service/pkg/database"
)

// SessionBlacklistService stores revoked session tokens in Redis until they
// would have expired on their own.
type SessionBlacklistService struct {
	redis *database.Redis
}

// NewSessionBlacklistService creates a new session blacklist service
func NewSessionBlacklistService(redis *database.Redis) *SessionBlacklistService {
	return &SessionBlacklistService{redis: redis}
}

// Add revokes a token for ttl.
func (s *SessionBlacklistService) Add(ctx context.Context, token string, ttl time.Duration) error {
	err := s.redis.Client.Set(ctx, blacklistKey(token), "1", ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to add token to blacklist: %w", err)
	}
	return nil
}

// Contains reports whether a token has been revoked.
func (s *SessionBlacklistService) Contains(ctx context.Context, token string) (bool, error) {
	exists, err := s.redis.Client.Exists(ctx, blacklistKey(token)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token blacklist: %w", err)
	}
	return exists > 0, nil
}

// blacklistKey hashes the token so raw session tokens never land in Redis.
func blacklistKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "blacklist:session:" + hex.EncodeToString(sum[:])
}
