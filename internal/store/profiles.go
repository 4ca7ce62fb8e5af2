package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"
	"github.com/shopportal/accounts-service/internal/domain"
	"github.com/shopportal/accounts-service/pkg/database"
)

const profileKeyPrefix = "profiles:"

// ProfileStore persists profile documents keyed by account UID.
type ProfileStore interface {
	// Get retrieves one profile document. Missing documents surface as
	// domain.ErrAccountNotFound.
	Get(ctx context.Context, uid string) (*domain.UserProfile, error)

	// Set stores a profile document, replacing any previous version.
	Set(ctx context.Context, uid string, profile *domain.UserProfile) error

	// Delete removes a profile document.
	Delete(ctx context.Context, uid string) error

	// ListAll returns every stored profile ordered by creation time.
	ListAll(ctx context.Context) ([]*domain.UserProfile, error)
}

// profileStore implements ProfileStore on Redis. Each profile is one JSON
// document under profiles:<uid>.
type profileStore struct {
	redis *database.Redis
}

// NewProfileStore creates a Redis-backed profile store.
func NewProfileStore(redis *database.Redis) ProfileStore {
	return &profileStore{redis: redis}
}

func profileKey(uid string) string {
	return profileKeyPrefix + uid
}

func (s *profileStore) Get(ctx context.Context, uid string) (*domain.UserProfile, error) {
	data, err := s.redis.Client.Get(ctx, profileKey(uid)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("profile %s not found: %w", uid, domain.ErrAccountNotFound)
		}
		return nil, fmt.Errorf("failed to get profile %s: %w", uid, err)
	}

	profile := &domain.UserProfile{}
	if err := json.Unmarshal(data, profile); err != nil {
		return nil, fmt.Errorf("failed to decode profile %s: %w", uid, err)
	}
	profile.Normalize()

	return profile, nil
}

func (s *profileStore) Set(ctx context.Context, uid string, profile *domain.UserProfile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to encode profile %s: %w", uid, err)
	}

	if err := s.redis.Client.Set(ctx, profileKey(uid), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to store profile %s: %w", uid, err)
	}

	return nil
}

func (s *profileStore) Delete(ctx context.Context, uid string) error {
	if err := s.redis.Client.Del(ctx, profileKey(uid)).Err(); err != nil {
		return fmt.Errorf("failed to delete profile %s: %w", uid, err)
	}
	return nil
}

func (s *profileStore) ListAll(ctx context.Context) ([]*domain.UserProfile, error) {
	var keys []string
	iter := s.redis.Client.Scan(ctx, 0, profileKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan profiles: %w", err)
	}

	if len(keys) == 0 {
		return []*domain.UserProfile{}, nil
	}

	values, err := s.redis.Client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load profiles: %w", err)
	}

	profiles := make([]*domain.UserProfile, 0, len(values))
	for i, value := range values {
		raw, ok := value.(string)
		if !ok {
			// key deleted between SCAN and MGET
			continue
		}
		profile := &domain.UserProfile{}
		if err := json.Unmarshal([]byte(raw), profile); err != nil {
			return nil, fmt.Errorf("failed to decode profile %s: %w", keys[i], err)
		}
		profile.Normalize()
		profiles = append(profiles, profile)
	}

	// SCAN order is unspecified, keep listings stable for callers.
	sort.Slice(profiles, func(i, j int) bool {
		if profiles[i].CreatedAt.Equal(profiles[j].CreatedAt) {
			return profiles[i].UID < profiles[j].UID
		}
		return profiles[i].CreatedAt.Before(profiles[j].CreatedAt)
	})

	return profiles, nil
}
