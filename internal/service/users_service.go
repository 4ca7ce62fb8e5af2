package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopportal/accounts-service/internal/domain"
	"github.com/shopportal/accounts-service/internal/dto"
	"github.com/shopportal/accounts-service/internal/identity"
	"github.com/shopportal/accounts-service/internal/store"
	"go.uber.org/zap"
)

// usersService implements UserService
type usersService struct {
	provider identity.Provider
	profiles store.ProfileStore
	mailer   VerificationMailer
	logger   *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(
	provider identity.Provider,
	profiles store.ProfileStore,
	mailer VerificationMailer,
	logger *zap.Logger,
) UserService {
	return &usersService{
		provider: provider,
		profiles: profiles,
		mailer:   mailer,
		logger:   logger,
	}
}

// Create provisions a provider account, persists its profile document and
// dispatches the verification email. A failed dispatch never fails creation.
func (s *usersService) Create(ctx context.Context, req *dto.CreateUserRequest) (*domain.UserProfile, dto.VerificationDispatch, error) {
	account, err := s.provider.CreateAccount(ctx, identity.NewAccount{
		DisplayName: req.FullName,
		Email:       req.Email,
		Password:    req.Password,
	})
	if err != nil {
		return nil, dto.VerificationDispatch{}, fmt.Errorf("failed to create account: %w", err)
	}

	now := time.Now().UTC()
	profile := &domain.UserProfile{
		UID:         account.UID,
		Email:       account.Email,
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
		CreatedAt:   now,
		LastLogin:   now,
		Purchases:   []json.RawMessage{},
		Role:        domain.RoleUser,
	}

	if err := s.profiles.Set(ctx, account.UID, profile); err != nil {
		s.logger.Error("profile write failed after account creation, provider account orphaned",
			zap.String("uid", account.UID),
			zap.Error(err),
		)
		return nil, dto.VerificationDispatch{}, fmt.Errorf("failed to store profile for %s: %w", account.UID, err)
	}

	dispatch, err := s.mailer.Dispatch(ctx, account.UID, account.Email)
	if err != nil {
		s.logger.Warn("verification email dispatch failed",
			zap.String("uid", account.UID),
			zap.Error(err),
		)
	}

	stored, err := s.profiles.Get(ctx, account.UID)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, dispatch, fmt.Errorf("profile for %s missing after write: %w", account.UID, domain.ErrPersistenceInconsistency)
		}
		return nil, dispatch, fmt.Errorf("failed to read back profile for %s: %w", account.UID, err)
	}

	return stored, dispatch, nil
}

// FindAll lists every stored profile.
func (s *usersService) FindAll(ctx context.Context) ([]*domain.UserProfile, error) {
	profiles, err := s.profiles.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	return profiles, nil
}

// FindOne retrieves one profile by UID.
func (s *usersService) FindOne(ctx context.Context, uid string) (*domain.UserProfile, error) {
	return s.profiles.Get(ctx, uid)
}

// Update shallow-merges the partial fields over the stored document and
// persists the result. Last write wins on concurrent updates.
func (s *usersService) Update(ctx context.Context, uid string, req *dto.UpdateUserRequest) (*domain.UserProfile, error) {
	profile, err := s.profiles.Get(ctx, uid)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		profile.FullName = *req.FullName
	}
	if req.Email != nil {
		profile.Email = *req.Email
	}
	if req.PhoneNumber != nil {
		profile.PhoneNumber = *req.PhoneNumber
	}
	if req.Role != nil {
		profile.Role = *req.Role
	}
	if req.Purchases != nil {
		profile.Purchases = *req.Purchases
	}
	profile.Normalize()

	if err := s.profiles.Set(ctx, uid, profile); err != nil {
		return nil, err
	}

	return profile, nil
}

// Remove deletes the profile document and returns the pre-deletion snapshot.
// The provider account is left in place.
func (s *usersService) Remove(ctx context.Context, uid string) (*domain.UserProfile, error) {
	profile, err := s.profiles.Get(ctx, uid)
	if err != nil {
		return nil, err
	}

	if err := s.profiles.Delete(ctx, uid); err != nil {
		return nil, err
	}

	return profile, nil
}
