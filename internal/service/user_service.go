package service

import (
	"context"
	"fmt"

	"velodrive/internal/auth"
	"velodrive/internal/domain"
)

type UserService struct {
	userRepo UserStore
	tokens   *auth.Manager
}

func NewUserService(userRepo UserStore, tokens *auth.Manager) *UserService {
	return &UserService{
		userRepo: userRepo,
		tokens:   tokens,
	}
}

func (s *UserService) Register(ctx context.Context, username, email, password string) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Username:                username,
		Email:                   email,
		Password:                hash,
		TotalStorageInBytes:     domain.DefaultStorageLimitBytes,
		AvailableStorageInBytes: domain.DefaultStorageLimitBytes,
	}

	// Занятые username/email упираются в уникальные ограничения
	return s.userRepo.Create(ctx, user)
}

// Login принимает и username, и email в качестве идентификатора
func (s *UserService) Login(ctx context.Context, identifier, password string) (string, error) {
	user, err := s.userRepo.GetByIdentifier(ctx, identifier)
	if err != nil {
		return "", err
	}

	if !auth.CheckPasswordHash(password, user.Password) {
		return "", fmt.Errorf("%w: incorrect credentials", domain.ErrUnauthorized)
	}

	return s.tokens.GenerateToken(user.ID.String())
}
