package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"bookreview/internal/platform/apperr"
	"bookreview/internal/platform/crypto"
)

type Service struct {
	repo      Repository
	jwtSecret string
	tokenTTL  time.Duration
	now       func() time.Time
	newID     func() string
}

func NewService(repo Repository, jwtSecret string, tokenTTL time.Duration) *Service {
	return &Service{repo: repo, jwtSecret: jwtSecret, tokenTTL: tokenTTL, now: time.Now, newID: uuid.NewString}
}

// Register creates a USER account. The password must already have passed
// strength validation.
func (s *Service) Register(ctx context.Context, email, username, password string) (User, error) {
	hash, err := crypto.HashPassword(password)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}
	now := s.now().UTC()
	u := User{
		ID:           s.newID(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		Username:     strings.TrimSpace(username),
		PasswordHash: hash,
		Role:         crypto.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, &u); err != nil {
		return User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// Login checks the credentials and issues an access token.
func (s *Service) Login(ctx context.Context, email, password string) (string, User, error) {
	u, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, apperr.ErrNotFound) {
		return "", User{}, apperr.Unauthorized("invalid email or password")
	}
	if err != nil {
		return "", User{}, err
	}
	if !crypto.VerifyPassword(u.PasswordHash, password) {
		return "", User{}, apperr.Unauthorized("invalid email or password")
	}

	token, err := crypto.GenerateToken(s.jwtSecret, u.ID, u.Role, s.tokenTTL)
	if err != nil {
		return "", User{}, fmt.Errorf("issue token: %w", err)
	}
	return token, u, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (User, error) {
	if uuid.Validate(id) != nil {
		return User{}, apperr.NotFound("user", id)
	}
	return s.repo.GetByID(ctx, id)
}

// UpdateProfile applies upd to user id. Only the user themself or an admin
// may edit a profile.
func (s *Service) UpdateProfile(ctx context.Context, id, requesterID, requesterRole string, upd ProfileUpdate) (User, error) {
	if requesterID == "" {
		return User{}, apperr.Unauthorized("authentication required")
	}
	if requesterID != id && requesterRole != crypto.RoleAdmin {
		return User{}, apperr.Forbidden("not authorized to update this profile")
	}
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}

	if upd.Username != nil {
		u.Username = strings.TrimSpace(*upd.Username)
	}
	if upd.Email != nil {
		u.Email = strings.ToLower(strings.TrimSpace(*upd.Email))
	}
	if upd.ProfilePicture != nil {
		u.ProfilePicture = strings.TrimSpace(*upd.ProfilePicture)
	}
	u.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, &u); err != nil {
		return User{}, fmt.Errorf("update user: %w", err)
	}
	return u, nil
}
