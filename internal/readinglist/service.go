package readinglist

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"bookreview/internal/httpx"
	"bookreview/internal/platform/apperr"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Add puts bookID on the requester's own list.
func (s *Service) Add(ctx context.Context, userID, requesterID, bookID string) error {
	if err := ownList(userID, requesterID); err != nil {
		return err
	}
	if err := validateIDs(userID, bookID); err != nil {
		return err
	}
	if err := s.repo.Add(ctx, userID, bookID); err != nil {
		return fmt.Errorf("add favorite: %w", err)
	}
	return nil
}

// Remove takes bookID off the requester's own list. Removing a book that is
// not listed succeeds.
func (s *Service) Remove(ctx context.Context, userID, requesterID, bookID string) error {
	if err := ownList(userID, requesterID); err != nil {
		return err
	}
	if err := validateIDs(userID, bookID); err != nil {
		return err
	}
	if err := s.repo.Remove(ctx, userID, bookID); err != nil {
		return fmt.Errorf("remove favorite: %w", err)
	}
	return nil
}

// List returns one page of a user's favorites, most recently added first.
func (s *Service) List(ctx context.Context, userID string, page, pageSize int) ([]Entry, int, error) {
	if uuid.Validate(userID) != nil {
		return nil, 0, apperr.NotFound("user", userID)
	}
	p := httpx.NormalizePage(page, pageSize)
	entries, total, err := s.repo.List(ctx, userID, p.Size, p.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list favorites: %w", err)
	}
	return entries, total, nil
}

func ownList(userID, requesterID string) error {
	if requesterID == "" {
		return apperr.Unauthorized("authentication required")
	}
	if userID != requesterID {
		return apperr.Forbidden("not authorized to modify favorites")
	}
	return nil
}
