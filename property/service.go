package property

import (
	"context"
	"errors"
	"fmt"
)

// ErrInvalidInput signals missing or malformed listing data.
var ErrInvalidInput = errors.New("property: invalid input")

// Service handles listing business logic. Ownership checks live in the HTTP
// layer, which knows the caller; this layer validates shape only.
type Service struct {
	repo Repository
}

// NewService creates a new listing service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create validates and persists a new listing owned by the given user.
func (s *Service) Create(ctx context.Context, params CreateParams) (Property, error) {
	if params.UserID == "" {
		return Property{}, fmt.Errorf("%w: owner is required", ErrInvalidInput)
	}
	if params.Title == "" {
		return Property{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if params.Price < 0 {
		return Property{}, fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
	}
	if params.Bedrooms < 0 || params.Bathrooms < 0 || params.Area < 0 {
		return Property{}, fmt.Errorf("%w: rooms and area must not be negative", ErrInvalidInput)
	}

	if params.Status == "" {
		params.Status = StatusActive
	}
	if !isValidStatus(params.Status) {
		return Property{}, fmt.Errorf("%w: invalid status %q", ErrInvalidInput, params.Status)
	}
	if params.Features == nil {
		params.Features = []string{}
	}
	if params.Images == nil {
		params.Images = []string{}
	}

	return s.repo.Create(ctx, params)
}

// GetAll returns every listing, newest first.
func (s *Service) GetAll(ctx context.Context) ([]Property, error) {
	return s.repo.GetAll(ctx)
}

// GetByID returns one listing with owner contact details.
func (s *Service) GetByID(ctx context.Context, id string) (Property, error) {
	return s.repo.GetByID(ctx, id)
}

// FindByUserID returns the given owner's listings.
func (s *Service) FindByUserID(ctx context.Context, userID string) ([]Property, error) {
	return s.repo.FindByUserID(ctx, userID)
}

// FindAllActive returns listings still on the market.
func (s *Service) FindAllActive(ctx context.Context) ([]Property, error) {
	return s.repo.FindAllActive(ctx)
}

// Update validates and replaces a listing's mutable fields.
func (s *Service) Update(ctx context.Context, id string, params UpdateParams) (Property, error) {
	if params.Title == "" {
		return Property{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if params.Price < 0 {
		return Property{}, fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
	}
	if params.Status == "" {
		params.Status = StatusActive
	}
	if !isValidStatus(params.Status) {
		return Property{}, fmt.Errorf("%w: invalid status %q", ErrInvalidInput, params.Status)
	}
	if params.Features == nil {
		params.Features = []string{}
	}
	if params.Images == nil {
		params.Images = []string{}
	}

	return s.repo.Update(ctx, id, params)
}

// Delete removes a listing.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// AddImages appends storage paths to a listing.
func (s *Service) AddImages(ctx context.Context, id string, images []string) (Property, error) {
	if len(images) == 0 {
		return Property{}, fmt.Errorf("%w: no images supplied", ErrInvalidInput)
	}
	return s.repo.AddImages(ctx, id, images)
}
