package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/Swevix/WebRGZ/types"
)

// ReferenceService encapsulates manufacturer and tag reference data.
// Reads are public; writes are an administrator concern enforced at
// the transport layer.
type ReferenceService struct {
	repo ReferenceRepository
}

func NewReferenceService(repo ReferenceRepository) *ReferenceService {
	return &ReferenceService{repo: repo}
}

func (s *ReferenceService) ListManufacturers(ctx context.Context) ([]types.Manufacturer, error) {
	return s.repo.ListManufacturers(ctx)
}

func (s *ReferenceService) CreateManufacturer(ctx context.Context, name, country string) (types.Manufacturer, error) {
	name = strings.TrimSpace(name)
	country = strings.TrimSpace(country)
	if name == "" || country == "" {
		return types.Manufacturer{}, fmt.Errorf("%w: manufacturer name and country are required", ErrValidation)
	}
	return s.repo.CreateManufacturer(ctx, types.Manufacturer{Name: name, Country: country})
}

func (s *ReferenceService) ListTags(ctx context.Context) ([]types.Tag, error) {
	return s.repo.ListTags(ctx)
}

func (s *ReferenceService) CreateTag(ctx context.Context, name string) (types.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return types.Tag{}, fmt.Errorf("%w: tag name is required", ErrValidation)
	}
	return s.repo.CreateTag(ctx, types.Tag{Name: name})
}
