package service

import (
	"context"
	"strings"

	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository"
	apperrors "github.com/spec-kit/support-desk/pkg/util"
)

// AssetService manages asset registration for authenticated users.
type AssetService struct {
	assets repository.AssetRepository
}

// NewAssetService constructs the service.
func NewAssetService(assets repository.AssetRepository) *AssetService {
	return &AssetService{assets: assets}
}

// Register records an asset owned by the principal.
func (s *AssetService) Register(ctx context.Context, principal *auth.Principal, name, serial string) (*domain.Asset, error) {
	if principal == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	if strings.TrimSpace(name) == "" {
		return nil, apperrors.NewValidationError("invalid asset payload", map[string]any{"name": "name is required"})
	}

	asset := &domain.Asset{
		OwnerID: principal.SubjectID,
		Name:    strings.TrimSpace(name),
		Serial:  strings.TrimSpace(serial),
	}
	if err := s.assets.Create(ctx, asset); err != nil {
		return nil, apperrors.MapError(err)
	}
	return asset, nil
}

// ListOwn returns the principal's registered assets.
func (s *AssetService) ListOwn(ctx context.Context, principal *auth.Principal) ([]domain.Asset, error) {
	if principal == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	assets, err := s.assets.ListByOwner(ctx, principal.SubjectID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if assets == nil {
		assets = []domain.Asset{}
	}
	return assets, nil
}
