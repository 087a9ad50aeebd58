package dto

import (
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
)

// RegisterAssetRequest payload.
type RegisterAssetRequest struct {
	Name   string `json:"name"`
	Serial string `json:"serial"`
}

// AssetResponse is the wire view of an asset.
type AssetResponse struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Name      string    `json:"name"`
	Serial    string    `json:"serial,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewAssetResponse maps a domain asset to its wire view.
func NewAssetResponse(asset *domain.Asset) AssetResponse {
	return AssetResponse{
		ID:        asset.ID,
		OwnerID:   asset.OwnerID,
		Name:      asset.Name,
		Serial:    asset.Serial,
		CreatedAt: asset.CreatedAt,
	}
}
