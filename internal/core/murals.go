package core

import (
	"context"
	"fmt"

	"github.com/jo-hoe/muralfolio/internal/backend/database"
)

// MuralInput is the admin add-mural payload. IsActive defaults to true when unset.
type MuralInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
	Media       []string `json:"media"`
	Year        *int     `json:"year,omitempty"`
	IsActive    *bool    `json:"is_active,omitempty"`
}

func (service *CoreService) ListMurals(ctx context.Context, activeOnly bool) ([]*database.Mural, error) {
	murals, err := service.databaseService.GetMurals(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list murals: %w", err)
	}
	return murals, nil
}

func (service *CoreService) CreateMural(ctx context.Context, input MuralInput) (*database.Mural, error) {
	if err := validateMural(input); err != nil {
		return nil, err
	}

	mural := &database.Mural{
		Title:       input.Title,
		Description: input.Description,
		Latitude:    input.Latitude,
		Longitude:   input.Longitude,
		Media:       input.Media,
		IsActive:    input.IsActive == nil || *input.IsActive,
	}
	if input.Year != nil && *input.Year != 0 {
		year := *input.Year
		mural.Year = &year
	}

	created, err := service.databaseService.CreateMural(ctx, mural)
	if err != nil {
		return nil, fmt.Errorf("failed to create mural: %w", err)
	}
	return created, nil
}
