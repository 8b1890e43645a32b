// Package catalog manages the asset categories and types the stock is
// classified under, including the bulk-material unit conversions. Deleting a
// category or type still referenced by assets is refused with the blocking
// count.
package catalog

import (
	"context"
	"fmt"

	"github.com/satrianet/inventaris-backend/internal/store"
	"github.com/satrianet/inventaris-backend/pkg/enums"
	pkgerrors "github.com/satrianet/inventaris-backend/pkg/errors"
	"github.com/satrianet/inventaris-backend/pkg/logger"
	"github.com/satrianet/inventaris-backend/pkg/models"
	"github.com/satrianet/inventaris-backend/pkg/validate"
)

// Service manages the asset catalog.
type Service struct {
	categories *store.Collection[models.AssetCategory]
	assets     *store.Collection[models.Asset]
	logg       *logger.Logger
}

// NewService builds the catalog service.
func NewService(categories *store.Collection[models.AssetCategory], assetCollection *store.Collection[models.Asset], logg *logger.Logger) (*Service, error) {
	if categories == nil {
		return nil, fmt.Errorf("categories collection required")
	}
	if assetCollection == nil {
		return nil, fmt.Errorf("assets collection required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Service{categories: categories, assets: assetCollection, logg: logg}, nil
}

// UpsertCategoryInput creates or renames a category.
type UpsertCategoryInput struct {
	ID   string `json:"id" validate:"required"`
	Name string `json:"name" validate:"required"`
}

// UpsertCategory creates or updates a category, keeping its types.
func (s *Service) UpsertCategory(ctx context.Context, input UpsertCategoryInput) (*models.AssetCategory, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	existing, err := s.categories.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load categories")
	}
	category := models.AssetCategory{ID: input.ID, Name: input.Name}
	for i := range existing {
		if existing[i].ID == input.ID {
			category.Types = existing[i].Types
			break
		}
	}

	if err := s.categories.Upsert(ctx, category); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save category")
	}
	s.logg.Info(ctx, "category saved")
	return &category, nil
}

// UpsertType adds or updates a type under a category.
func (s *Service) UpsertType(ctx context.Context, categoryID string, assetType models.AssetType) (*models.AssetCategory, error) {
	if categoryID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category id required")
	}
	if assetType.ID == "" || assetType.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "type id and name required")
	}
	if !assetType.TrackingMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid tracking method")
	}
	if assetType.TrackingMethod == enums.TrackingMethodBulk && assetType.UnitOfMeasure == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "bulk types need a unit of measure")
	}

	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load categories")
	}
	for i := range categories {
		if categories[i].ID != categoryID {
			continue
		}
		replaced := false
		for j := range categories[i].Types {
			if categories[i].Types[j].ID == assetType.ID {
				categories[i].Types[j] = assetType
				replaced = true
				break
			}
		}
		if !replaced {
			categories[i].Types = append(categories[i].Types, assetType)
		}
		if err := s.categories.Replace(ctx, categories); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save categories")
		}
		category := categories[i]
		s.logg.Info(ctx, "asset type saved")
		return &category, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
}

// DeleteCategory removes a category unless assets still reference it.
func (s *Service) DeleteCategory(ctx context.Context, categoryID string) error {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load categories")
	}
	var target *models.AssetCategory
	for i := range categories {
		if categories[i].ID == categoryID {
			target = &categories[i]
			break
		}
	}
	if target == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
	}

	blocking, err := s.countAssets(ctx, func(a models.Asset) bool { return a.Category == target.Name })
	if err != nil {
		return err
	}
	if blocking > 0 {
		return pkgerrors.ReferenceConflict("category still referenced by assets", blocking)
	}

	if _, err := s.categories.Delete(ctx, categoryID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete category")
	}
	s.logg.Info(ctx, "category deleted")
	return nil
}

// DeleteType removes a type from its category unless assets still reference
// it.
func (s *Service) DeleteType(ctx context.Context, categoryID, typeID string) error {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load categories")
	}
	for i := range categories {
		if categories[i].ID != categoryID {
			continue
		}
		for j := range categories[i].Types {
			if categories[i].Types[j].ID != typeID {
				continue
			}
			typeName := categories[i].Types[j].Name
			blocking, err := s.countAssets(ctx, func(a models.Asset) bool { return a.Type == typeName })
			if err != nil {
				return err
			}
			if blocking > 0 {
				return pkgerrors.ReferenceConflict("type still referenced by assets", blocking)
			}

			categories[i].Types = append(categories[i].Types[:j], categories[i].Types[j+1:]...)
			if err := s.categories.Replace(ctx, categories); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save categories")
			}
			s.logg.Info(ctx, "asset type deleted")
			return nil
		}
		return pkgerrors.New(pkgerrors.CodeNotFound, "asset type not found")
	}
	return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
}

// List returns the whole catalog.
func (s *Service) List(ctx context.Context) ([]models.AssetCategory, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load categories")
	}
	return categories, nil
}

func (s *Service) countAssets(ctx context.Context, match func(models.Asset) bool) (int, error) {
	allAssets, err := s.assets.List(ctx)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load assets")
	}
	count := 0
	for _, asset := range allAssets {
		if match(asset) {
			count++
		}
	}
	return count, nil
}
