// Package customers manages subscriber records and guards their deletion
// against assets still installed at the premises.
package customers

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

// Service manages customer records.
type Service struct {
	customers *store.Collection[models.Customer]
	assets    *store.Collection[models.Asset]
	logg      *logger.Logger
}

// NewService builds the customer service.
func NewService(customers *store.Collection[models.Customer], assetCollection *store.Collection[models.Asset], logg *logger.Logger) (*Service, error) {
	if customers == nil {
		return nil, fmt.Errorf("customers collection required")
	}
	if assetCollection == nil {
		return nil, fmt.Errorf("assets collection required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Service{customers: customers, assets: assetCollection, logg: logg}, nil
}

// UpsertInput creates or updates a customer. The installed-materials ledger
// is never edited through here; only the workflows append to it.
type UpsertInput struct {
	ID      string `json:"id" validate:"required"`
	Name    string `json:"name" validate:"required"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}

// Upsert creates or updates the customer's contact fields.
func (s *Service) Upsert(ctx context.Context, input UpsertInput) (*models.Customer, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	existing, err := s.customers.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customers")
	}

	customer := models.Customer{
		ID:      input.ID,
		Name:    input.Name,
		Address: input.Address,
		Phone:   input.Phone,
		Email:   input.Email,
	}
	for i := range existing {
		if existing[i].ID == input.ID {
			customer.InstalledMaterials = existing[i].InstalledMaterials
			break
		}
	}

	if err := s.customers.Upsert(ctx, customer); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save customer")
	}
	s.logg.Info(ctx, "customer saved")
	return &customer, nil
}

// Delete removes a customer unless assets are still installed there, in
// which case the blocking count comes back so the caller can display
// "N assets still linked".
func (s *Service) Delete(ctx context.Context, customerID string) error {
	if customerID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}

	allAssets, err := s.assets.List(ctx)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load assets")
	}
	blocking := 0
	for _, asset := range allAssets {
		if asset.Status == enums.AssetStatusInUse && asset.CurrentUser == customerID {
			blocking++
		}
	}
	if blocking > 0 {
		return pkgerrors.ReferenceConflict("customer still has installed assets", blocking)
	}

	found, err := s.customers.Delete(ctx, customerID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete customer")
	}
	if !found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
	}
	s.logg.Info(ctx, "customer deleted")
	return nil
}

// Get returns one customer.
func (s *Service) Get(ctx context.Context, customerID string) (*models.Customer, error) {
	if customerID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	customers, err := s.customers.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customers")
	}
	for i := range customers {
		if customers[i].ID == customerID {
			customer := customers[i]
			return &customer, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
}

// List returns all customers.
func (s *Service) List(ctx context.Context) ([]models.Customer, error) {
	customers, err := s.customers.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customers")
	}
	return customers, nil
}
