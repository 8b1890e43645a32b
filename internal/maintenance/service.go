// Package maintenance implements customer-site service visits. A visit may
// replace assets (retire one into storage, commission another under the
// customer) and consume bulk materials, rolling the customer's
// installed-materials ledger forward. The cascade runs as an explicit
// transaction script so it is testable apart from any form.
package maintenance

import (
	"context"
	"fmt"
	"time"

	"github.com/satrianet/inventaris-backend/internal/assets"
	"github.com/satrianet/inventaris-backend/internal/stock"
	"github.com/satrianet/inventaris-backend/internal/store"
	"github.com/satrianet/inventaris-backend/pkg/docnum"
	"github.com/satrianet/inventaris-backend/pkg/enums"
	pkgerrors "github.com/satrianet/inventaris-backend/pkg/errors"
	"github.com/satrianet/inventaris-backend/pkg/logger"
	"github.com/satrianet/inventaris-backend/pkg/models"
	"github.com/satrianet/inventaris-backend/pkg/validate"
)

type assetLifecycle interface {
	Get(ctx context.Context, assetID string) (*models.Asset, error)
	ApplyUpdate(ctx context.Context, assetID string, patch assets.Patch, entry *assets.LogEntry) (*models.Asset, error)
	Warehouse() string
}

// Service runs the maintenance workflow.
type Service struct {
	maintenances *store.Collection[models.Maintenance]
	customers    *store.Collection[models.Customer]
	categories   *store.Collection[models.AssetCategory]
	lifecycle    assetLifecycle
	logg         *logger.Logger
	now          func() time.Time
}

// NewService builds the maintenance workflow service.
func NewService(
	maintenances *store.Collection[models.Maintenance],
	customers *store.Collection[models.Customer],
	categories *store.Collection[models.AssetCategory],
	lifecycle assetLifecycle,
	logg *logger.Logger,
	now func() time.Time,
) (*Service, error) {
	if maintenances == nil {
		return nil, fmt.Errorf("maintenance collection required")
	}
	if customers == nil {
		return nil, fmt.Errorf("customers collection required")
	}
	if categories == nil {
		return nil, fmt.Errorf("categories collection required")
	}
	if lifecycle == nil {
		return nil, fmt.Errorf("asset lifecycle required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if now == nil {
		now = time.Now
	}
	return &Service{
		maintenances: maintenances,
		customers:    customers,
		categories:   categories,
		lifecycle:    lifecycle,
		logg:         logg,
		now:          now,
	}, nil
}

// SaveInput describes one service visit.
type SaveInput struct {
	CustomerID      string                    `json:"customerId" validate:"required"`
	Technician      string                    `json:"technician" validate:"required"`
	AssetIDs        []string                  `json:"assetIds"`
	WorkDescription string                    `json:"workDescription"`
	MaterialsUsed   []models.MaterialUsage    `json:"materialsUsed"`
	Replacements    []models.AssetReplacement `json:"replacements"`
	Attachments     []string                  `json:"attachments"`
	// Completed files the record as done immediately (the admin entry
	// point), applying all side effects now. Otherwise the record stays
	// in_progress until Complete is called.
	Completed bool `json:"completed"`
}

// Save files a maintenance record. When Completed is set, the asset
// replacements and the customer ledger update happen in the same turn.
func (s *Service) Save(ctx context.Context, input SaveInput) (*models.Maintenance, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}
	if _, err := s.customer(ctx, input.CustomerID); err != nil {
		return nil, err
	}
	for _, usage := range input.MaterialsUsed {
		if !usage.Quantity.IsPositive() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "material quantity must be positive")
		}
	}

	ids, err := s.maintenances.IDs(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load maintenances")
	}

	record := models.Maintenance{
		DocNumber:       docnum.Next(docnum.PrefixMaintenance, ids, s.now()),
		Date:            s.now(),
		CustomerID:      input.CustomerID,
		Technician:      input.Technician,
		AssetIDs:        input.AssetIDs,
		WorkDescription: input.WorkDescription,
		MaterialsUsed:   input.MaterialsUsed,
		Replacements:    input.Replacements,
		Attachments:     input.Attachments,
		Status:          enums.ItemStatusInProgress,
	}

	if input.Completed {
		if err := s.apply(ctx, &record); err != nil {
			return nil, err
		}
		when := s.now()
		record.Status = enums.ItemStatusCompleted
		record.CompletedBy = input.Technician
		record.CompletionDate = &when
	}

	if err := s.maintenances.Upsert(ctx, record); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save maintenance")
	}
	s.logg.Info(s.logg.WithDocNumber(ctx, record.DocNumber), "maintenance saved")
	return &record, nil
}

// Complete finishes an in-progress visit, applying its side effects.
func (s *Service) Complete(ctx context.Context, docNumber, completedBy string) (*models.Maintenance, error) {
	if completedBy == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "acknowledger required")
	}
	record, err := s.get(ctx, docNumber)
	if err != nil {
		return nil, err
	}
	if record.Status != enums.ItemStatusInProgress {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "completion requires an in-progress maintenance")
	}

	if err := s.apply(ctx, record); err != nil {
		return nil, err
	}
	when := s.now()
	record.Status = enums.ItemStatusCompleted
	record.CompletedBy = completedBy
	record.CompletionDate = &when
	if err := s.maintenances.Upsert(ctx, *record); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save maintenance")
	}
	s.logg.Info(s.logg.WithDocNumber(ctx, record.DocNumber), "maintenance completed")
	return record, nil
}

// apply runs the cross-entity cascade: replacements through the lifecycle
// manager, materials into the customer ledger. Replacements are validated
// up front so a bad pair leaves every asset untouched.
func (s *Service) apply(ctx context.Context, record *models.Maintenance) error {
	seen := make(map[string]bool)
	for _, replacement := range record.Replacements {
		if !replacement.RetrievedAssetCondition.IsValid() {
			return pkgerrors.New(pkgerrors.CodeValidation, "invalid retrieved condition")
		}
		for _, assetID := range []string{replacement.OldAssetID, replacement.NewAssetID} {
			if seen[assetID] {
				return pkgerrors.New(pkgerrors.CodeValidation,
					fmt.Sprintf("asset %s appears in more than one replacement", assetID))
			}
			seen[assetID] = true
		}
		oldAsset, err := s.lifecycle.Get(ctx, replacement.OldAssetID)
		if err != nil {
			return err
		}
		if oldAsset.Status != enums.AssetStatusInUse || oldAsset.CurrentUser != record.CustomerID {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("asset %s is not installed at customer %s", replacement.OldAssetID, record.CustomerID))
		}
		newAsset, err := s.lifecycle.Get(ctx, replacement.NewAssetID)
		if err != nil {
			return err
		}
		if newAsset.Status != enums.AssetStatusInStorage {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("replacement asset %s is not in storage", replacement.NewAssetID))
		}
	}

	for _, replacement := range record.Replacements {
		if err := s.swap(ctx, record, replacement); err != nil {
			return err
		}
	}
	if len(record.MaterialsUsed) > 0 {
		if err := s.recordMaterials(ctx, record); err != nil {
			return err
		}
	}
	return nil
}

// swap retires the old asset into storage and commissions the new one under
// the customer, with linked log entries referencing the visit.
func (s *Service) swap(ctx context.Context, record *models.Maintenance, replacement models.AssetReplacement) error {
	inStorage := enums.AssetStatusInStorage
	inUse := enums.AssetStatusInUse
	condition := replacement.RetrievedAssetCondition
	empty := ""
	warehouse := s.lifecycle.Warehouse()
	customer := record.CustomerID
	site := "customer " + record.CustomerID

	if _, err := s.lifecycle.ApplyUpdate(ctx, replacement.OldAssetID, assets.Patch{
		Status:      &inStorage,
		Condition:   &condition,
		CurrentUser: &empty,
		Location:    &warehouse,
	}, &assets.LogEntry{
		User:        record.Technician,
		Action:      "replaced_out",
		Details:     fmt.Sprintf("replaced by %s during maintenance", replacement.NewAssetID),
		ReferenceID: record.DocNumber,
	}); err != nil {
		return err
	}

	_, err := s.lifecycle.ApplyUpdate(ctx, replacement.NewAssetID, assets.Patch{
		Status:      &inUse,
		CurrentUser: &customer,
		Location:    &site,
	}, &assets.LogEntry{
		User:        record.Technician,
		Action:      "replaced_in",
		Details:     fmt.Sprintf("installed replacing %s", replacement.OldAssetID),
		ReferenceID: record.DocNumber,
	})
	return err
}

// recordMaterials rolls the consumed bulk materials into the customer's
// installed-materials ledger: increment the matching (itemName, brand) line
// or append a new one with the unit resolved from the bulk catalog.
func (s *Service) recordMaterials(ctx context.Context, record *models.Maintenance) error {
	customers, err := s.customers.List(ctx)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customers")
	}
	idx := -1
	for i := range customers {
		if customers[i].ID == record.CustomerID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
	}

	categories, err := s.categories.List(ctx)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load categories")
	}

	customer := &customers[idx]
	for _, usage := range record.MaterialsUsed {
		if line := customer.Material(usage.ItemName, usage.Brand); line != nil {
			line.Quantity = line.Quantity.Add(usage.Quantity)
			continue
		}
		customer.InstalledMaterials = append(customer.InstalledMaterials, models.InstalledMaterial{
			ItemName: usage.ItemName,
			Brand:    usage.Brand,
			Quantity: usage.Quantity,
			Unit:     stock.ResolveUnit(categories, usage.ItemName),
		})
	}

	if err := s.customers.Replace(ctx, customers); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save customers")
	}
	return nil
}

// Get returns one maintenance record.
func (s *Service) Get(ctx context.Context, docNumber string) (*models.Maintenance, error) {
	return s.get(ctx, docNumber)
}

// List returns all maintenance records.
func (s *Service) List(ctx context.Context) ([]models.Maintenance, error) {
	items, err := s.maintenances.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load maintenances")
	}
	return items, nil
}

func (s *Service) get(ctx context.Context, docNumber string) (*models.Maintenance, error) {
	if docNumber == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "doc number required")
	}
	items, err := s.maintenances.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load maintenances")
	}
	for i := range items {
		if items[i].DocNumber == docNumber {
			record := items[i]
			return &record, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "maintenance not found")
}

func (s *Service) customer(ctx context.Context, customerID string) (*models.Customer, error) {
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
