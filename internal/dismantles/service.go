// Package dismantles implements asset retrieval from customer premises back
// to warehouse stock. A record stays in_progress until the warehouse
// acknowledges; until then it represents an asset state not yet reconciled,
// which is why bulk deletion refuses in-progress records.
package dismantles

import (
	"context"
	"fmt"
	"time"

	"github.com/satrianet/inventaris-backend/internal/assets"
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

// Service runs the dismantle workflow.
type Service struct {
	dismantles *store.Collection[models.Dismantle]
	lifecycle  assetLifecycle
	logg       *logger.Logger
	now        func() time.Time
}

// NewService builds the dismantle workflow service.
func NewService(dismantles *store.Collection[models.Dismantle], lifecycle assetLifecycle, logg *logger.Logger, now func() time.Time) (*Service, error) {
	if dismantles == nil {
		return nil, fmt.Errorf("dismantle collection required")
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
	return &Service{dismantles: dismantles, lifecycle: lifecycle, logg: logg, now: now}, nil
}

// CreateInput describes a retrieval of one asset from one customer.
type CreateInput struct {
	AssetID            string               `json:"assetId" validate:"required"`
	CustomerID         string               `json:"customerId" validate:"required"`
	Technician         string               `json:"technician" validate:"required"`
	RetrievedCondition enums.AssetCondition `json:"retrievedCondition" validate:"required"`
	Notes              string               `json:"notes"`
	Attachments        []string             `json:"attachments"`
}

// Create files a dismantle for an asset currently installed at the customer.
func (s *Service) Create(ctx context.Context, input CreateInput) (*models.Dismantle, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}
	if !input.RetrievedCondition.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid retrieved condition")
	}

	asset, err := s.lifecycle.Get(ctx, input.AssetID)
	if err != nil {
		return nil, err
	}
	if asset.Status != enums.AssetStatusInUse {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "asset is not in use")
	}
	if asset.CurrentUser != input.CustomerID {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "asset is not installed at this customer")
	}

	ids, err := s.dismantles.IDs(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load dismantles")
	}

	dismantle := models.Dismantle{
		DocNumber:          docnum.Next(docnum.PrefixDismantle, ids, s.now()),
		Date:               s.now(),
		AssetID:            input.AssetID,
		CustomerID:         input.CustomerID,
		Technician:         input.Technician,
		RetrievedCondition: input.RetrievedCondition,
		Notes:              input.Notes,
		Attachments:        input.Attachments,
		Status:             enums.ItemStatusInProgress,
	}
	if err := s.dismantles.Upsert(ctx, dismantle); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save dismantle")
	}
	s.logg.Info(s.logg.WithDocNumber(ctx, dismantle.DocNumber), "dismantle created")
	return &dismantle, nil
}

// Complete is the warehouse acknowledgement: the asset returns to storage
// with the retrieved condition and its dismantle provenance, in one atomic
// patch with exactly one log entry.
func (s *Service) Complete(ctx context.Context, docNumber, acknowledger string) (*models.Dismantle, error) {
	if acknowledger == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "acknowledger required")
	}
	dismantle, err := s.get(ctx, docNumber)
	if err != nil {
		return nil, err
	}
	if dismantle.Status != enums.ItemStatusInProgress {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "completion requires an in-progress dismantle")
	}

	status := enums.AssetStatusInStorage
	condition := dismantle.RetrievedCondition
	empty := ""
	warehouse := s.lifecycle.Warehouse()
	dismantled := true
	if _, err := s.lifecycle.ApplyUpdate(ctx, dismantle.AssetID, assets.Patch{
		Status:       &status,
		Condition:    &condition,
		CurrentUser:  &empty,
		Location:     &warehouse,
		IsDismantled: &dismantled,
		DismantleInfo: &models.DismantleInfo{
			DocNumber:  dismantle.DocNumber,
			CustomerID: dismantle.CustomerID,
			Technician: dismantle.Technician,
			Date:       s.now(),
		},
	}, &assets.LogEntry{
		User:        acknowledger,
		Action:      "dismantled",
		Details:     fmt.Sprintf("retrieved from customer %s", dismantle.CustomerID),
		ReferenceID: dismantle.DocNumber,
	}); err != nil {
		return nil, err
	}

	when := s.now()
	dismantle.Status = enums.ItemStatusCompleted
	dismantle.Acknowledger = acknowledger
	dismantle.CompletionDate = &when
	if err := s.dismantles.Upsert(ctx, *dismantle); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save dismantle")
	}
	s.logg.Info(s.logg.WithDocNumber(ctx, dismantle.DocNumber), "dismantle completed")
	return dismantle, nil
}

// BulkResult reports a partial bulk operation: ineligible members are
// skipped, never failed wholesale.
type BulkResult struct {
	Processed int
	Skipped   int
}

// BulkDelete purges the given dismantle records. In-progress records are
// skipped: they represent assets not yet reconciled in storage. Unknown doc
// numbers also count as skipped.
func (s *Service) BulkDelete(ctx context.Context, docNumbers []string) (BulkResult, error) {
	if len(docNumbers) == 0 {
		return BulkResult{}, pkgerrors.New(pkgerrors.CodeValidation, "no documents given")
	}

	items, err := s.dismantles.List(ctx)
	if err != nil {
		return BulkResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load dismantles")
	}
	byDoc := make(map[string]models.Dismantle, len(items))
	for _, item := range items {
		byDoc[item.DocNumber] = item
	}

	var result BulkResult
	remove := make(map[string]bool)
	for _, docNumber := range docNumbers {
		dismantle, ok := byDoc[docNumber]
		if !ok || dismantle.Status == enums.ItemStatusInProgress {
			result.Skipped++
			continue
		}
		remove[docNumber] = true
		result.Processed++
	}

	if len(remove) > 0 {
		kept := items[:0]
		for _, item := range items {
			if !remove[item.DocNumber] {
				kept = append(kept, item)
			}
		}
		if err := s.dismantles.Replace(ctx, kept); err != nil {
			return BulkResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save dismantles")
		}
	}

	s.logg.Info(ctx, fmt.Sprintf("bulk delete: %d purged, %d skipped", result.Processed, result.Skipped))
	return result, nil
}

// Get returns one dismantle record.
func (s *Service) Get(ctx context.Context, docNumber string) (*models.Dismantle, error) {
	return s.get(ctx, docNumber)
}

// List returns all dismantle records.
func (s *Service) List(ctx context.Context) ([]models.Dismantle, error) {
	items, err := s.dismantles.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load dismantles")
	}
	return items, nil
}

func (s *Service) get(ctx context.Context, docNumber string) (*models.Dismantle, error) {
	if docNumber == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "doc number required")
	}
	items, err := s.dismantles.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load dismantles")
	}
	for i := range items {
		if items[i].DocNumber == docNumber {
			dismantle := items[i]
			return &dismantle, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "dismantle not found")
}
