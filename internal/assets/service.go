// Package assets owns every mutation of an asset record. All higher-level
// workflows funnel through ApplyUpdate so each change lands with a uniform
// activity-log entry; the manager itself never checks cross-entity
// consistency, that discipline stays with the callers.
package assets

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/satrianet/inventaris-backend/internal/store"
	"github.com/satrianet/inventaris-backend/pkg/docnum"
	"github.com/satrianet/inventaris-backend/pkg/enums"
	pkgerrors "github.com/satrianet/inventaris-backend/pkg/errors"
	"github.com/satrianet/inventaris-backend/pkg/logger"
	"github.com/satrianet/inventaris-backend/pkg/models"
	"github.com/satrianet/inventaris-backend/pkg/validate"
	"github.com/shopspring/decimal"
)

// Service is the asset lifecycle manager.
type Service struct {
	assets    *store.Collection[models.Asset]
	logg      *logger.Logger
	warehouse string
	now       func() time.Time
}

// NewService builds the lifecycle manager. warehouseLocation is the storage
// location stamped on assets returning to stock.
func NewService(assets *store.Collection[models.Asset], logg *logger.Logger, warehouseLocation string, now func() time.Time) (*Service, error) {
	if assets == nil {
		return nil, fmt.Errorf("assets collection required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if warehouseLocation == "" {
		return nil, fmt.Errorf("warehouse location required")
	}
	if now == nil {
		now = time.Now
	}
	return &Service{assets: assets, logg: logg, warehouse: warehouseLocation, now: now}, nil
}

// Warehouse returns the configured storage location name.
func (s *Service) Warehouse() string {
	return s.warehouse
}

// Patch is a field-level update. Callers must pass the complete set of
// fields that change together (status, current user and location as one
// patch); there is no locking, atomicity is caller discipline.
type Patch struct {
	Status    *enums.AssetStatus
	Condition *enums.AssetCondition
	// CurrentUser set to a pointer to "" clears the assignment.
	CurrentUser   *string
	Location      *string
	SerialNumber  *string
	MACAddress    *string
	IsDismantled  *bool
	DismantleInfo *models.DismantleInfo
}

// LogEntry describes the activity-log line appended alongside a patch.
type LogEntry struct {
	User        string
	Action      string
	Details     string
	ReferenceID string
}

// ApplyUpdate applies the patch to the asset and, when entry is given,
// appends one activity-log line. It is the single mutation funnel.
func (s *Service) ApplyUpdate(ctx context.Context, assetID string, patch Patch, entry *LogEntry) (*models.Asset, error) {
	if assetID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "asset id required")
	}
	if patch.Status != nil && !patch.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid asset status")
	}
	if patch.Condition != nil && !patch.Condition.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid asset condition")
	}

	items, err := s.assets.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load assets")
	}
	idx := -1
	for i := range items {
		if items[i].ID == assetID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "asset not found")
	}

	asset := &items[idx]
	applyPatch(asset, patch)
	if entry != nil {
		asset.ActivityLog = append(asset.ActivityLog, models.ActivityLogEntry{
			ID:          uuid.New(),
			Timestamp:   s.now(),
			User:        entry.User,
			Action:      entry.Action,
			Details:     entry.Details,
			ReferenceID: entry.ReferenceID,
		})
	}

	if err := s.assets.Replace(ctx, items); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save assets")
	}

	s.logg.Info(s.logg.WithAssetID(ctx, assetID), "asset updated")
	updated := *asset
	return &updated, nil
}

func applyPatch(asset *models.Asset, patch Patch) {
	if patch.Status != nil {
		asset.Status = *patch.Status
	}
	if patch.Condition != nil {
		asset.Condition = *patch.Condition
	}
	if patch.CurrentUser != nil {
		asset.CurrentUser = *patch.CurrentUser
	}
	if patch.Location != nil {
		asset.Location = *patch.Location
	}
	if patch.SerialNumber != nil {
		asset.SerialNumber = *patch.SerialNumber
	}
	if patch.MACAddress != nil {
		asset.MACAddress = *patch.MACAddress
	}
	if patch.IsDismantled != nil {
		asset.IsDismantled = *patch.IsDismantled
	}
	if patch.DismantleInfo != nil {
		asset.DismantleInfo = patch.DismantleInfo
	}
}

// Create inserts a fully-formed asset and stamps its first activity-log
// entry. Used by procurement registration and manual registration; the id
// must already be assigned.
func (s *Service) Create(ctx context.Context, asset models.Asset, entry LogEntry) (*models.Asset, error) {
	if asset.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "asset id required")
	}
	if !asset.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid asset status")
	}

	items, err := s.assets.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load assets")
	}
	for i := range items {
		if items[i].ID == asset.ID {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "asset id already exists")
		}
	}

	asset.ActivityLog = append(asset.ActivityLog, models.ActivityLogEntry{
		ID:          uuid.New(),
		Timestamp:   s.now(),
		User:        entry.User,
		Action:      entry.Action,
		Details:     entry.Details,
		ReferenceID: entry.ReferenceID,
	})
	items = append(items, asset)

	if err := s.assets.Replace(ctx, items); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save assets")
	}

	s.logg.Info(s.logg.WithAssetID(ctx, asset.ID), "asset registered")
	return &asset, nil
}

// RegisterInput is a manual registration outside procurement.
type RegisterInput struct {
	Name          string          `json:"name" validate:"required"`
	Brand         string          `json:"brand" validate:"required"`
	Category      string          `json:"category" validate:"required"`
	Type          string          `json:"type" validate:"required"`
	SerialNumber  string          `json:"serialNumber"`
	MACAddress    string          `json:"macAddress"`
	PurchasePrice decimal.Decimal `json:"purchasePrice"`
	Vendor        string          `json:"vendor"`
	PONumber      string          `json:"poNumber"`
	Quantity      decimal.Decimal `json:"quantity"`
	RegisteredBy  string          `json:"registeredBy" validate:"required"`
}

// Register creates a brand-new in-storage asset from a manual entry.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*models.Asset, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	ids, err := s.assets.IDs(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load assets")
	}

	asset := models.Asset{
		ID:            docnum.Next(docnum.PrefixAsset, ids, s.now()),
		SerialNumber:  input.SerialNumber,
		MACAddress:    input.MACAddress,
		Category:      input.Category,
		Type:          input.Type,
		Brand:         input.Brand,
		Name:          input.Name,
		PurchasePrice: input.PurchasePrice,
		Vendor:        input.Vendor,
		PONumber:      input.PONumber,
		Quantity:      input.Quantity,
		Status:        enums.AssetStatusInStorage,
		Condition:     enums.AssetConditionBrandNew,
		Location:      s.warehouse,
	}
	return s.Create(ctx, asset, LogEntry{
		User:   input.RegisteredBy,
		Action: "registered",
		Details: fmt.Sprintf("manually registered %s %s", input.Brand, input.Name),
	})
}

// Decommission retires an asset permanently. Assets are never deleted.
func (s *Service) Decommission(ctx context.Context, assetID, actor, reason string) (*models.Asset, error) {
	if actor == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actor required")
	}
	asset, err := s.Get(ctx, assetID)
	if err != nil {
		return nil, err
	}
	if asset.Status == enums.AssetStatusDecommissioned {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "asset already decommissioned")
	}
	if asset.Status == enums.AssetStatusInUse {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "asset still assigned; retrieve it before decommissioning")
	}

	status := enums.AssetStatusDecommissioned
	empty := ""
	return s.ApplyUpdate(ctx, assetID, Patch{
		Status:      &status,
		CurrentUser: &empty,
	}, &LogEntry{
		User:    actor,
		Action:  "decommissioned",
		Details: reason,
	})
}

// Get returns one asset.
func (s *Service) Get(ctx context.Context, assetID string) (*models.Asset, error) {
	if assetID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "asset id required")
	}
	items, err := s.assets.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load assets")
	}
	for i := range items {
		if items[i].ID == assetID {
			asset := items[i]
			return &asset, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "asset not found")
}

// List returns the full asset collection.
func (s *Service) List(ctx context.Context) ([]models.Asset, error) {
	items, err := s.assets.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load assets")
	}
	return items, nil
}
