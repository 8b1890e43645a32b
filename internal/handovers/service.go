// Package handovers records internal chain-of-custody documents. A handover
// is the audit artifact of a transfer, deliberately not the mutation trigger:
// callers that create one from an approved loan or request transition the
// referenced assets themselves through the lifecycle manager. The same form
// serves ad hoc staff-to-staff transfers with no upstream workflow.
package handovers

import (
	"context"
	"fmt"
	"time"

	"github.com/satrianet/inventaris-backend/internal/store"
	"github.com/satrianet/inventaris-backend/pkg/docnum"
	"github.com/satrianet/inventaris-backend/pkg/enums"
	pkgerrors "github.com/satrianet/inventaris-backend/pkg/errors"
	"github.com/satrianet/inventaris-backend/pkg/logger"
	"github.com/satrianet/inventaris-backend/pkg/models"
	"github.com/satrianet/inventaris-backend/pkg/validate"
)

// Service manages handover documents.
type Service struct {
	handovers *store.Collection[models.Handover]
	logg      *logger.Logger
	now       func() time.Time
}

// NewService builds the handover service.
func NewService(handovers *store.Collection[models.Handover], logg *logger.Logger, now func() time.Time) (*Service, error) {
	if handovers == nil {
		return nil, fmt.Errorf("handover collection required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if now == nil {
		now = time.Now
	}
	return &Service{handovers: handovers, logg: logg, now: now}, nil
}

// CreateInput describes a new custody transfer.
type CreateInput struct {
	Sender      string                `json:"sender" validate:"required"`
	Receiver    string                `json:"receiver" validate:"required"`
	Witness     string                `json:"witness"`
	ReferenceID string                `json:"referenceId"`
	Items       []models.HandoverItem `json:"items" validate:"required,min=1"`
	Notes       string                `json:"notes"`
	// SelfAcknowledged completes the document immediately, the flow used
	// when sender and receiver sign in one sitting.
	SelfAcknowledged bool `json:"selfAcknowledged"`
}

// Create files a handover document.
func (s *Service) Create(ctx context.Context, input CreateInput) (*models.Handover, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	ids, err := s.handovers.IDs(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load handovers")
	}

	handover := models.Handover{
		DocNumber:   docnum.Next(docnum.PrefixHandover, ids, s.now()),
		Date:        s.now(),
		Sender:      input.Sender,
		Receiver:    input.Receiver,
		Witness:     input.Witness,
		ReferenceID: input.ReferenceID,
		Items:       input.Items,
		Status:      enums.ItemStatusInProgress,
		Notes:       input.Notes,
	}
	if input.SelfAcknowledged {
		handover.Status = enums.ItemStatusCompleted
		handover.CompletedBy = input.Receiver
	}

	if err := s.handovers.Upsert(ctx, handover); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save handover")
	}
	s.logg.Info(s.logg.WithDocNumber(ctx, handover.DocNumber), "handover created")
	return &handover, nil
}

// Complete acknowledges an in-progress handover. No asset mutation happens
// here.
func (s *Service) Complete(ctx context.Context, docNumber, completedBy string) (*models.Handover, error) {
	if completedBy == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "acknowledger required")
	}
	handover, err := s.get(ctx, docNumber)
	if err != nil {
		return nil, err
	}
	if handover.Status != enums.ItemStatusInProgress {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "completion requires an in-progress handover")
	}

	handover.Status = enums.ItemStatusCompleted
	handover.CompletedBy = completedBy
	if err := s.handovers.Upsert(ctx, *handover); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save handover")
	}
	s.logg.Info(s.logg.WithDocNumber(ctx, handover.DocNumber), "handover completed")
	return handover, nil
}

// Get returns one handover document.
func (s *Service) Get(ctx context.Context, docNumber string) (*models.Handover, error) {
	return s.get(ctx, docNumber)
}

// List returns all handover documents.
func (s *Service) List(ctx context.Context) ([]models.Handover, error) {
	items, err := s.handovers.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load handovers")
	}
	return items, nil
}

func (s *Service) get(ctx context.Context, docNumber string) (*models.Handover, error) {
	if docNumber == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "doc number required")
	}
	items, err := s.handovers.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load handovers")
	}
	for i := range items {
		if items[i].DocNumber == docNumber {
			handover := items[i]
			return &handover, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "handover not found")
}

// PrefillFromLoan builds the item lines for a handover paired with an
// approved loan, resolving the assigned assets' serials.
func PrefillFromLoan(loan models.LoanRequest, assetsByID map[string]models.Asset) []models.HandoverItem {
	var items []models.HandoverItem
	for _, item := range loan.Items {
		for _, assetID := range loan.AssignedAssetIDs[item.ID] {
			line := models.HandoverItem{
				Name:     item.Name,
				Brand:    item.Brand,
				Quantity: 1,
				AssetID:  assetID,
			}
			if asset, ok := assetsByID[assetID]; ok {
				line.SerialNumber = asset.SerialNumber
			}
			items = append(items, line)
		}
	}
	return items
}

// PrefillFromRequest builds the item lines for a handover of freshly
// registered procurement stock.
func PrefillFromRequest(request models.Request, registered []models.Asset) []models.HandoverItem {
	var items []models.HandoverItem
	for _, asset := range registered {
		if asset.WoRoIntNumber != request.ID {
			continue
		}
		items = append(items, models.HandoverItem{
			Name:         asset.Name,
			Brand:        asset.Brand,
			Quantity:     1,
			AssetID:      asset.ID,
			SerialNumber: asset.SerialNumber,
		})
	}
	return items
}
