// Package requests implements the procurement approval machine, from
// submission through logistics/CEO approval, purchasing and arrival to the
// registration of the purchased units as stock.
package requests

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
	"github.com/shopspring/decimal"
)

// assetCreator is the slice of the lifecycle manager registration needs.
type assetCreator interface {
	Create(ctx context.Context, asset models.Asset, entry assets.LogEntry) (*models.Asset, error)
	Warehouse() string
}

// Service runs the procurement workflow.
type Service struct {
	requests *store.Collection[models.Request]
	assetIDs *store.Collection[models.Asset]
	creator  assetCreator
	logg     *logger.Logger
	now      func() time.Time
}

// NewService builds the procurement workflow service.
func NewService(
	requests *store.Collection[models.Request],
	assetCollection *store.Collection[models.Asset],
	creator assetCreator,
	logg *logger.Logger,
	now func() time.Time,
) (*Service, error) {
	if requests == nil {
		return nil, fmt.Errorf("requests collection required")
	}
	if assetCollection == nil {
		return nil, fmt.Errorf("assets collection required")
	}
	if creator == nil {
		return nil, fmt.Errorf("asset creator required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if now == nil {
		now = time.Now
	}
	return &Service{requests: requests, assetIDs: assetCollection, creator: creator, logg: logg, now: now}, nil
}

// SubmitItem is one requested model + quantity line.
type SubmitItem struct {
	Name           string          `json:"name" validate:"required"`
	Brand          string          `json:"brand" validate:"required"`
	Category       string          `json:"category"`
	Type           string          `json:"type"`
	Quantity       int             `json:"quantity" validate:"gt=0"`
	EstimatedPrice decimal.Decimal `json:"estimatedPrice"`
}

// SubmitInput creates a new procurement request.
type SubmitInput struct {
	RequesterName string       `json:"requesterName" validate:"required"`
	Division      string       `json:"division"`
	Items         []SubmitItem `json:"items" validate:"required,min=1,dive"`
	Notes         string       `json:"notes"`
}

// Submit creates the request in pending state.
func (s *Service) Submit(ctx context.Context, input SubmitInput) (*models.Request, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	ids, err := s.requests.IDs(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load requests")
	}

	request := models.Request{
		ID:            docnum.Next(docnum.PrefixRequest, ids, s.now()),
		RequestDate:   s.now(),
		RequesterName: input.RequesterName,
		Division:      input.Division,
		Status:        enums.ItemStatusPending,
		Notes:         input.Notes,
	}
	for idx, item := range input.Items {
		request.Items = append(request.Items, models.RequestItem{
			ID:             fmt.Sprintf("%s-%d", request.ID, idx+1),
			Name:           item.Name,
			Brand:          item.Brand,
			Category:       item.Category,
			Type:           item.Type,
			Quantity:       item.Quantity,
			EstimatedPrice: item.EstimatedPrice,
		})
	}

	if err := s.requests.Upsert(ctx, request); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save request")
	}
	s.logg.Info(s.logg.WithDocNumber(ctx, request.ID), "procurement request submitted")
	return &request, nil
}

// ApproveLogistics records logistics approval. Orders whose total exceeds the
// caller-supplied threshold escalate to CEO approval instead of moving
// straight to logistic_approved; a zero threshold disables escalation. The
// policy belongs to the caller, never this machine.
func (s *Service) ApproveLogistics(ctx context.Context, requestID, approver string, ceoThreshold decimal.Decimal) (*models.Request, error) {
	if approver == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "approver required")
	}
	request, err := s.get(ctx, requestID)
	if err != nil {
		return nil, err
	}

	target := enums.ItemStatusLogisticApproved
	if ceoThreshold.IsPositive() && request.OrderTotal().GreaterThan(ceoThreshold) {
		target = enums.ItemStatusAwaitingCEOApproval
	}
	if request.Status != enums.ItemStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "logistics approval requires a pending request")
	}
	next, err := transition(request.Status, target)
	if err != nil {
		return nil, err
	}

	when := s.now()
	request.Status = next
	request.LogisticApprover = approver
	request.LogisticApprovalDate = &when

	return s.save(ctx, request, "logistics approval recorded")
}

// RecordPurchase attaches commercial details to one item. It never changes
// the top-level status by itself.
func (s *Service) RecordPurchase(ctx context.Context, requestID, itemID string, details models.PurchaseDetails) (*models.Request, error) {
	request, err := s.get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cannot record purchase on a closed request")
	}
	item := request.Item(itemID)
	if item == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "request item not found")
	}
	if details.PurchasePrice.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "purchase price cannot be negative")
	}

	copied := details
	item.PurchaseDetails = &copied
	return s.save(ctx, request, "purchase details recorded")
}

// FinalApprove records the final (CEO or logistics-delegated) approval.
func (s *Service) FinalApprove(ctx context.Context, requestID, approver string) (*models.Request, error) {
	if approver == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "approver required")
	}
	request, err := s.get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.LogisticApprover == "" {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "final approval requires prior logistics approval")
	}
	next, err := transition(request.Status, enums.ItemStatusApproved)
	if err != nil {
		return nil, err
	}

	when := s.now()
	request.Status = next
	request.FinalApprover = approver
	request.FinalApprovalDate = &when
	return s.save(ctx, request, "final approval recorded")
}

// MarkPurchasing moves an approved request into purchasing.
func (s *Service) MarkPurchasing(ctx context.Context, requestID string) (*models.Request, error) {
	return s.moveTo(ctx, requestID, enums.ItemStatusPurchasing, "purchasing started")
}

// MarkInDelivery moves a purchasing request into delivery.
func (s *Service) MarkInDelivery(ctx context.Context, requestID string) (*models.Request, error) {
	return s.moveTo(ctx, requestID, enums.ItemStatusInDelivery, "delivery started")
}

// MarkArrived records goods receipt.
func (s *Service) MarkArrived(ctx context.Context, requestID, receivedBy string, arrivalDate time.Time) (*models.Request, error) {
	if receivedBy == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "receiver required")
	}
	request, err := s.get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.Status != enums.ItemStatusPurchasing && request.Status != enums.ItemStatusInDelivery {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "arrival requires purchasing or in_delivery")
	}
	next, err := transition(request.Status, enums.ItemStatusArrived)
	if err != nil {
		return nil, err
	}

	request.Status = next
	request.ReceivedBy = receivedBy
	request.ArrivalDate = &arrivalDate
	return s.save(ctx, request, "arrival recorded")
}

// MarkCompleted closes a request parked in awaiting_handover once its
// handover document is acknowledged.
func (s *Service) MarkCompleted(ctx context.Context, requestID string) (*models.Request, error) {
	return s.moveTo(ctx, requestID, enums.ItemStatusCompleted, "request completed")
}

// RejectInput identifies who refused the request and why.
type RejectInput struct {
	Rejecter string `json:"rejecter" validate:"required"`
	Division string `json:"division"`
	Reason   string `json:"reason" validate:"required"`
}

// Reject refuses the request from any non-terminal state.
func (s *Service) Reject(ctx context.Context, requestID string, input RejectInput) (*models.Request, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}
	request, err := s.get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	next, err := transition(request.Status, enums.ItemStatusRejected)
	if err != nil {
		return nil, err
	}

	when := s.now()
	request.Status = next
	request.RejectedBy = input.Rejecter
	request.RejectedDivision = input.Division
	request.RejectionDate = &when
	request.RejectionReason = input.Reason
	return s.save(ctx, request, "request rejected")
}

// Cancel withdraws the request from any non-terminal state.
func (s *Service) Cancel(ctx context.Context, requestID, actor, reason string) (*models.Request, error) {
	if actor == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actor required")
	}
	request, err := s.get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	next, err := transition(request.Status, enums.ItemStatusCancelled)
	if err != nil {
		return nil, err
	}

	when := s.now()
	request.Status = next
	request.RejectedBy = actor
	request.RejectionDate = &when
	request.RejectionReason = reason
	return s.save(ctx, request, "request cancelled")
}

// RegisterAssetsInput controls how arrived goods become stock.
type RegisterAssetsInput struct {
	RegisteredBy string `json:"registeredBy" validate:"required"`
	// HandoverPending parks the request in awaiting_handover instead of
	// completed when a downstream handover still has to happen.
	HandoverPending bool `json:"handoverPending"`
}

// RegisterAssets creates one in-storage asset per approved unit of every
// item. It is idempotent per item: items already recorded in
// PartiallyRegisteredItems are skipped, so a second invocation never
// double-creates stock.
func (s *Service) RegisterAssets(ctx context.Context, requestID string, input RegisterAssetsInput) (*models.Request, []models.Asset, error) {
	if err := validate.Struct(input); err != nil {
		return nil, nil, err
	}
	request, err := s.get(ctx, requestID)
	if err != nil {
		return nil, nil, err
	}
	switch request.Status {
	case enums.ItemStatusArrived, enums.ItemStatusAwaitingHandover:
	case enums.ItemStatusCompleted:
		// A repeat invocation on an already-registered request is a no-op
		// per item, never an error.
		if !request.IsRegistered {
			return nil, nil, pkgerrors.New(pkgerrors.CodeStateConflict, "registration requires an arrived request")
		}
	default:
		return nil, nil, pkgerrors.New(pkgerrors.CodeStateConflict, "registration requires an arrived request")
	}

	if request.PartiallyRegisteredItems == nil {
		request.PartiallyRegisteredItems = make(map[string]bool)
	}

	assetIDs, err := s.assetIDs.IDs(ctx)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load assets")
	}

	var created []models.Asset
	for idx := range request.Items {
		item := &request.Items[idx]
		if request.PartiallyRegisteredItems[item.ID] {
			continue
		}

		quantity := item.RegisterQuantity()
		if quantity <= 0 {
			request.PartiallyRegisteredItems[item.ID] = true
			continue
		}

		unitPrice := decimal.Zero
		var warranty *time.Time
		vendor := ""
		if item.PurchaseDetails != nil {
			unitPrice = item.PurchaseDetails.PurchasePrice.Div(decimal.NewFromInt(int64(quantity)))
			warranty = item.PurchaseDetails.WarrantyEndDate
			vendor = item.PurchaseDetails.Vendor
		}

		for unit := 0; unit < quantity; unit++ {
			id := docnum.Next(docnum.PrefixAsset, assetIDs, s.now())
			assetIDs = append(assetIDs, id)

			asset := models.Asset{
				ID:              id,
				Category:        item.Category,
				Type:            item.Type,
				Brand:           item.Brand,
				Name:            item.Name,
				PurchasePrice:   unitPrice,
				Vendor:          vendor,
				PONumber:        request.ID,
				WoRoIntNumber:   request.ID,
				WarrantyEndDate: warranty,
				Status:          enums.AssetStatusInStorage,
				Condition:       enums.AssetConditionBrandNew,
				Location:        s.creator.Warehouse(),
			}
			registered, err := s.creator.Create(ctx, asset, assets.LogEntry{
				User:        input.RegisteredBy,
				Action:      "registered",
				Details:     fmt.Sprintf("registered from procurement %s", request.ID),
				ReferenceID: request.ID,
			})
			if err != nil {
				return nil, nil, err
			}
			created = append(created, *registered)
		}
		request.PartiallyRegisteredItems[item.ID] = true
	}

	request.IsRegistered = true
	target := enums.ItemStatusCompleted
	if input.HandoverPending {
		target = enums.ItemStatusAwaitingHandover
	}
	if request.Status != target && request.Status != enums.ItemStatusCompleted {
		next, err := transition(request.Status, target)
		if err != nil {
			return nil, nil, err
		}
		request.Status = next
	}

	saved, err := s.save(ctx, request, "arrived goods registered as assets")
	if err != nil {
		return nil, nil, err
	}
	return saved, created, nil
}

// Get returns one request.
func (s *Service) Get(ctx context.Context, requestID string) (*models.Request, error) {
	return s.get(ctx, requestID)
}

// List returns all requests.
func (s *Service) List(ctx context.Context) ([]models.Request, error) {
	items, err := s.requests.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load requests")
	}
	return items, nil
}

func (s *Service) get(ctx context.Context, requestID string) (*models.Request, error) {
	if requestID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request id required")
	}
	items, err := s.requests.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load requests")
	}
	for i := range items {
		if items[i].ID == requestID {
			request := items[i]
			return &request, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "request not found")
}

func (s *Service) save(ctx context.Context, request *models.Request, msg string) (*models.Request, error) {
	if err := s.requests.Upsert(ctx, *request); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save request")
	}
	s.logg.Info(s.logg.WithDocNumber(ctx, request.ID), msg)
	return request, nil
}

func (s *Service) moveTo(ctx context.Context, requestID string, target enums.ItemStatus, msg string) (*models.Request, error) {
	request, err := s.get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	next, err := transition(request.Status, target)
	if err != nil {
		return nil, err
	}
	request.Status = next
	return s.save(ctx, request, msg)
}
