// Package loans implements the temporary-equipment loan machine. Approval
// binds concrete in-storage assets to the abstract line items; the assets
// only move to in_use when the paired handover completes (Activate), keeping
// approval decoupled from physical custody transfer.
package loans

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
	"go.uber.org/multierr"
)

// assetLifecycle is the slice of the lifecycle manager the loan flow needs.
type assetLifecycle interface {
	ApplyUpdate(ctx context.Context, assetID string, patch assets.Patch, entry *assets.LogEntry) (*models.Asset, error)
	Warehouse() string
}

// notifier dispatches workflow notifications; failures are logged, never
// fatal to the operation.
type notifier interface {
	Notify(ctx context.Context, recipientID string, kind enums.NotificationType, referenceID, message string) error
}

// LogisticsRecipient receives return-initiation notifications.
var LogisticsRecipient = enums.RoleLogistics.String()

// Service runs the loan workflow.
type Service struct {
	loans     *store.Collection[models.LoanRequest]
	assetsCol *store.Collection[models.Asset]
	lifecycle assetLifecycle
	notify    notifier
	logg      *logger.Logger
	now       func() time.Time
}

// NewService builds the loan workflow service. notify may be nil.
func NewService(
	loans *store.Collection[models.LoanRequest],
	assetCollection *store.Collection[models.Asset],
	lifecycle assetLifecycle,
	notify notifier,
	logg *logger.Logger,
	now func() time.Time,
) (*Service, error) {
	if loans == nil {
		return nil, fmt.Errorf("loan collection required")
	}
	if assetCollection == nil {
		return nil, fmt.Errorf("assets collection required")
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
	return &Service{loans: loans, assetsCol: assetCollection, lifecycle: lifecycle, notify: notify, logg: logg, now: now}, nil
}

// SubmitItem is one requested model line with its promised return date.
type SubmitItem struct {
	Name       string    `json:"name" validate:"required"`
	Brand      string    `json:"brand" validate:"required"`
	Quantity   int       `json:"quantity" validate:"gt=0"`
	ReturnDate time.Time `json:"returnDate" validate:"required"`
}

// SubmitInput creates a new loan request.
type SubmitInput struct {
	RequesterName string       `json:"requesterName" validate:"required"`
	Items         []SubmitItem `json:"items" validate:"required,min=1,dive"`
	Notes         string       `json:"notes"`
}

// Submit creates the loan request in pending state.
func (s *Service) Submit(ctx context.Context, input SubmitInput) (*models.LoanRequest, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	ids, err := s.loans.IDs(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load loan requests")
	}

	loan := models.LoanRequest{
		ID:            docnum.Next(docnum.PrefixLoan, ids, s.now()),
		RequestDate:   s.now(),
		RequesterName: input.RequesterName,
		Status:        enums.LoanStatusPending,
		Notes:         input.Notes,
	}
	for idx, item := range input.Items {
		loan.Items = append(loan.Items, models.LoanItem{
			ID:         fmt.Sprintf("%s-%d", loan.ID, idx+1),
			Name:       item.Name,
			Brand:      item.Brand,
			Quantity:   item.Quantity,
			ReturnDate: item.ReturnDate,
		})
	}

	if err := s.loans.Upsert(ctx, loan); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save loan request")
	}
	s.logg.Info(s.logg.WithDocNumber(ctx, loan.ID), "loan request submitted")
	return &loan, nil
}

// AssignAndApprove binds concrete assets to the line items and approves the
// loan. Every item must receive exactly its quantity of distinct, in-storage
// assets matching the item's (name, brand); an asset bound to one item is not
// available to another in the same call. Asset status is not touched here.
func (s *Service) AssignAndApprove(ctx context.Context, loanID, approver string, assigned map[string][]string) (*models.LoanRequest, error) {
	if approver == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "approver required")
	}
	loan, err := s.get(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if !loan.Status.CanTransition(enums.LoanStatusApproved) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "approval requires a pending loan request")
	}

	allAssets, err := s.assetsCol.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load assets")
	}
	byID := make(map[string]*models.Asset, len(allAssets))
	for i := range allAssets {
		byID[allAssets[i].ID] = &allAssets[i]
	}

	itemIDs := make(map[string]bool, len(loan.Items))
	for _, item := range loan.Items {
		itemIDs[item.ID] = true
	}
	for itemID := range assigned {
		if !itemIDs[itemID] {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("assignment names unknown item %s", itemID))
		}
	}

	seen := make(map[string]bool)
	for _, item := range loan.Items {
		assetIDs := assigned[item.ID]
		if len(assetIDs) != item.Quantity {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("item %s needs %d assets, got %d", item.ID, item.Quantity, len(assetIDs)))
		}
		for _, assetID := range assetIDs {
			if seen[assetID] {
				return nil, pkgerrors.New(pkgerrors.CodeValidation,
					fmt.Sprintf("asset %s assigned more than once", assetID))
			}
			seen[assetID] = true

			asset, ok := byID[assetID]
			if !ok {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("asset %s not found", assetID))
			}
			if asset.Status != enums.AssetStatusInStorage {
				return nil, pkgerrors.New(pkgerrors.CodeValidation,
					fmt.Sprintf("asset %s is not in storage", assetID))
			}
			if asset.Name != item.Name || asset.Brand != item.Brand {
				return nil, pkgerrors.New(pkgerrors.CodeValidation,
					fmt.Sprintf("asset %s does not match item %s %s", assetID, item.Brand, item.Name))
			}
		}
	}

	when := s.now()
	loan.Status = enums.LoanStatusApproved
	loan.Approver = approver
	loan.ApprovalDate = &when
	loan.AssignedAssetIDs = assigned
	return s.save(ctx, loan, "loan approved with asset assignment")
}

// Reject refuses a pending loan request.
func (s *Service) Reject(ctx context.Context, loanID, rejecter, reason string) (*models.LoanRequest, error) {
	if rejecter == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rejecter required")
	}
	loan, err := s.get(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if !loan.Status.CanTransition(enums.LoanStatusRejected) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "rejection requires a pending loan request")
	}

	loan.Status = enums.LoanStatusRejected
	loan.RejectedBy = rejecter
	loan.RejectionReason = reason
	return s.save(ctx, loan, "loan rejected")
}

// Activate moves an approved loan on_loan once the paired handover has
// completed: every assigned asset goes to in_use under the requester, logged
// against the handover document.
func (s *Service) Activate(ctx context.Context, loanID, handoverDocNumber string) (*models.LoanRequest, error) {
	loan, err := s.get(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if !loan.Status.CanTransition(enums.LoanStatusOnLoan) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "activation requires an approved loan")
	}

	status := enums.AssetStatusInUse
	user := loan.RequesterName
	for _, assetID := range loan.AllAssignedAssetIDs() {
		location := "with " + loan.RequesterName
		if _, err := s.lifecycle.ApplyUpdate(ctx, assetID, assets.Patch{
			Status:      &status,
			CurrentUser: &user,
			Location:    &location,
		}, &assets.LogEntry{
			User:        loan.RequesterName,
			Action:      "loaned_out",
			Details:     fmt.Sprintf("loaned to %s", loan.RequesterName),
			ReferenceID: handoverDocNumber,
		}); err != nil {
			return nil, err
		}
	}

	loan.Status = enums.LoanStatusOnLoan
	return s.save(ctx, loan, "loan activated")
}

// InitiateReturn flags an outstanding loan for return and pings logistics.
func (s *Service) InitiateReturn(ctx context.Context, loanID string) (*models.LoanRequest, error) {
	loan, err := s.get(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if !loan.Status.CanTransition(enums.LoanStatusAwaitingReturn) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "return requires an outstanding loan")
	}

	loan.Status = enums.LoanStatusAwaitingReturn
	saved, err := s.save(ctx, loan, "loan return initiated")
	if err != nil {
		return nil, err
	}
	if s.notify != nil {
		if err := s.notify.Notify(ctx, LogisticsRecipient, enums.NotificationTypeReturnRequested, loan.ID,
			fmt.Sprintf("%s is returning loan %s", loan.RequesterName, loan.ID)); err != nil {
			s.logg.Warn(s.logg.WithDocNumber(ctx, loan.ID), "return notification failed: "+err.Error())
		}
	}
	return saved, nil
}

// ConfirmReturn acknowledges all assigned assets back into storage and closes
// the loan. Missing assets fail the whole confirmation before any state is
// touched.
func (s *Service) ConfirmReturn(ctx context.Context, loanID, acknowledger string) (*models.LoanRequest, error) {
	if acknowledger == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "acknowledger required")
	}
	loan, err := s.get(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if !loan.Status.CanTransition(enums.LoanStatusReturned) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "confirmation requires an outstanding loan")
	}

	assetIDs := loan.AllAssignedAssetIDs()
	allAssets, err := s.assetsCol.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load assets")
	}
	known := make(map[string]bool, len(allAssets))
	for i := range allAssets {
		known[allAssets[i].ID] = true
	}
	var missing error
	for _, assetID := range assetIDs {
		if !known[assetID] {
			missing = multierr.Append(missing, fmt.Errorf("asset %s not found", assetID))
		}
	}
	if missing != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, missing, "assigned assets missing")
	}

	status := enums.AssetStatusInStorage
	empty := ""
	warehouse := s.lifecycle.Warehouse()
	for _, assetID := range assetIDs {
		if _, err := s.lifecycle.ApplyUpdate(ctx, assetID, assets.Patch{
			Status:      &status,
			CurrentUser: &empty,
			Location:    &warehouse,
		}, &assets.LogEntry{
			User:        acknowledger,
			Action:      "loan_returned",
			Details:     fmt.Sprintf("returned from loan %s", loan.ID),
			ReferenceID: loan.ID,
		}); err != nil {
			return nil, err
		}
	}

	when := s.now()
	loan.Status = enums.LoanStatusReturned
	loan.ReturnConfirmedBy = acknowledger
	loan.ReturnConfirmedDate = &when
	return s.save(ctx, loan, "loan return confirmed")
}

// EligibleAssets lists the candidates for one line item during assignment:
// in-storage assets matching the item's (name, brand), minus any already
// chosen for another slot of the same form submission.
func (s *Service) EligibleAssets(ctx context.Context, item models.LoanItem, excluded map[string]bool) ([]models.Asset, error) {
	allAssets, err := s.assetsCol.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load assets")
	}
	var eligible []models.Asset
	for _, asset := range allAssets {
		if asset.Status != enums.AssetStatusInStorage {
			continue
		}
		if asset.Name != item.Name || asset.Brand != item.Brand {
			continue
		}
		if excluded[asset.ID] {
			continue
		}
		eligible = append(eligible, asset)
	}
	return eligible, nil
}

// Get returns one loan request.
func (s *Service) Get(ctx context.Context, loanID string) (*models.LoanRequest, error) {
	return s.get(ctx, loanID)
}

// List returns all loan requests.
func (s *Service) List(ctx context.Context) ([]models.LoanRequest, error) {
	items, err := s.loans.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load loan requests")
	}
	return items, nil
}

func (s *Service) get(ctx context.Context, loanID string) (*models.LoanRequest, error) {
	if loanID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "loan id required")
	}
	items, err := s.loans.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load loan requests")
	}
	for i := range items {
		if items[i].ID == loanID {
			loan := items[i]
			return &loan, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "loan request not found")
}

func (s *Service) save(ctx context.Context, loan *models.LoanRequest, msg string) (*models.LoanRequest, error) {
	if err := s.loans.Upsert(ctx, *loan); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save loan request")
	}
	s.logg.Info(s.logg.WithDocNumber(ctx, loan.ID), msg)
	return loan, nil
}
