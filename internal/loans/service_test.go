package loans

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/satrianet/inventaris-backend/internal/assets"
	"github.com/satrianet/inventaris-backend/internal/store"
	"github.com/satrianet/inventaris-backend/pkg/enums"
	pkgerrors "github.com/satrianet/inventaris-backend/pkg/errors"
	"github.com/satrianet/inventaris-backend/pkg/logger"
	"github.com/satrianet/inventaris-backend/pkg/models"
)

var fixedNow = time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

type recordedNotification struct {
	recipient string
	kind      enums.NotificationType
	reference string
}

type fakeNotifier struct {
	sent []recordedNotification
	err  error
}

func (f *fakeNotifier) Notify(ctx context.Context, recipientID string, kind enums.NotificationType, referenceID, message string) error {
	f.sent = append(f.sent, recordedNotification{recipient: recipientID, kind: kind, reference: referenceID})
	return f.err
}

func newService(t *testing.T) (*Service, *store.Collection[models.Asset], *fakeNotifier) {
	t.Helper()
	backend := store.NewMemory()
	loanCol := store.NewCollection(backend, store.KeyLoanRequests, func(l models.LoanRequest) string { return l.ID })
	assetCol := store.NewCollection(backend, store.KeyAssets, func(a models.Asset) string { return a.ID })
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	clock := func() time.Time { return fixedNow }

	lifecycle, err := assets.NewService(assetCol, logg, "Gudang Inventori", clock)
	if err != nil {
		t.Fatalf("unexpected lifecycle error: %v", err)
	}
	notify := &fakeNotifier{}
	svc, err := NewService(loanCol, assetCol, lifecycle, notify, logg, clock)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}
	return svc, assetCol, notify
}

func storageAsset(id string) models.Asset {
	return models.Asset{
		ID:     id,
		Name:   "Splicer X1",
		Brand:  "Fujikura",
		Status: enums.AssetStatusInStorage,
	}
}

func submitSplicers(t *testing.T, svc *Service, quantity int) *models.LoanRequest {
	t.Helper()
	loan, err := svc.Submit(context.Background(), SubmitInput{
		RequesterName: "Andi",
		Items: []SubmitItem{{
			Name:       "Splicer X1",
			Brand:      "Fujikura",
			Quantity:   quantity,
			ReturnDate: fixedNow.AddDate(0, 0, 7),
		}},
	})
	if err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	return loan
}

func TestSubmit(t *testing.T) {
	svc, _, _ := newService(t)
	loan := submitSplicers(t, svc, 2)

	if loan.ID != "LOAN-240310-001" {
		t.Fatalf("unexpected doc number: %s", loan.ID)
	}
	if loan.Status != enums.LoanStatusPending {
		t.Fatalf("unexpected status: %s", loan.Status)
	}
	if len(loan.Items) != 1 || loan.Items[0].ID != "LOAN-240310-001-1" {
		t.Fatalf("unexpected items: %+v", loan.Items)
	}
}

func TestAssignAndApprove(t *testing.T) {
	svc, assetCol, _ := newService(t)
	ctx := context.Background()
	if err := assetCol.Replace(ctx, []models.Asset{storageAsset("AST-1"), storageAsset("AST-2")}); err != nil {
		t.Fatal(err)
	}
	loan := submitSplicers(t, svc, 2)

	approved, err := svc.AssignAndApprove(ctx, loan.ID, "Sari", map[string][]string{
		loan.Items[0].ID: {"AST-1", "AST-2"},
	})
	if err != nil {
		t.Fatalf("AssignAndApprove error: %v", err)
	}
	if approved.Status != enums.LoanStatusApproved || approved.Approver != "Sari" {
		t.Fatalf("unexpected approved state: %+v", approved)
	}

	// Approval binds, it does not move assets.
	stored, err := assetCol.Get(ctx, "AST-1")
	if err != nil {
		t.Fatal(err)
	}
	if stored.Status != enums.AssetStatusInStorage {
		t.Fatalf("approval must not touch asset status, got %s", stored.Status)
	}
}

func TestAssignAndApprove_Validations(t *testing.T) {
	svc, assetCol, _ := newService(t)
	ctx := context.Background()
	loaned := storageAsset("AST-3")
	loaned.Status = enums.AssetStatusInUse
	other := storageAsset("AST-4")
	other.Name = "Router AX2"
	if err := assetCol.Replace(ctx, []models.Asset{storageAsset("AST-1"), storageAsset("AST-2"), loaned, other}); err != nil {
		t.Fatal(err)
	}
	loan := submitSplicers(t, svc, 2)
	itemID := loan.Items[0].ID

	tests := []struct {
		name     string
		assigned map[string][]string
		code     pkgerrors.Code
	}{
		{"wrong count", map[string][]string{itemID: {"AST-1"}}, pkgerrors.CodeValidation},
		{"double booking", map[string][]string{itemID: {"AST-1", "AST-1"}}, pkgerrors.CodeValidation},
		{"unknown asset", map[string][]string{itemID: {"AST-1", "AST-99"}}, pkgerrors.CodeNotFound},
		{"not in storage", map[string][]string{itemID: {"AST-1", "AST-3"}}, pkgerrors.CodeValidation},
		{"model mismatch", map[string][]string{itemID: {"AST-1", "AST-4"}}, pkgerrors.CodeValidation},
		{"unknown item key", map[string][]string{itemID: {"AST-1", "AST-2"}, "LOAN-999-9": {"AST-2"}}, pkgerrors.CodeValidation},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.AssignAndApprove(ctx, loan.ID, "Sari", tc.assigned)
			if !pkgerrors.HasCode(err, tc.code) {
				t.Fatalf("expected %s, got %v", tc.code, err)
			}
		})
	}
}

func TestActivate_MovesAssetsOut(t *testing.T) {
	svc, assetCol, _ := newService(t)
	ctx := context.Background()
	if err := assetCol.Replace(ctx, []models.Asset{storageAsset("AST-1")}); err != nil {
		t.Fatal(err)
	}
	loan := submitSplicers(t, svc, 1)
	if _, err := svc.AssignAndApprove(ctx, loan.ID, "Sari", map[string][]string{loan.Items[0].ID: {"AST-1"}}); err != nil {
		t.Fatal(err)
	}

	activated, err := svc.Activate(ctx, loan.ID, "HO-240310-001")
	if err != nil {
		t.Fatalf("Activate error: %v", err)
	}
	if activated.Status != enums.LoanStatusOnLoan {
		t.Fatalf("unexpected status: %s", activated.Status)
	}

	asset, err := assetCol.Get(ctx, "AST-1")
	if err != nil {
		t.Fatal(err)
	}
	if asset.Status != enums.AssetStatusInUse || asset.CurrentUser != "Andi" {
		t.Fatalf("asset not moved to the borrower: %+v", asset)
	}
	if len(asset.ActivityLog) != 1 || asset.ActivityLog[0].Action != "loaned_out" || asset.ActivityLog[0].ReferenceID != "HO-240310-001" {
		t.Fatalf("unexpected activity log: %+v", asset.ActivityLog)
	}
}

func TestActivate_RequiresApproval(t *testing.T) {
	svc, _, _ := newService(t)
	loan := submitSplicers(t, svc, 1)

	_, err := svc.Activate(context.Background(), loan.ID, "HO-240310-001")
	if !pkgerrors.HasCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestReturnFlow(t *testing.T) {
	svc, assetCol, notify := newService(t)
	ctx := context.Background()
	if err := assetCol.Replace(ctx, []models.Asset{storageAsset("AST-1")}); err != nil {
		t.Fatal(err)
	}
	loan := submitSplicers(t, svc, 1)
	if _, err := svc.AssignAndApprove(ctx, loan.ID, "Sari", map[string][]string{loan.Items[0].ID: {"AST-1"}}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Activate(ctx, loan.ID, "HO-240310-001"); err != nil {
		t.Fatal(err)
	}

	awaiting, err := svc.InitiateReturn(ctx, loan.ID)
	if err != nil {
		t.Fatalf("InitiateReturn error: %v", err)
	}
	if awaiting.Status != enums.LoanStatusAwaitingReturn {
		t.Fatalf("unexpected status: %s", awaiting.Status)
	}
	if len(notify.sent) != 1 || notify.sent[0].recipient != LogisticsRecipient || notify.sent[0].kind != enums.NotificationTypeReturnRequested {
		t.Fatalf("logistics not notified: %+v", notify.sent)
	}

	returned, err := svc.ConfirmReturn(ctx, loan.ID, "Gudang")
	if err != nil {
		t.Fatalf("ConfirmReturn error: %v", err)
	}
	if returned.Status != enums.LoanStatusReturned || returned.ReturnConfirmedBy != "Gudang" {
		t.Fatalf("unexpected returned state: %+v", returned)
	}

	asset, err := assetCol.Get(ctx, "AST-1")
	if err != nil {
		t.Fatal(err)
	}
	if asset.Status != enums.AssetStatusInStorage || asset.CurrentUser != "" || asset.Location != "Gudang Inventori" {
		t.Fatalf("asset not restored to storage: %+v", asset)
	}
}

func TestInitiateReturn_NotifierFailureIsNonFatal(t *testing.T) {
	svc, assetCol, notify := newService(t)
	ctx := context.Background()
	notify.err = context.DeadlineExceeded
	if err := assetCol.Replace(ctx, []models.Asset{storageAsset("AST-1")}); err != nil {
		t.Fatal(err)
	}
	loan := submitSplicers(t, svc, 1)
	if _, err := svc.AssignAndApprove(ctx, loan.ID, "Sari", map[string][]string{loan.Items[0].ID: {"AST-1"}}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Activate(ctx, loan.ID, "HO-240310-001"); err != nil {
		t.Fatal(err)
	}

	awaiting, err := svc.InitiateReturn(ctx, loan.ID)
	if err != nil {
		t.Fatalf("notification failure must not fail the return: %v", err)
	}
	if awaiting.Status != enums.LoanStatusAwaitingReturn {
		t.Fatalf("unexpected status: %s", awaiting.Status)
	}
}

func TestEffectiveStatus_OverdueOverlay(t *testing.T) {
	loan := models.LoanRequest{
		Status: enums.LoanStatusOnLoan,
		Items: []models.LoanItem{
			{ID: "i1", ReturnDate: fixedNow.AddDate(0, 0, 3)},
			{ID: "i2", ReturnDate: fixedNow.AddDate(0, 0, 1)},
		},
	}

	if got := loan.EffectiveStatus(fixedNow); got != enums.LoanStatusOnLoan {
		t.Fatalf("not yet due, got %s", got)
	}
	if got := loan.EffectiveStatus(fixedNow.AddDate(0, 0, 2)); got != enums.LoanStatusOverdue {
		t.Fatalf("past the earliest return date, got %s", got)
	}

	loan.Status = enums.LoanStatusReturned
	if got := loan.EffectiveStatus(fixedNow.AddDate(0, 1, 0)); got != enums.LoanStatusReturned {
		t.Fatalf("overlay only applies to on_loan, got %s", got)
	}
}

func TestEligibleAssets(t *testing.T) {
	svc, assetCol, _ := newService(t)
	ctx := context.Background()
	inUse := storageAsset("AST-3")
	inUse.Status = enums.AssetStatusInUse
	other := storageAsset("AST-4")
	other.Brand = "Sumitomo"
	if err := assetCol.Replace(ctx, []models.Asset{storageAsset("AST-1"), storageAsset("AST-2"), inUse, other}); err != nil {
		t.Fatal(err)
	}

	item := models.LoanItem{Name: "Splicer X1", Brand: "Fujikura"}
	eligible, err := svc.EligibleAssets(ctx, item, map[string]bool{"AST-2": true})
	if err != nil {
		t.Fatalf("EligibleAssets error: %v", err)
	}
	if len(eligible) != 1 || eligible[0].ID != "AST-1" {
		t.Fatalf("unexpected eligible set: %+v", eligible)
	}
}
