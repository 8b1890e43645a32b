package dismantles

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

func newService(t *testing.T) (*Service, *store.Collection[models.Asset], *store.Collection[models.Dismantle]) {
	t.Helper()
	backend := store.NewMemory()
	dismantleCol := store.NewCollection(backend, store.KeyDismantles, func(d models.Dismantle) string { return d.DocNumber })
	assetCol := store.NewCollection(backend, store.KeyAssets, func(a models.Asset) string { return a.ID })
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	clock := func() time.Time { return fixedNow }

	lifecycle, err := assets.NewService(assetCol, logg, "Gudang Inventori", clock)
	if err != nil {
		t.Fatalf("unexpected lifecycle error: %v", err)
	}
	svc, err := NewService(dismantleCol, lifecycle, logg, clock)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}
	return svc, assetCol, dismantleCol
}

func installedAsset(id, customerID string) models.Asset {
	return models.Asset{
		ID:          id,
		Name:        "ONT XZ000",
		Brand:       "ZTE",
		Status:      enums.AssetStatusInUse,
		Condition:   enums.AssetConditionGood,
		CurrentUser: customerID,
		Location:    "customer " + customerID,
	}
}

func TestCreate(t *testing.T) {
	svc, assetCol, _ := newService(t)
	ctx := context.Background()
	if err := assetCol.Replace(ctx, []models.Asset{installedAsset("AST-1", "CUST-7")}); err != nil {
		t.Fatal(err)
	}

	dismantle, err := svc.Create(ctx, CreateInput{
		AssetID:            "AST-1",
		CustomerID:         "CUST-7",
		Technician:         "Joko",
		RetrievedCondition: enums.AssetConditionGood,
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if dismantle.DocNumber != "DSM-240310-001" {
		t.Fatalf("unexpected doc number: %s", dismantle.DocNumber)
	}
	if dismantle.Status != enums.ItemStatusInProgress {
		t.Fatalf("unexpected status: %s", dismantle.Status)
	}

	// Filing alone does not move the asset.
	asset, err := assetCol.Get(ctx, "AST-1")
	if err != nil {
		t.Fatal(err)
	}
	if asset.Status != enums.AssetStatusInUse {
		t.Fatalf("asset must stay in use until acknowledged, got %s", asset.Status)
	}
}

func TestCreate_Guards(t *testing.T) {
	svc, assetCol, _ := newService(t)
	ctx := context.Background()
	stored := installedAsset("AST-2", "")
	stored.Status = enums.AssetStatusInStorage
	stored.CurrentUser = ""
	if err := assetCol.Replace(ctx, []models.Asset{installedAsset("AST-1", "CUST-7"), stored}); err != nil {
		t.Fatal(err)
	}

	_, err := svc.Create(ctx, CreateInput{
		AssetID: "AST-2", CustomerID: "CUST-7", Technician: "Joko", RetrievedCondition: enums.AssetConditionGood,
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("assets not in use cannot be dismantled, got %v", err)
	}

	_, err = svc.Create(ctx, CreateInput{
		AssetID: "AST-1", CustomerID: "CUST-99", Technician: "Joko", RetrievedCondition: enums.AssetConditionGood,
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("customer mismatch must be refused, got %v", err)
	}
}

func TestComplete_ReturnsAssetToStorage(t *testing.T) {
	svc, assetCol, _ := newService(t)
	ctx := context.Background()
	if err := assetCol.Replace(ctx, []models.Asset{installedAsset("AST-1", "CUST-7")}); err != nil {
		t.Fatal(err)
	}
	dismantle, err := svc.Create(ctx, CreateInput{
		AssetID:            "AST-1",
		CustomerID:         "CUST-7",
		Technician:         "Joko",
		RetrievedCondition: enums.AssetConditionNeedsRepair,
	})
	if err != nil {
		t.Fatal(err)
	}

	completed, err := svc.Complete(ctx, dismantle.DocNumber, "Gudang")
	if err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if completed.Status != enums.ItemStatusCompleted || completed.Acknowledger != "Gudang" || completed.CompletionDate == nil {
		t.Fatalf("unexpected completed state: %+v", completed)
	}

	asset, err := assetCol.Get(ctx, "AST-1")
	if err != nil {
		t.Fatal(err)
	}
	if asset.Status != enums.AssetStatusInStorage || asset.Condition != enums.AssetConditionNeedsRepair {
		t.Fatalf("asset not reconciled: %+v", asset)
	}
	if asset.CurrentUser != "" || asset.Location != "Gudang Inventori" {
		t.Fatalf("asset not cleared back to warehouse: %+v", asset)
	}
	if !asset.IsDismantled || asset.DismantleInfo == nil || asset.DismantleInfo.DocNumber != dismantle.DocNumber {
		t.Fatalf("dismantle provenance missing: %+v", asset)
	}
	// The whole reconciliation is one patch with one log entry.
	if len(asset.ActivityLog) != 1 || asset.ActivityLog[0].Action != "dismantled" {
		t.Fatalf("expected exactly one dismantled log entry: %+v", asset.ActivityLog)
	}

	if _, err := svc.Complete(ctx, dismantle.DocNumber, "Gudang"); !pkgerrors.HasCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("completion is not repeatable, got %v", err)
	}
}

func TestBulkDelete(t *testing.T) {
	svc, _, dismantleCol := newService(t)
	ctx := context.Background()
	done := fixedNow
	if err := dismantleCol.Replace(ctx, []models.Dismantle{
		{DocNumber: "DSM-1", Status: enums.ItemStatusCompleted, CompletionDate: &done},
		{DocNumber: "DSM-2", Status: enums.ItemStatusInProgress},
		{DocNumber: "DSM-3", Status: enums.ItemStatusCompleted, CompletionDate: &done},
	}); err != nil {
		t.Fatal(err)
	}

	result, err := svc.BulkDelete(ctx, []string{"DSM-1", "DSM-2", "DSM-3", "DSM-404"})
	if err != nil {
		t.Fatalf("BulkDelete error: %v", err)
	}
	if result.Processed != 2 || result.Skipped != 2 {
		t.Fatalf("unexpected result: %+v", result)
	}

	remaining, err := dismantleCol.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(remaining) != 1 || remaining[0].DocNumber != "DSM-2" {
		t.Fatalf("in-progress records must survive: %+v", remaining)
	}
}

func TestBulkDelete_EmptyInput(t *testing.T) {
	svc, _, _ := newService(t)
	_, err := svc.BulkDelete(context.Background(), nil)
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
