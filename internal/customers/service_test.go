package customers

import (
	"context"
	"io"
	"testing"

	"github.com/satrianet/inventaris-backend/internal/store"
	"github.com/satrianet/inventaris-backend/pkg/enums"
	pkgerrors "github.com/satrianet/inventaris-backend/pkg/errors"
	"github.com/satrianet/inventaris-backend/pkg/logger"
	"github.com/satrianet/inventaris-backend/pkg/models"
	"github.com/shopspring/decimal"
)

func newService(t *testing.T) (*Service, *store.Collection[models.Customer], *store.Collection[models.Asset]) {
	t.Helper()
	backend := store.NewMemory()
	customerCol := store.NewCollection(backend, store.KeyCustomers, func(c models.Customer) string { return c.ID })
	assetCol := store.NewCollection(backend, store.KeyAssets, func(a models.Asset) string { return a.ID })
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	svc, err := NewService(customerCol, assetCol, logg)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}
	return svc, customerCol, assetCol
}

func TestUpsert_PreservesLedger(t *testing.T) {
	svc, customerCol, _ := newService(t)
	ctx := context.Background()
	if err := customerCol.Replace(ctx, []models.Customer{{
		ID:   "CUST-7",
		Name: "Warnet Maju",
		InstalledMaterials: []models.InstalledMaterial{
			{ItemName: "Kabel FO", Brand: "FiberHome", Quantity: decimal.NewFromInt(150), Unit: "m"},
		},
	}}); err != nil {
		t.Fatal(err)
	}

	updated, err := svc.Upsert(ctx, UpsertInput{ID: "CUST-7", Name: "Warnet Maju Jaya", Phone: "0812"})
	if err != nil {
		t.Fatalf("Upsert error: %v", err)
	}
	if updated.Name != "Warnet Maju Jaya" || updated.Phone != "0812" {
		t.Fatalf("contact fields not updated: %+v", updated)
	}
	if len(updated.InstalledMaterials) != 1 {
		t.Fatalf("the ledger must survive contact edits: %+v", updated.InstalledMaterials)
	}
}

func TestUpsert_Validation(t *testing.T) {
	svc, _, _ := newService(t)
	_, err := svc.Upsert(context.Background(), UpsertInput{ID: "CUST-7"})
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDelete_BlockedByInstalledAssets(t *testing.T) {
	svc, customerCol, assetCol := newService(t)
	ctx := context.Background()
	if err := customerCol.Replace(ctx, []models.Customer{{ID: "CUST-7", Name: "Warnet Maju"}}); err != nil {
		t.Fatal(err)
	}
	if err := assetCol.Replace(ctx, []models.Asset{
		{ID: "AST-1", Status: enums.AssetStatusInUse, CurrentUser: "CUST-7"},
		{ID: "AST-2", Status: enums.AssetStatusInUse, CurrentUser: "CUST-7"},
		{ID: "AST-3", Status: enums.AssetStatusInUse, CurrentUser: "CUST-9"},
		{ID: "AST-4", Status: enums.AssetStatusInStorage},
	}); err != nil {
		t.Fatal(err)
	}

	err := svc.Delete(ctx, "CUST-7")
	if !pkgerrors.HasCode(err, pkgerrors.CodeReferenceConflict) {
		t.Fatalf("expected reference conflict, got %v", err)
	}
	details, ok := pkgerrors.As(err).Details().(map[string]any)
	if !ok || details["blocking_references"] != 2 {
		t.Fatalf("expected blocking count of 2, got %v", pkgerrors.As(err).Details())
	}
}

func TestDelete(t *testing.T) {
	svc, customerCol, _ := newService(t)
	ctx := context.Background()
	if err := customerCol.Replace(ctx, []models.Customer{{ID: "CUST-7", Name: "Warnet Maju"}}); err != nil {
		t.Fatal(err)
	}

	if err := svc.Delete(ctx, "CUST-7"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if err := svc.Delete(ctx, "CUST-7"); !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
