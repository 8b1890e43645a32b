package assets

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/satrianet/inventaris-backend/internal/store"
	"github.com/satrianet/inventaris-backend/pkg/enums"
	pkgerrors "github.com/satrianet/inventaris-backend/pkg/errors"
	"github.com/satrianet/inventaris-backend/pkg/logger"
	"github.com/satrianet/inventaris-backend/pkg/models"
)

const warehouse = "Gudang Inventori"

var fixedNow = time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

func newService(t *testing.T) (*Service, *store.Collection[models.Asset]) {
	t.Helper()
	col := store.NewCollection(store.NewMemory(), store.KeyAssets, func(a models.Asset) string { return a.ID })
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	svc, err := NewService(col, logg, warehouse, func() time.Time { return fixedNow })
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}
	return svc, col
}

func seed(t *testing.T, col *store.Collection[models.Asset], assets ...models.Asset) {
	t.Helper()
	if err := col.Replace(context.Background(), assets); err != nil {
		t.Fatalf("seeding assets: %v", err)
	}
}

func TestCreate_StampsFirstLogEntry(t *testing.T) {
	svc, _ := newService(t)

	created, err := svc.Create(context.Background(), models.Asset{
		ID:     "AST-240310-001",
		Name:   "Router AX2",
		Brand:  "Mikrotik",
		Status: enums.AssetStatusInStorage,
	}, LogEntry{User: "Budi", Action: "registered", ReferenceID: "REQ-240310-001"})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if len(created.ActivityLog) != 1 {
		t.Fatalf("expected exactly one log entry, got %d", len(created.ActivityLog))
	}
	entry := created.ActivityLog[0]
	if entry.User != "Budi" || entry.Action != "registered" || entry.ReferenceID != "REQ-240310-001" {
		t.Fatalf("unexpected log entry: %+v", entry)
	}
	if !entry.Timestamp.Equal(fixedNow) {
		t.Fatalf("log entry should use the injected clock: %v", entry.Timestamp)
	}
}

func TestCreate_RejectsDuplicateID(t *testing.T) {
	svc, col := newService(t)
	seed(t, col, models.Asset{ID: "AST-1", Status: enums.AssetStatusInStorage})

	_, err := svc.Create(context.Background(), models.Asset{ID: "AST-1", Status: enums.AssetStatusInStorage}, LogEntry{})
	if !pkgerrors.HasCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestApplyUpdate_PatchesAndLogsAtomically(t *testing.T) {
	svc, col := newService(t)
	seed(t, col, models.Asset{
		ID:     "AST-1",
		Status: enums.AssetStatusInStorage,
	})

	status := enums.AssetStatusInUse
	user := "CUST-7"
	location := "customer CUST-7"
	updated, err := svc.ApplyUpdate(context.Background(), "AST-1", Patch{
		Status:      &status,
		CurrentUser: &user,
		Location:    &location,
	}, &LogEntry{User: "Sari", Action: "installed", ReferenceID: "HO-240310-001"})
	if err != nil {
		t.Fatalf("ApplyUpdate error: %v", err)
	}
	if updated.Status != enums.AssetStatusInUse || updated.CurrentUser != "CUST-7" || updated.Location != "customer CUST-7" {
		t.Fatalf("patch not applied: %+v", updated)
	}
	if len(updated.ActivityLog) != 1 {
		t.Fatalf("expected one appended log entry, got %d", len(updated.ActivityLog))
	}

	persisted, err := col.Get(context.Background(), "AST-1")
	if err != nil {
		t.Fatalf("reload error: %v", err)
	}
	if persisted.Status != enums.AssetStatusInUse || len(persisted.ActivityLog) != 1 {
		t.Fatalf("update not persisted: %+v", persisted)
	}
}

func TestApplyUpdate_EmptyPointerClearsUser(t *testing.T) {
	svc, col := newService(t)
	seed(t, col, models.Asset{ID: "AST-1", Status: enums.AssetStatusInUse, CurrentUser: "CUST-7"})

	status := enums.AssetStatusInStorage
	empty := ""
	updated, err := svc.ApplyUpdate(context.Background(), "AST-1", Patch{Status: &status, CurrentUser: &empty}, nil)
	if err != nil {
		t.Fatalf("ApplyUpdate error: %v", err)
	}
	if updated.CurrentUser != "" {
		t.Fatalf("expected assignment cleared, got %q", updated.CurrentUser)
	}
	if len(updated.ActivityLog) != 0 {
		t.Fatal("nil entry must not append to the log")
	}
}

func TestApplyUpdate_UnknownAsset(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.ApplyUpdate(context.Background(), "nope", Patch{}, nil)
	if !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRegister_ManualEntry(t *testing.T) {
	svc, _ := newService(t)

	created, err := svc.Register(context.Background(), RegisterInput{
		Name:         "ONT XZ000",
		Brand:        "ZTE",
		Category:     "Perangkat Jaringan",
		Type:         "ONT",
		SerialNumber: "SN-123",
		RegisteredBy: "Budi",
	})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if created.ID != "AST-240310-001" {
		t.Fatalf("unexpected generated id: %s", created.ID)
	}
	if created.Status != enums.AssetStatusInStorage || created.Condition != enums.AssetConditionBrandNew {
		t.Fatalf("manual registration must land brand-new in storage: %+v", created)
	}
	if created.Location != warehouse {
		t.Fatalf("unexpected location: %s", created.Location)
	}
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.Register(context.Background(), RegisterInput{Name: "ONT"})
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDecommission(t *testing.T) {
	svc, col := newService(t)
	seed(t, col,
		models.Asset{ID: "AST-1", Status: enums.AssetStatusDamaged},
		models.Asset{ID: "AST-2", Status: enums.AssetStatusInUse, CurrentUser: "CUST-7"},
		models.Asset{ID: "AST-3", Status: enums.AssetStatusDecommissioned},
	)
	ctx := context.Background()

	retired, err := svc.Decommission(ctx, "AST-1", "Budi", "beyond repair")
	if err != nil {
		t.Fatalf("Decommission error: %v", err)
	}
	if retired.Status != enums.AssetStatusDecommissioned || retired.CurrentUser != "" {
		t.Fatalf("unexpected retired state: %+v", retired)
	}

	if _, err := svc.Decommission(ctx, "AST-2", "Budi", ""); !pkgerrors.HasCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("in-use assets must be retrieved first, got %v", err)
	}
	if _, err := svc.Decommission(ctx, "AST-3", "Budi", ""); !pkgerrors.HasCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("decommissioning is not repeatable, got %v", err)
	}
}
