package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/satrianet/inventaris-backend/internal/assets"
	"github.com/satrianet/inventaris-backend/internal/attachments"
	"github.com/satrianet/inventaris-backend/internal/catalog"
	"github.com/satrianet/inventaris-backend/internal/customers"
	"github.com/satrianet/inventaris-backend/internal/dismantles"
	"github.com/satrianet/inventaris-backend/internal/handovers"
	"github.com/satrianet/inventaris-backend/internal/loans"
	"github.com/satrianet/inventaris-backend/internal/maintenance"
	"github.com/satrianet/inventaris-backend/internal/notifications"
	"github.com/satrianet/inventaris-backend/internal/requests"
	"github.com/satrianet/inventaris-backend/internal/stock"
	"github.com/satrianet/inventaris-backend/internal/store"
	"github.com/satrianet/inventaris-backend/pkg/config"
	"github.com/satrianet/inventaris-backend/pkg/enums"
	"github.com/satrianet/inventaris-backend/pkg/logger"
	"github.com/shopspring/decimal"
)

// services bundles the wired application core. Frontends (CLI tooling, an
// embedded runtime, future transports) compose against this.
type services struct {
	Assets        *assets.Service
	Requests      *requests.Service
	Loans         *loans.Service
	Handovers     *handovers.Service
	Dismantles    *dismantles.Service
	Maintenance   *maintenance.Service
	Customers     *customers.Service
	Catalog       *catalog.Service
	Notifications *notifications.Service
	Attachments   *attachments.Service
	Stock         *stock.Aggregator
}

func main() {
	logg := logger.New(logger.Options{ServiceName: "inventaris"})
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		logg.Warn(ctx, ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "inventaris",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	backend, cleanup, publisher, err := buildBackend(ctx, cfg, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap storage", err)
		os.Exit(1)
	}
	defer cleanup()

	svcs, err := buildServices(cfg, store.New(backend), publisher, logg)
	if err != nil {
		logg.Error(ctx, "failed to wire services", err)
		os.Exit(1)
	}

	if err := report(ctx, cfg, svcs); err != nil {
		logg.Error(ctx, "inventory report failed", err)
		os.Exit(1)
	}
}

// buildBackend selects the document-store implementation from config. The
// redis backend doubles as the notification publisher.
func buildBackend(ctx context.Context, cfg *config.Config, logg *logger.Logger) (store.DocumentStore, func(), notifications.Publisher, error) {
	noop := func() {}
	switch cfg.Storage.Backend {
	case config.StorageBackendMemory:
		return store.NewMemory(), noop, nil, nil
	case config.StorageBackendFile:
		backend, err := store.NewFile(cfg.Storage.Dir)
		if err != nil {
			return nil, noop, nil, err
		}
		return backend, noop, nil, nil
	case config.StorageBackendRedis:
		backend, err := store.NewRedis(ctx, cfg.Redis, cfg.Storage.Namespace)
		if err != nil {
			return nil, noop, nil, err
		}
		cleanup := func() {
			if err := backend.Close(); err != nil {
				logg.Error(ctx, "error closing redis", err)
			}
		}
		return backend, cleanup, notifications.NewRedisPublisher(backend.Client()), nil
	default:
		return nil, noop, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

func buildServices(cfg *config.Config, st *store.Store, publisher notifications.Publisher, logg *logger.Logger) (*services, error) {
	assetSvc, err := assets.NewService(st.Assets, logg, cfg.Policy.WarehouseLocation, nil)
	if err != nil {
		return nil, err
	}
	requestSvc, err := requests.NewService(st.Requests, st.Assets, assetSvc, logg, nil)
	if err != nil {
		return nil, err
	}
	notificationSvc, err := notifications.NewService(st.Notifications, publisher, logg, nil)
	if err != nil {
		return nil, err
	}
	loanSvc, err := loans.NewService(st.LoanRequests, st.Assets, assetSvc, notificationSvc, logg, nil)
	if err != nil {
		return nil, err
	}
	handoverSvc, err := handovers.NewService(st.Handovers, logg, nil)
	if err != nil {
		return nil, err
	}
	dismantleSvc, err := dismantles.NewService(st.Dismantles, assetSvc, logg, nil)
	if err != nil {
		return nil, err
	}
	maintenanceSvc, err := maintenance.NewService(st.Maintenances, st.Customers, st.Categories, assetSvc, logg, nil)
	if err != nil {
		return nil, err
	}
	customerSvc, err := customers.NewService(st.Customers, st.Assets, logg)
	if err != nil {
		return nil, err
	}
	catalogSvc, err := catalog.NewService(st.Categories, st.Assets, logg)
	if err != nil {
		return nil, err
	}
	attachmentSvc, err := attachments.NewService(cfg.Attachments.Dir, cfg.Attachments.MaxSizeBytes, logg)
	if err != nil {
		return nil, err
	}
	aggregator, err := stock.NewAggregator(st.Assets, st.Categories)
	if err != nil {
		return nil, err
	}
	return &services{
		Assets:        assetSvc,
		Requests:      requestSvc,
		Loans:         loanSvc,
		Handovers:     handoverSvc,
		Dismantles:    dismantleSvc,
		Maintenance:   maintenanceSvc,
		Customers:     customerSvc,
		Catalog:       catalogSvc,
		Notifications: notificationSvc,
		Attachments:   attachmentSvc,
		Stock:         aggregator,
	}, nil
}

// report prints the stock summary and an asset integrity check to stdout,
// the operational snapshot run on startup and from cron.
func report(ctx context.Context, cfg *config.Config, svcs *services) error {
	summary, err := svcs.Stock.Summarize(ctx, stock.Thresholds{})
	if err != nil {
		return err
	}
	if cfg.Policy.LowStockThreshold != stock.DefaultLowStockThreshold {
		threshold := decimal.NewFromInt(int64(cfg.Policy.LowStockThreshold))
		for i := range summary {
			summary[i].LowStock = summary[i].InStorage.LessThan(threshold)
		}
	}

	type output struct {
		Stock      []stock.ModelStock `json:"stock"`
		LowStock   []string           `json:"lowStock"`
		Violations []string           `json:"violations"`
	}
	out := output{Stock: summary}
	for _, line := range summary {
		if line.LowStock {
			out.LowStock = append(out.LowStock, stock.Key(line.Name, line.Brand))
		}
	}

	allAssets, err := svcs.Assets.List(ctx)
	if err != nil {
		return err
	}
	for _, asset := range allAssets {
		switch {
		case asset.Status == enums.AssetStatusInUse && asset.CurrentUser == "":
			out.Violations = append(out.Violations,
				fmt.Sprintf("%s is in_use with no current user", asset.ID))
		case asset.Status == enums.AssetStatusInStorage && asset.CurrentUser != "":
			out.Violations = append(out.Violations,
				fmt.Sprintf("%s is in_storage but assigned to %s", asset.ID, asset.CurrentUser))
		case !asset.Status.IsValid():
			out.Violations = append(out.Violations,
				fmt.Sprintf("%s has unknown status %q", asset.ID, asset.Status))
		}
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}
