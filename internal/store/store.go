// Package store implements the keyed document contract the domain persists
// through: each top-level entity collection is stored whole under its own key
// and overwritten wholesale on every mutation. There are no partial writes
// and no migrations; a backend only needs Load and Save.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Load when the key has never been saved. Callers
// keep their zero value, which for collections means an empty slice.
var ErrNotFound = errors.New("store: key not found")

// Collection keys. One JSON document per key.
const (
	KeyAssets        = "assets"
	KeyRequests      = "requests"
	KeyLoanRequests  = "loan_requests"
	KeyHandovers     = "handovers"
	KeyDismantles    = "dismantles"
	KeyMaintenances  = "maintenances"
	KeyCustomers     = "customers"
	KeyCategories    = "asset_categories"
	KeyNotifications = "notifications"
)

// DocumentStore is the minimal contract any storage backend must satisfy.
type DocumentStore interface {
	// Load unmarshals the document under key into out. Missing keys return
	// ErrNotFound and leave out untouched.
	Load(ctx context.Context, key string, out any) error
	// Save overwrites the document under key with the JSON encoding of value.
	Save(ctx context.Context, key string, value any) error
}
