package store

import (
	"github.com/satrianet/inventaris-backend/pkg/models"
)

// Store bundles the typed collections over one backend, the full entity
// snapshot every workflow operates on.
type Store struct {
	Assets        *Collection[models.Asset]
	Requests      *Collection[models.Request]
	LoanRequests  *Collection[models.LoanRequest]
	Handovers     *Collection[models.Handover]
	Dismantles    *Collection[models.Dismantle]
	Maintenances  *Collection[models.Maintenance]
	Customers     *Collection[models.Customer]
	Categories    *Collection[models.AssetCategory]
	Notifications *Collection[models.Notification]
}

// New wires the typed collections onto a backend.
func New(backend DocumentStore) *Store {
	return &Store{
		Assets:        NewCollection(backend, KeyAssets, func(a models.Asset) string { return a.ID }),
		Requests:      NewCollection(backend, KeyRequests, func(r models.Request) string { return r.ID }),
		LoanRequests:  NewCollection(backend, KeyLoanRequests, func(l models.LoanRequest) string { return l.ID }),
		Handovers:     NewCollection(backend, KeyHandovers, func(h models.Handover) string { return h.DocNumber }),
		Dismantles:    NewCollection(backend, KeyDismantles, func(d models.Dismantle) string { return d.DocNumber }),
		Maintenances:  NewCollection(backend, KeyMaintenances, func(m models.Maintenance) string { return m.DocNumber }),
		Customers:     NewCollection(backend, KeyCustomers, func(c models.Customer) string { return c.ID }),
		Categories:    NewCollection(backend, KeyCategories, func(c models.AssetCategory) string { return c.ID }),
		Notifications: NewCollection(backend, KeyNotifications, func(n models.Notification) string { return n.ID.String() }),
	}
}
