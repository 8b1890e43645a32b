package models

import (
	"time"

	"github.com/satrianet/inventaris-backend/pkg/enums"
)

// Dismantle is the retrieval of exactly one asset from exactly one customer.
// It stays in_progress until the warehouse acknowledges the asset back into
// storage; until then it represents stock not yet reconciled.
type Dismantle struct {
	DocNumber          string               `json:"docNumber"`
	Date               time.Time            `json:"date"`
	AssetID            string               `json:"assetId"`
	CustomerID         string               `json:"customerId"`
	Technician         string               `json:"technician"`
	RetrievedCondition enums.AssetCondition `json:"retrievedCondition"`
	Notes              string               `json:"notes,omitempty"`
	Attachments        []string             `json:"attachments,omitempty"`
	Status             enums.ItemStatus     `json:"status"`
	Acknowledger       string               `json:"acknowledger,omitempty"`
	CompletionDate     *time.Time           `json:"completionDate,omitempty"`
}
