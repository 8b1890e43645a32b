package models

import (
	"time"

	"github.com/satrianet/inventaris-backend/pkg/enums"
)

// Handover is a signed custody-transfer record. It is the audit artifact of
// a transfer, never the mutation trigger: completing one does not touch the
// referenced assets.
type Handover struct {
	DocNumber string    `json:"docNumber"`
	Date      time.Time `json:"date"`
	Sender    string    `json:"sender"`
	Receiver  string    `json:"receiver"`
	Witness   string    `json:"witness,omitempty"`
	// ReferenceID is the upstream request or loan number when the handover
	// was prefilled from a workflow; empty for ad hoc staff transfers.
	ReferenceID string           `json:"referenceId,omitempty"`
	Items       []HandoverItem   `json:"items"`
	Status      enums.ItemStatus `json:"status"`
	Notes       string           `json:"notes,omitempty"`
	CompletedBy string           `json:"completedBy,omitempty"`
}

// HandoverItem is one transferred line, optionally tied to a concrete asset.
type HandoverItem struct {
	Name         string `json:"name"`
	Brand        string `json:"brand,omitempty"`
	Quantity     int    `json:"quantity"`
	AssetID      string `json:"assetId,omitempty"`
	SerialNumber string `json:"serialNumber,omitempty"`
}
