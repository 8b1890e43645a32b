package models

import "github.com/shopspring/decimal"

// Customer is a subscriber premises, carrying the running ledger of bulk
// materials installed there. The ledger is mutated additively by the
// maintenance and installation workflows.
type Customer struct {
	ID                 string              `json:"id"`
	Name               string              `json:"name"`
	Address            string              `json:"address,omitempty"`
	Phone              string              `json:"phone,omitempty"`
	Email              string              `json:"email,omitempty"`
	InstalledMaterials []InstalledMaterial `json:"installedMaterials,omitempty"`
}

// InstalledMaterial is one (itemName, brand) line of the premises ledger.
type InstalledMaterial struct {
	ItemName string          `json:"itemName"`
	Brand    string          `json:"brand"`
	Quantity decimal.Decimal `json:"quantity"`
	Unit     string          `json:"unit,omitempty"`
}

// Material returns the ledger line matching (itemName, brand), or nil.
func (c *Customer) Material(itemName, brand string) *InstalledMaterial {
	for idx := range c.InstalledMaterials {
		if c.InstalledMaterials[idx].ItemName == itemName && c.InstalledMaterials[idx].Brand == brand {
			return &c.InstalledMaterials[idx]
		}
	}
	return nil
}
