package pharmacy

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/record"
)

// Product categories stocked by a pharmacy.
var productCategories = []string{
	"MEDICINE", "SUPPLEMENT", "EQUIPMENT", "COSMETIC", "OTHER",
}

// Product maps to the product table. SKU is unique within its pharmacy;
// barcode is unique across all pharmacies.
type Product struct {
	ID           uuid.UUID     `db:"id" json:"id"`
	PharmacyID   uuid.UUID     `db:"pharmacy_id" json:"pharmacyId"`
	Name         string        `db:"name" json:"name"`
	SKU          string        `db:"sku" json:"sku"`
	Barcode      *string       `db:"barcode" json:"barcode,omitempty"`
	Description  *string       `db:"description" json:"description,omitempty"`
	Category     string        `db:"category" json:"category"`
	Price        record.Number `db:"price" json:"price"`
	Stock        record.Number `db:"stock" json:"stock"`
	ReorderLevel record.Number `db:"reorder_level" json:"reorderLevel"`
	Active       bool          `db:"active" json:"isActive"`
	CreatedAt    time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time     `db:"updated_at" json:"updatedAt"`
}

var ProductRules = record.RuleSet{
	Required: []string{"name", "sku", "category", "price"},
	Formats: record.FieldRules{
		"name":         {record.MaxLen(200)},
		"sku":          {record.MaxLen(64)},
		"category":     {record.OneOf(productCategories...)},
		"price":        {record.Min(0)},
		"stock":        {record.Min(0)},
		"reorderLevel": {record.Min(0)},
	},
}

func (p *Product) draft() map[string]string {
	return map[string]string{
		"name":         p.Name,
		"sku":          p.SKU,
		"category":     p.Category,
		"price":        p.Price.String(),
		"stock":        p.Stock.String(),
		"reorderLevel": p.ReorderLevel.String(),
	}
}

func (p *Product) normalize() {
	trim := func(s string) string {
		t := record.TrimString(&s)
		if t == nil {
			return ""
		}
		return *t
	}
	p.Name = trim(p.Name)
	p.SKU = trim(p.SKU)
	p.Category = strings.ToUpper(trim(p.Category))
	p.Barcode = record.TrimString(p.Barcode)
	p.Description = record.TrimString(p.Description)
	if !p.Stock.Valid {
		p.Stock = record.NewNumber(0)
	}
	if !p.ReorderLevel.Valid {
		p.ReorderLevel = record.NewNumber(0)
	}
}

// LowStock reports whether the product is at or below its reorder level.
func (p *Product) LowStock() bool {
	return p.Stock.Value <= p.ReorderLevel.Value
}
