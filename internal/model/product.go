package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog listing owned by the user that created it.
type Product struct {
	ID              uint            `json:"id" gorm:"primaryKey"`
	Name            string          `json:"name" gorm:"size:255;not null"`
	Description     string          `json:"description" gorm:"type:text"`
	Price           decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
	ProductImageURL string          `json:"product_image_url" gorm:"size:500"`
	CreatedBy       uint            `json:"created_by" gorm:"not null;index"` // owner, fixed at creation
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`

	// Relations
	Owner User `json:"-" gorm:"foreignKey:CreatedBy;constraint:OnDelete:RESTRICT"`
}

// ProductPatch carries the fields present in an update payload. Nil means keep.
type ProductPatch struct {
	Name            *string
	Description     *string
	Price           *decimal.Decimal
	ProductImageURL *string
}

// Apply copies every present field onto p.
func (pp ProductPatch) Apply(p *Product) {
	if pp.Name != nil {
		p.Name = *pp.Name
	}
	if pp.Description != nil {
		p.Description = *pp.Description
	}
	if pp.Price != nil {
		p.Price = *pp.Price
	}
	if pp.ProductImageURL != nil {
		p.ProductImageURL = *pp.ProductImageURL
	}
}

// Empty reports whether the patch changes nothing.
func (pp ProductPatch) Empty() bool {
	return pp.Name == nil && pp.Description == nil && pp.Price == nil && pp.ProductImageURL == nil
}
