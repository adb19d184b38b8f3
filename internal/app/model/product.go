package model

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

type ProductCategory string

const (
	CategoryMen         ProductCategory = "MEN"
	CategoryShoes       ProductCategory = "SHOES"
	CategoryKids        ProductCategory = "KIDS"
	CategoryBags        ProductCategory = "BAGS"
	CategoryAccessories ProductCategory = "ACCESSORIES"
)

// KnownCategories is the storefront's built-in category set. Products may
// carry other upper-case categories.
var KnownCategories = []ProductCategory{
	CategoryMen,
	CategoryShoes,
	CategoryKids,
	CategoryBags,
	CategoryAccessories,
}

// NormalizeCategory trims and upper-cases a category value
func NormalizeCategory(raw string) ProductCategory {
	return ProductCategory(strings.ToUpper(strings.TrimSpace(raw)))
}

type Product struct {
	ID          uint            `gorm:"primarykey" json:"id"`
	Name        string          `gorm:"not null" json:"name" validate:"required,max=200"`
	Brand       string          `gorm:"type:varchar(100)" json:"brand" validate:"max=100"`
	Category    ProductCategory `gorm:"type:varchar(50);index" json:"category" validate:"required,category"`
	Images      []string        `gorm:"serializer:json;type:text;not null" json:"images" validate:"min=1,dive,required,uri"`
	Description string          `gorm:"type:text" json:"description"`
	Price       float64         `gorm:"not null" json:"price" validate:"gte=0"`
	CreatedAt   time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (Product) TableName() string {
	return "products"
}

// ProductUpdate holds a partial update; nil fields are left unchanged
type ProductUpdate struct {
	Name        *string
	Brand       *string
	Category    *ProductCategory
	Images      []string
	Description *string
	Price       *float64
}

// Apply copies the provided fields onto p
func (u ProductUpdate) Apply(p *Product) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Brand != nil {
		p.Brand = *u.Brand
	}
	if u.Category != nil {
		p.Category = *u.Category
	}
	if u.Images != nil {
		p.Images = append([]string(nil), u.Images...)
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.Price != nil {
		p.Price = *u.Price
	}
}
