package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID          int64   `db:"id" json:"id"`
	Name        string  `db:"name" json:"name"`
	Slug        string  `db:"slug" json:"slug"`
	Description *string `db:"description" json:"description,omitempty"`
}

type CategoryInput struct {
	Name        string  `json:"name" validate:"required,min=2,max=100"`
	Slug        string  `json:"slug" validate:"required,min=2,max=100"`
	Description *string `json:"description"`
}

type Product struct {
	ID          int64            `db:"id" json:"id"`
	Name        string           `db:"name" json:"name"`
	Description *string          `db:"description" json:"description,omitempty"`
	SKU         string           `db:"sku" json:"sku"`
	Price       decimal.Decimal  `db:"price" json:"price"`
	Stock       int64            `db:"stock" json:"stock"`
	Images      []string         `db:"images" json:"images"`
	CategoryID  *int64           `db:"category_id" json:"categoryId,omitempty"`
	Variants    VariantSelection `db:"variants" json:"variants"`
	CreatedAt   time.Time        `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time        `db:"updated_at" json:"updatedAt"`
}

type ProductInput struct {
	Name        string           `json:"name" validate:"required,min=2,max=200"`
	Description *string          `json:"description"`
	SKU         string           `json:"sku" validate:"required,min=1,max=64"`
	Price       decimal.Decimal  `json:"price"`
	Stock       int64            `json:"stock" validate:"gte=0,lte=2147483647"`
	Images      []string         `json:"images" validate:"required,min=1,dive,required"`
	CategoryID  *int64           `json:"categoryId"`
	Variants    VariantSelection `json:"variants"`
}

type UpdateProductInput struct {
	Name        *string           `json:"name"`
	Description *string           `json:"description"`
	SKU         *string           `json:"sku"`
	Price       *decimal.Decimal  `json:"price"`
	Stock       *int64            `json:"stock" validate:"omitempty,gte=0,lte=2147483647"`
	Images      []string          `json:"images"`
	CategoryID  *int64            `json:"categoryId"`
	Variants    *VariantSelection `json:"variants"`
}

type ProductFilter struct {
	CategoryID *int64
	Search     string
	Limit      int64
	Offset     int64
}

type Banner struct {
	ID        int64     `db:"id" json:"id"`
	Title     string    `db:"title" json:"title"`
	Images    []string  `db:"images" json:"images"`
	Link      *string   `db:"link" json:"link,omitempty"`
	Type      string    `db:"type" json:"type"`
	Active    bool      `db:"active" json:"active"`
	Position  int32     `db:"position" json:"position"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

type BannerInput struct {
	Title    string   `json:"title" validate:"required"`
	Images   []string `json:"images" validate:"required,min=1,dive,required"`
	Link     *string  `json:"link"`
	Type     string   `json:"type"`
	Active   bool     `json:"active"`
	Position int32    `json:"position"`
}
