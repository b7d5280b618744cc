package model

import "time"

// Product is an inventory item stored at users/{uid}/products/{id}.
// Unlike articles, the record carries its own id.
type Product struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Category     string    `json:"category"`
	Price        float64   `json:"price"`
	Stock        int       `json:"stock"`
	Description  string    `json:"description"`
	Manufacturer string    `json:"manufacturer"`
	SKU          string    `json:"sku"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ProductInput holds the user-editable product fields.
type ProductInput struct {
	Name         string  `json:"name"`
	Category     string  `json:"category"`
	Price        float64 `json:"price"`
	Stock        int     `json:"stock"`
	Description  string  `json:"description"`
	Manufacturer string  `json:"manufacturer"`
	SKU          string  `json:"sku"`
}

// ProductCatalog is a user's product list together with the categories
// derived from it.
type ProductCatalog struct {
	Products   []Product `json:"products"`
	Categories []string  `json:"categories"`
}
