package model

import "time"

// Category represents a top-level catalog grouping. Colors and sizes belong
// to exactly one category; products (handled by the storefront service) do as
// well but are not part of this API.
type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"` // unique across all categories
	LabelText   string    `json:"labelText"`
	Description *string   `json:"description,omitempty"`
	Image       string    `json:"image"`
	Colors      []Color   `json:"colors,omitempty"` // populated on includeColors=true
	Sizes       []Size    `json:"sizes,omitempty"`  // populated on includeSizes=true
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Color is a catalog color scoped to one category. The (name OR hex) pair is
// unique within its category only; two categories may define the same color.
// CategoryID never changes after creation.
type Color struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Hex        string    `json:"hex"`
	CategoryID string    `json:"categoryId"`
	Category   *Category `json:"category,omitempty"` // populated on includeCategory=true
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Size is a catalog size scoped to one category, with the same per-category
// uniqueness and immutable-category rules as Color.
type Size struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Value      string    `json:"value"`
	CategoryID string    `json:"categoryId"`
	Category   *Category `json:"category,omitempty"` // populated on includeCategory=true
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
