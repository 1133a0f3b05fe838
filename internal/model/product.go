package model

// Product represents a purchasable item in the catalogue.
// Price is in whole NT dollars.
type Product struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Price    int      `json:"price"`
	Category Category `json:"category"`
	ImageURL string   `json:"imageUrl,omitempty"`
}

// Section groups the products of one store category.
type Section struct {
	Category Category  `json:"category"`
	Products []Product `json:"products"`
}

// CustomProductRequest represents the request payload for adding a custom product.
type CustomProductRequest struct {
	Name     string `json:"name"`
	Price    int    `json:"price"`
	Category string `json:"category,omitempty"`
	ImageURL string `json:"imageUrl,omitempty"`
}
