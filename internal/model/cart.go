package model

// CartItem is a product together with the quantity held in the cart.
// The JSON layout is also the durable snapshot format.
type CartItem struct {
	Product
	Quantity int `json:"quantity"`
}

// Subtotal returns price × quantity.
func (i CartItem) Subtotal() int {
	return i.Price * i.Quantity
}

// TotalOf returns the sum of price × quantity across items.
func TotalOf(items []CartItem) int {
	total := 0
	for _, item := range items {
		total += item.Subtotal()
	}
	return total
}

// CartResponse represents the response payload for the cart.
type CartResponse struct {
	Items []CartItem `json:"items"`
	Count int        `json:"count"`
	Total int        `json:"total"`
}

// AddToCartRequest represents the request payload for adding a product to the cart.
type AddToCartRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// UpdateQuantityRequest represents the request payload for adjusting a cart line.
type UpdateQuantityRequest struct {
	Delta int `json:"delta"`
}

// Notification is the transient acknowledgment shown after adding to the cart.
type Notification struct {
	Message string `json:"message"`
	Visible bool   `json:"visible"`
}
