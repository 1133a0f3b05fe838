package model

import "time"

// OrderStatus is the terminal status of a receipt order.
type OrderStatus string

const (
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusPending   OrderStatus = "pending"
)

// Order is an immutable snapshot of the cart taken at submission time.
type Order struct {
	ID          string      `json:"id"`
	Timestamp   int64       `json:"timestamp"`
	Items       []CartItem  `json:"items"`
	TotalAmount int         `json:"totalAmount"`
	Status      OrderStatus `json:"status"`
}

// Time returns the submission time.
func (o *Order) Time() time.Time {
	return time.UnixMilli(o.Timestamp)
}

// ItemNames returns the names of the ordered items in cart order.
func (o *Order) ItemNames() []string {
	names := make([]string, len(o.Items))
	for i, item := range o.Items {
		names[i] = item.Name
	}
	return names
}

// OrderLine is one structured line of a submitted order.
type OrderLine struct {
	Name     string   `json:"name"`
	Category Category `json:"category"`
	Price    int      `json:"price"`
	Quantity int      `json:"quantity"`
	Subtotal int      `json:"subtotal"`
}

// CheckoutRequest represents the request payload for submitting the cart.
type CheckoutRequest struct {
	Orderer    string `json:"orderer"`
	PickupDate string `json:"pickupDate"`
}

// CheckoutState is the state of the checkout coordinator.
type CheckoutState string

const (
	CheckoutIdle       CheckoutState = "idle"
	CheckoutSubmitting CheckoutState = "submitting"
	CheckoutSuccess    CheckoutState = "success"
	CheckoutFailed     CheckoutState = "failed"
)

// CheckoutResponse represents the response payload for a checkout attempt.
type CheckoutResponse struct {
	State        CheckoutState `json:"state"`
	Mode         string        `json:"mode,omitempty"`
	Lines        []OrderLine   `json:"lines,omitempty"`
	Total        int           `json:"total"`
	PickupDate   string        `json:"pickupDate,omitempty"`
	Order        *Order        `json:"order,omitempty"`
	Blessing     string        `json:"blessing,omitempty"`
	ReceiptURL   string        `json:"receiptUrl,omitempty"`
	ReceiptError string        `json:"receiptError,omitempty"`
}

// ReceiptFile is a rendered receipt ready for download.
type ReceiptFile struct {
	OrderID  string
	Filename string
	Data     []byte
}

// CheckoutStatus represents the response payload for the checkout state.
type CheckoutStatus struct {
	State CheckoutState `json:"state"`
	Mode  string        `json:"mode"`
}
