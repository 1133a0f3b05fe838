package model

// SessionResponse represents the response payload for a new session.
type SessionResponse struct {
	ID string `json:"id"`
}

// ViewIntentRequest represents the request payload for a navigation intent.
// Category is only read by the select_store intent.
type ViewIntentRequest struct {
	Intent   string `json:"intent"`
	Category string `json:"category,omitempty"`
}
