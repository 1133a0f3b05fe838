package model

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON          = "INVALID_JSON"
	ErrCodeMissingField         = "MISSING_FIELD"
	ErrCodeProductNotFound      = "PRODUCT_NOT_FOUND"
	ErrCodeInvalidCategory      = "INVALID_CATEGORY"
	ErrCodeInvalidPrice         = "INVALID_PRICE"
	ErrCodeInvalidPickupDate    = "INVALID_PICKUP_DATE"
	ErrCodeMissingOrderer       = "MISSING_ORDERER"
	ErrCodeCustomDisabled       = "CUSTOM_PRODUCTS_DISABLED"
	ErrCodeSubmissionInProgress = "SUBMISSION_IN_PROGRESS"
	ErrCodeSubmissionFailed     = "SUBMISSION_FAILED"
	ErrCodeReceiptNotFound      = "RECEIPT_NOT_FOUND"
	ErrCodeInvalidIntent        = "INVALID_INTENT"
	ErrCodeInternalError        = "INTERNAL_ERROR"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrProductNotFound        = NewDomainError(ErrCodeProductNotFound, "Product not found")
	ErrInvalidCategory        = NewDomainError(ErrCodeInvalidCategory, "Category is not a known pickup source")
	ErrInvalidPrice           = NewDomainError(ErrCodeInvalidPrice, "Price must not be negative")
	ErrMissingName            = NewDomainError(ErrCodeMissingField, "Product name is required")
	ErrInvalidPickupDate      = NewDomainError(ErrCodeInvalidPickupDate, "Pickup date must be a valid date")
	ErrMissingOrderer         = NewDomainError(ErrCodeMissingOrderer, "Orderer name is required")
	ErrCustomProductsDisabled = NewDomainError(ErrCodeCustomDisabled, "Custom products are not enabled")
	ErrSubmissionInProgress   = NewDomainError(ErrCodeSubmissionInProgress, "An order is already being submitted")
	ErrSubmissionFailed       = NewDomainError(ErrCodeSubmissionFailed, "訂單送出失敗，請重試。")
	ErrReceiptNotFound        = NewDomainError(ErrCodeReceiptNotFound, "Receipt not found")
	ErrInvalidIntent          = NewDomainError(ErrCodeInvalidIntent, "Unknown view intent")
)
