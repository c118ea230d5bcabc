package domain

// PaymentStatus is the internal status vocabulary for direct payments.
// Every adapter maps its provider's native statuses onto this set.
type PaymentStatus string

const (
	StatusPending    PaymentStatus = "pending"
	StatusApproved   PaymentStatus = "approved"
	StatusDeclined   PaymentStatus = "declined"
	StatusProcessing PaymentStatus = "processing"
	StatusCancelled  PaymentStatus = "cancelled"
)

// Final reports whether the status marks the end of a payment's lifecycle.
func (s PaymentStatus) Final() bool {
	switch s {
	case StatusApproved, StatusDeclined, StatusCancelled:
		return true
	}
	return false
}
