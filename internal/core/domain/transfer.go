package domain

import "time"

// TransferStatus is the payout state set.
type TransferStatus string

const (
	TransferDraft           TransferStatus = "draft"
	TransferPendingApproval TransferStatus = "pending_approval"
	TransferActive          TransferStatus = "active"
	TransferProcessing      TransferStatus = "processing"
	TransferSent            TransferStatus = "outgoing_payment_sent"
	TransferFundsReturned   TransferStatus = "funds_returned"
	TransferCancelled       TransferStatus = "cancelled"
)

// Terminal reports whether the status is irreversible.
func (s TransferStatus) Terminal() bool {
	switch s {
	case TransferSent, TransferFundsReturned, TransferCancelled:
		return true
	}
	return false
}

// transitions is the allowed successor set for each non-terminal status.
// Cancellation from any non-terminal state is handled separately.
var transitions = map[TransferStatus][]TransferStatus{
	TransferDraft:           {TransferPendingApproval},
	TransferPendingApproval: {TransferActive},
	TransferActive:          {TransferProcessing},
	TransferProcessing:      {TransferSent, TransferFundsReturned},
}

// CanTransition reports whether moving from -> to is a legal step,
// including cancellation from any non-terminal state.
func CanTransition(from, to TransferStatus) bool {
	if from.Terminal() {
		return false
	}
	if to == TransferCancelled {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transfer links a Quote to a Recipient and tracks the payout lifecycle.
type Transfer struct {
	ID             string         `json:"id"`
	QuoteID        string         `json:"quote_id"`
	RecipientID    string         `json:"recipient_id"`
	IdempotencyKey string         `json:"idempotency_key"`
	Status         TransferStatus `json:"status"`
	Reference      string         `json:"reference,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// Transition moves the transfer to the given status, enforcing the state
// machine. Mutations on a terminal transfer fail with ErrTransferFinalized;
// other illegal steps fail with ErrInvalidTransition.
func (t *Transfer) Transition(to TransferStatus, now time.Time) error {
	if t.Status.Terminal() {
		return NewError(KindState, ErrTransferFinalized,
			"transfer "+t.ID+" already finalized in status "+string(t.Status), "TRANSFER_FINALIZED")
	}
	if !CanTransition(t.Status, to) {
		return NewError(KindState, ErrInvalidTransition,
			"cannot move transfer from "+string(t.Status)+" to "+string(to), "INVALID_TRANSITION")
	}
	t.Status = to
	t.UpdatedAt = now
	return nil
}
