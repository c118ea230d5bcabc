package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to TransferStatus
		want     bool
	}{
		{TransferDraft, TransferPendingApproval, true},
		{TransferPendingApproval, TransferActive, true},
		{TransferActive, TransferProcessing, true},
		{TransferProcessing, TransferSent, true},
		{TransferProcessing, TransferFundsReturned, true},

		// Cancellation from any non-terminal state.
		{TransferDraft, TransferCancelled, true},
		{TransferPendingApproval, TransferCancelled, true},
		{TransferActive, TransferCancelled, true},
		{TransferProcessing, TransferCancelled, true},

		// Illegal steps.
		{TransferDraft, TransferActive, false},
		{TransferDraft, TransferProcessing, false},
		{TransferActive, TransferSent, false},
		{TransferPendingApproval, TransferProcessing, false},

		// Terminal states admit nothing, including cancellation.
		{TransferSent, TransferCancelled, false},
		{TransferFundsReturned, TransferCancelled, false},
		{TransferCancelled, TransferActive, false},
		{TransferCancelled, TransferCancelled, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CanTransition(tt.from, tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}

func TestTransferStatus_Terminal(t *testing.T) {
	assert.True(t, TransferSent.Terminal())
	assert.True(t, TransferFundsReturned.Terminal())
	assert.True(t, TransferCancelled.Terminal())

	assert.False(t, TransferDraft.Terminal())
	assert.False(t, TransferPendingApproval.Terminal())
	assert.False(t, TransferActive.Terminal())
	assert.False(t, TransferProcessing.Terminal())
}

func TestTransfer_Transition(t *testing.T) {
	now := time.Now()

	t.Run("legal step advances and stamps", func(t *testing.T) {
		transfer := &Transfer{ID: "tr-1", Status: TransferActive}
		require.NoError(t, transfer.Transition(TransferProcessing, now))
		assert.Equal(t, TransferProcessing, transfer.Status)
		assert.Equal(t, now, transfer.UpdatedAt)
	})

	t.Run("illegal step keeps state", func(t *testing.T) {
		transfer := &Transfer{ID: "tr-2", Status: TransferDraft}
		err := transfer.Transition(TransferProcessing, now)
		require.ErrorIs(t, err, ErrInvalidTransition)
		assert.Equal(t, KindState, KindOf(err))
		assert.Equal(t, TransferDraft, transfer.Status)
	})

	t.Run("terminal transfer is immutable", func(t *testing.T) {
		transfer := &Transfer{ID: "tr-3", Status: TransferSent}
		err := transfer.Transition(TransferCancelled, now)
		require.ErrorIs(t, err, ErrTransferFinalized)
		assert.Equal(t, TransferSent, transfer.Status)
	})
}
