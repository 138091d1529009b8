package notification

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	t.Run("SuccessfulCreation", func(t *testing.T) {
		beforeCreation := time.Now()
		event := NewEvent("user-1", "Payment Confirmed", "Your payment of 1000 NGN has been confirmed. We are processing your transaction.", TypePaymentReceived, "TX12345678", "corr-1")
		afterCreation := time.Now()

		require.NotNil(t, event)
		assert.NotEqual(t, uuid.Nil, event.EventID, "Event ID should not be nil")
		assert.Equal(t, "user-1", event.UserID)
		assert.Equal(t, "Payment Confirmed", event.Title)
		assert.Equal(t, TypePaymentReceived, event.Type)
		assert.Equal(t, "TX12345678", event.RelatedEntityID)
		assert.Equal(t, "corr-1", event.CorrelationID)
		assert.WithinDuration(t, beforeCreation, event.Timestamp, afterCreation.Sub(beforeCreation)+time.Millisecond)
	})

	t.Run("EventIDsAreUnique", func(t *testing.T) {
		a := NewEvent("user-1", "t", "m", TypeReceiptReady, "", "")
		b := NewEvent("user-1", "t", "m", TypeReceiptReady, "", "")
		assert.NotEqual(t, a.EventID, b.EventID)
	})
}

func TestFromEvent(t *testing.T) {
	event := NewEvent("user-3", "Transfer in Progress", "We are transferring 290 INR to your recipient.", TypePaymentSent, "TXDEF00001", "corr-9")

	n := FromEvent(event)

	require.NotNil(t, n)
	assert.Equal(t, event.EventID, n.ID, "inbox entry reuses the event identifier for deduplication")
	assert.Equal(t, event.UserID, n.UserID)
	assert.Equal(t, event.Title, n.Title)
	assert.Equal(t, event.Message, n.Message)
	assert.Equal(t, event.Type, n.Type)
	assert.Equal(t, event.RelatedEntityID, n.RelatedEntityID)
	assert.False(t, n.IsRead)
	assert.Equal(t, event.Timestamp, n.CreatedAt)
}
