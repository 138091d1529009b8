package transaction

// Status defines the lifecycle states of a transaction
type Status string

const (
	StatusAwaitingPayment    Status = "awaiting_payment"
	StatusPaymentReceived    Status = "payment_received"
	StatusTransferInProgress Status = "transfer_in_progress"
	StatusCompleted          Status = "completed"
	StatusFailed             Status = "failed"
)

// allowedTransitions is the strict lifecycle graph. Terminal states have no
// outgoing edges; any transition not listed here is rejected.
var allowedTransitions = map[Status][]Status{
	StatusAwaitingPayment:    {StatusPaymentReceived},
	StatusPaymentReceived:    {StatusTransferInProgress, StatusFailed},
	StatusTransferInProgress: {StatusCompleted, StatusFailed},
	StatusCompleted:          {},
	StatusFailed:             {},
}

// Valid reports whether the status is a known lifecycle state
func (s Status) Valid() bool {
	_, ok := allowedTransitions[s]
	return ok
}

// Terminal reports whether the status has no outgoing transitions
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// CanTransitionTo reports whether moving from s to target follows the lifecycle graph
func (s Status) CanTransitionTo(target Status) bool {
	for _, next := range allowedTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}
