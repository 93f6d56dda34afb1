package domain

// CheckoutResult is what a balance checkout returns, and what is replayed for
// a repeated Idempotency-Key.
type CheckoutResult struct {
	Order   *Order   `json:"order"`
	Balance *Account `json:"balance,omitempty"`
}

// BuildIdempotencyKey scopes a client key to the user that sent it.
func BuildIdempotencyKey(userID, clientKey string) string {
	return "checkout:" + userID + ":" + clientKey
}
