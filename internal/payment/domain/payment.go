package domain

// Request is the payload handed to the payment gateway for one order.
type Request struct {
	Reference string `json:"reference"`
	Sender    string `json:"sender_email"`
	Receiver  string `json:"receiver_email,omitempty"`
	Sandbox   bool   `json:"sandbox"`
	Items     []Line `json:"items"`
}

type Line struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Quantity    int32  `json:"quantity"`
	// Amount is the unit price with exactly two decimals, e.g. "10.00".
	Amount string `json:"amount"`
}

// Outcome of applying a gateway notification.
type Outcome string

const (
	OutcomeApplied Outcome = "applied"
	OutcomeIgnored Outcome = "ignored"
)
