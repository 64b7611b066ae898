package models

// UnlockPriceCents is the one-time premium unlock price in USD cents.
const UnlockPriceCents = 500

// CheckoutParams describes a hosted checkout session to create.
type CheckoutParams struct {
	Username      string
	CustomerEmail string
	AmountCents   int64
	Currency      string
	ProductName   string
	SuccessURL    string
	CancelURL     string
}

// CheckoutSession is the created hosted payment page.
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// PaymentIntent is one payment attempt as reported by the processor.
type PaymentIntent struct {
	ID       string            `json:"id"`
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Status   string            `json:"status"`
	Metadata map[string]string `json:"metadata"`
}

// PaymentStatusSucceeded is the processor status of a completed payment.
const PaymentStatusSucceeded = "succeeded"

// Paid reports whether this intent is a completed unlock purchase for
// the given username. The match is on status and metadata only; the
// charged amount is fixed at checkout creation, not re-verified here.
func (p PaymentIntent) Paid(username string) bool {
	return p.Status == PaymentStatusSucceeded &&
		p.Metadata["username"] == username
}
