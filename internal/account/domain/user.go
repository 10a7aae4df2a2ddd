package domain

import "github.com/dwikikusuma/shoping-checkout/pkg/apperr"

// User is the identity managed by the accounts system. Checkout only needs
// the email for payment requests.
type User struct {
	ID    string
	Email string
}

var ErrNotFound = apperr.New(apperr.ErrNotFound, "USER_NOT_FOUND", "user not found")
