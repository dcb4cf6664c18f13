// Package models holds the server's domain records.
package models

import "time"

// Account is a registered user as kept by the credential store. Username is
// the primary key and never changes. PasswordHash is an opaque bcrypt string
// and must never leave the service layer; use Public for anything returned
// to a caller.
type Account struct {
	Username     string
	Email        string
	PasswordHash string
	Disabled     bool
	CreatedAt    time.Time
}

// PublicAccount is the caller-visible view of an Account.
type PublicAccount struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Disabled bool   `json:"disabled"`
}

// Public strips everything but the public fields.
func (a *Account) Public() *PublicAccount {
	return &PublicAccount{
		Username: a.Username,
		Email:    a.Email,
		Disabled: a.Disabled,
	}
}
