// Package models defines client-side data models used by the authkeeper CLI.
package models

import "fmt"

// Account is the public view of a registered user as reported by the server.
type Account struct {
	Username string
	Email    string
	Disabled bool
}

// String renders the account for the terminal.
func (a *Account) String() string {
	state := "active"
	if a.Disabled {
		state = "disabled"
	}
	if a.Email == "" {
		return fmt.Sprintf("%s (%s)", a.Username, state)
	}
	return fmt.Sprintf("%s <%s> (%s)", a.Username, a.Email, state)
}
