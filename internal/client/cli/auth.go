package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/authkeeper/internal/client/client"
	"github.com/dmitrijs2005/authkeeper/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

func (a *App) writer() io.Writer {
	if a.out == nil {
		return os.Stdout
	}
	return a.out
}

func (a *App) say(format string, args ...any) {
	fmt.Fprintf(a.writer(), format+"\n", args...)
}

// describe turns a service error into a line for the terminal.
func describe(err error, unauthorized string) string {
	switch {
	case errors.Is(err, client.ErrUnauthorized):
		return unauthorized
	case errors.Is(err, client.ErrAlreadyExists):
		return "Username already registered"
	case errors.Is(err, client.ErrInvalidArgument):
		return err.Error()
	case errors.Is(err, client.ErrUnavailable):
		return "Server unavailable, try again later"
	case errors.Is(err, client.ErrNotLoggedIn):
		return "Not logged in"
	default:
		return "Error: " + err.Error()
	}
}

// Signup prompts for username, email and password and creates the account.
// The password byte slice is wiped before returning.
func (a *App) Signup(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", a.writer())
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.writer())
	if err != nil {
		return err
	}

	password, err := getPassword(a.writer())
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	acc, err := a.authService.Signup(ctx, userName, password, email)
	if err != nil {
		a.say("Signup failed: %s", describe(err, "Signup rejected"))
		return err
	}

	a.say("Account created: %s", acc)
	return nil
}

// Login prompts for credentials, exchanges them for an access token and keeps
// the session in the local cache.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", a.writer())
	if err != nil {
		return err
	}

	password, err := getPassword(a.writer())
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if err := a.authService.Login(ctx, userName, password); err != nil {
		a.say("Login failed: %s", describe(err, "Incorrect username or password"))
		return err
	}

	a.userName = userName
	a.say("Logged in as %s", userName)
	return nil
}

// Whoami shows the account the cached token belongs to. A rejected token ends
// the local session.
func (a *App) Whoami(ctx context.Context) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	acc, err := a.authService.Whoami(ctx)
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) || errors.Is(err, client.ErrNotLoggedIn) {
			a.userName = ""
		}
		a.say("%s", describe(err, "Session expired or invalid, please log in again"))
		return err
	}

	a.say("%s", acc)
	return nil
}

// Logout forgets the cached session.
func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.Logout(ctx); err != nil {
		a.say("Logout failed: %s", describe(err, "Logout rejected"))
		return err
	}
	a.userName = ""
	a.say("Logged out")
	return nil
}
