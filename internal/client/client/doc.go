// Package client contains the CLI's side of the authkeeper protocol.
//
// # Overview
//
// The package provides:
//  1. The Client interface used by the CLI services: Signup, Login, Me.
//  2. GRPCClient, which talks to authkeeper.v1.AuthService, attaches the
//     access token to every call through an interceptor and maps gRPC status
//     codes to sentinel errors.
//  3. InitDatabase and RunMigrations, which open the local SQLite cache and
//     apply the embedded goose migrations.
//
// # Error Handling
//
// Callers match ErrUnavailable, ErrUnauthorized, ErrAlreadyExists and
// ErrInvalidArgument and ErrNotLoggedIn with errors.Is.
package client
