// Package cli provides the interactive authkeeper command-line client.
//
// It wires configuration, the local session cache and the gRPC client into a
// small REPL. The session (username and access token) survives restarts, so
// whoami works until the token expires or the user logs out.
//
// Commands: signup, login, whoami, logout, help, exit.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
