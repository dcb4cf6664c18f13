package common

// AuthorizationHeaderName is the HTTP header and gRPC metadata key that
// carries the bearer token on protected requests.
const AuthorizationHeaderName = "authorization"

// BearerScheme is the authorization scheme prefix, and TokenType the
// token_type value reported to clients.
const (
	BearerScheme = "Bearer"
	TokenType    = "bearer"
)
