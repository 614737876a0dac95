package common

// AuthorizationHeaderName is the HTTP header that carries the bearer token.
const AuthorizationHeaderName = "Authorization"

// BearerScheme prefixes the token in the Authorization header. Matching is
// case-insensitive.
const BearerScheme = "Bearer"
