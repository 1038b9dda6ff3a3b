package services

// Identity is the authenticated caller of a service operation, as resolved
// by the access middleware from the bearer token.
type Identity struct {
	UserID  string
	IsAdmin bool
}
