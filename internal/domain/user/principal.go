package user

// Principal is the caller resolved from a bearer token.
type Principal struct {
	UserID string
	Email  string
	Roles  []string
}
