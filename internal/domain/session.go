package domain

import "time"

// Role enumerates account types in the deal room.
type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
)

// Valid reports membership in the role enum.
func (r Role) Valid() bool {
	return r == RoleBuyer || r == RoleSeller
}

// Credentials carries a login form submission. Never persisted.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Session is the authenticated identity cached client-side. It stays valid
// until explicitly cleared; expiry is only discovered when the backend
// rejects a request. The session manager is its sole writer.
type Session struct {
	Subject   string    `json:"id"`
	Role      Role      `json:"role"`
	Token     string    `json:"token"`
	DecodedAt time.Time `json:"decodedAt"`
}
