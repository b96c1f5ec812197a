package model

import "time"

// User roles as stored in the users table and carried in JWT claims.
const (
	RoleAdmin    = "ADMIN"
	RoleCustomer = "CUSTOMER"
)

// User is an external collaborator: authentication and user management
// happen outside this service. The core reads users for existence
// checks on buyers and for the ticket-print view, and trusts the role
// claim of the bearer token for permission checks.
type User struct {
	ID        uint64    // users.id
	Name      string    // users.name
	Email     string    // users.email
	Role      string    // users.role
	CreatedAt time.Time // users.created_at
}

// IsAdmin reports whether the user may perform administrative actions
// such as cancelling tickets sold by others.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }
