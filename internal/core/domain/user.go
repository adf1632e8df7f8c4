package domain

import "time"

// Role is the stored role of an account. It is an input to tier
// classification, not the authorization unit itself.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// ValidRole reports whether r is one of the three assignable roles.
func ValidRole(r Role) bool {
	return r == RoleUser || r == RoleModerator || r == RoleAdmin
}

// ReservedUsername is rejected at signup; it collides with the /users/me path.
const ReservedUsername = "me"

// Account models an identity record.
type Account struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name,omitempty"`
	LastName  string    `json:"last_name,omitempty"`
	Bio       string    `json:"bio,omitempty"`
	Role      Role      `json:"role"`
	IsStaff   bool      `json:"-"`
	IsSuper   bool      `json:"-"`
	// CodeHash is the bcrypt hash of the active confirmation code, empty when
	// no code is outstanding. The plaintext code is never persisted.
	CodeHash  string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Tier is the closed authorization level of a caller. Ordering matters:
// a higher tier always includes the capabilities of a lower one.
type Tier int

const (
	TierAnonymous Tier = iota
	TierUser
	TierModerator
	TierAdmin
)

func (t Tier) String() string {
	switch t {
	case TierAdmin:
		return "admin"
	case TierModerator:
		return "moderator"
	case TierUser:
		return "user"
	default:
		return "anonymous"
	}
}

// Classify maps an account to exactly one tier, highest first. The staff and
// superuser flags are admin-equivalent regardless of the stored role.
func Classify(a *Account) Tier {
	switch {
	case a == nil:
		return TierAnonymous
	case a.Role == RoleAdmin || a.IsStaff || a.IsSuper:
		return TierAdmin
	case a.Role == RoleModerator:
		return TierModerator
	default:
		return TierUser
	}
}

// Principal is the resolved caller identity. A nil Account means Anonymous.
type Principal struct {
	Account *Account
}

// Anonymous is the principal of an unauthenticated request.
var Anonymous = Principal{}

func (p Principal) Tier() Tier {
	return Classify(p.Account)
}

// ID returns the account id, or "" for Anonymous.
func (p Principal) ID() string {
	if p.Account == nil {
		return ""
	}
	return p.Account.ID
}
