package model

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims is the assertion carried by both token classes. Email, UserID and
// Roles are copied from the User at issuance time and never re-validated.
type Claims struct {
	Email   string   `json:"email"`
	UserID  int64    `json:"sub"`
	Roles   []string `json:"roles"`
	Type    string   `json:"typ"`
	TokenID string   `json:"jti"`
}

// Identity is the resolved caller attached to a request once its access
// token has been verified.
type Identity struct {
	Email  string
	UserID int64
	Roles  []string
}

func (c Claims) Identity() Identity {
	roles := make([]string, len(c.Roles))
	copy(roles, c.Roles)
	return Identity{Email: c.Email, UserID: c.UserID, Roles: roles}
}

type Credential struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResult struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type RefreshResult struct {
	AccessToken string `json:"access_token"`
}
