// Package models defines the client-side data model for the streamcat
// catalog backend: the cached user profile and the ephemeral auth payloads.
package models

// AdminPanel is present on a profile only when the account has admin access.
type AdminPanel struct {
	AdminLevel int `json:"adminLevel"`
}

// User is the profile returned by the backend and cached next to the session
// token. It is refreshed whenever the server returns an updated copy.
type User struct {
	ID                   int64       `json:"id"`
	Username             string      `json:"username"`
	FirstName            string      `json:"firstName"`
	LastName             string      `json:"lastName"`
	Email                string      `json:"email"`
	Role                 string      `json:"role"`
	IsAccountEnabled     bool        `json:"isAccountEnabled"`
	IsAccountLocked      bool        `json:"isAccountLocked"`
	IsCredentialsExpired bool        `json:"isCredentialsExpired"`
	IsAccountExpired     bool        `json:"isAccountExpired"`
	AdminPanel           *AdminPanel `json:"adminPanel,omitempty"`
}

// IsAdmin reports whether the profile carries admin panel access.
func (u *User) IsAdmin() bool {
	return u != nil && u.AdminPanel != nil
}

// Credentials is the login input. It exists only for the duration of a login
// call and is never persisted.
type Credentials struct {
	Identifier string
	Password   string
}

// Registration is the input for creating a new account.
type Registration struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}
