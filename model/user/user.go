package user

import "fmt"

// A User is the visitor as known to the embedding site, when they are logged in there.
type User struct {
	Email string
	Name  string
}

func (u *User) String() string {
	if u == nil {
		return "User{nil}"
	}
	return fmt.Sprintf("User{Email: %q, Name: %q}", u.Email, u.Name)
}

// Authenticated reports whether u is a logged-in user; a nil *User is an anonymous visitor.
func (u *User) Authenticated() bool {
	return u != nil && u.Email != ""
}
