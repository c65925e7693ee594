package models

// User is a registered account. The password is stored in cleartext to
// match the system being ported; see DESIGN.md before reusing this anywhere.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Name      string `json:"name"`
	CreatedAt string `json:"createdAt"`
}

// PublicUser is the user shape returned to clients (no password).
type PublicUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Public strips the credential fields from a user.
func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Email: u.Email, Name: u.Name}
}

// Session is the payload stored under an opaque session token. Sessions
// never expire; they are removed only by logout.
type Session struct {
	Email     string `json:"email"`
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"createdAt"`
}
