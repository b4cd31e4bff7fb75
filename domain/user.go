package domain

// User is a registered account. Records are immutable after registration.
type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"passwordHash"`
}

// SafeUser is the projection of a user returned to clients.
type SafeUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Safe strips credentials from a user record.
func (u User) Safe() SafeUser {
	return SafeUser{ID: u.ID, Name: u.Name, Email: u.Email}
}
