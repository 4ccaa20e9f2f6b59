package users

import "github.com/user/storefront-go/auth"

// UserSummary is the admin view of an account. It never carries the hash.
type UserSummary struct {
	ID      int64  `json:"id" example:"2"`
	Email   string `json:"email" example:"user@example.com"`
	IsAdmin bool   `json:"isAdmin" example:"false"`
}

func summarize(u auth.User) UserSummary {
	return UserSummary{ID: u.ID, Email: u.Email, IsAdmin: u.IsAdmin}
}
