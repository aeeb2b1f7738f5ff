package models

import "github.com/arvue/arvue/internal/media"

// WithArtist marks the account as an artist.
func WithArtist(isArtist bool) UserOption {
	return func(u *User) {
		u.IsArtist = isArtist
	}
}

// WithProfilePicture attaches an uploaded profile picture reference.
func WithProfilePicture(ref media.Ref) UserOption {
	return func(u *User) {
		u.ProfilePicture = ref
	}
}

// WithName replaces the display name.
func WithName(first, last string) UserOption {
	return func(u *User) {
		u.FirstName = first
		u.LastName = last
	}
}

// WithUsername replaces the unique handle.
func WithUsername(username string) UserOption {
	return func(u *User) {
		u.Username = username
	}
}

// WithEmail replaces the login email.
func WithEmail(email string) UserOption {
	return func(u *User) {
		u.Email = email
	}
}

// WithTokens sets the balance outright. Prefer AddTokens for credits
// and debits.
func WithTokens(tokens int64) UserOption {
	return func(u *User) {
		u.Tokens = tokens
	}
}
