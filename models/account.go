package models

import (
	"encoding/json"
	"time"
)

// AnonymousAccountID is used for search-history entries recorded before
// the visitor signs in.
const AnonymousAccountID = "anonymous"

// Account represents a registered user account.
type Account struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name,omitempty"`
	PasswordHash string    `json:"-"` // bcrypt hash, excluded from JSON API responses (security)
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// MarshalJSON implements custom JSON marshaling to ensure password hash is never exposed in API responses.
func (a Account) MarshalJSON() ([]byte, error) {
	type AccountAlias Account // prevent recursion
	return json.Marshal(&struct {
		AccountAlias
	}{
		AccountAlias: AccountAlias(a),
	})
}

// AccountStorage is the internal representation used for file persistence.
// Unlike Account, this includes the password hash for storage.
type AccountStorage struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name,omitempty"`
	PasswordHash string    `json:"passwordHash"` // Included for storage only
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ToStorage converts an Account to AccountStorage for persistence.
func (a Account) ToStorage() AccountStorage {
	return AccountStorage{
		ID:           a.ID,
		Email:        a.Email,
		Name:         a.Name,
		PasswordHash: a.PasswordHash,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

// ToAccount converts an AccountStorage back to Account.
func (as AccountStorage) ToAccount() Account {
	return Account{
		ID:           as.ID,
		Email:        as.Email,
		Name:         as.Name,
		PasswordHash: as.PasswordHash,
		CreatedAt:    as.CreatedAt,
		UpdatedAt:    as.UpdatedAt,
	}
}
