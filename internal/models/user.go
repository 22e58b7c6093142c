package models

import "github.com/google/uuid"

// User is an account row: identity, credentials and the persisted
// chip bankroll a player brings to a table.
type User struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	Password string    `json:"password,omitempty"`
	Username string    `json:"username"`
	Chips    int       `json:"chips"`
}
