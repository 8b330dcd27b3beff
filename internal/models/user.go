package models

import "time"

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	IsHost       bool      `json:"isHost"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Identity is the authenticated caller as resolved from a bearer credential.
type Identity struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	IsHost bool   `json:"isHost"`
}

func (u *User) Identity() Identity {
	return Identity{ID: u.ID, Name: u.Name, Email: u.Email, IsHost: u.IsHost}
}
