package domain

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type Users struct {
	ID           uuid.UUID `db:"id" json:"id"`
	UserName     string    `db:"user_name" json:"user_name"`
	PasswordHash *string   `db:"password_hash" json:"-"`
	Email        *string   `db:"email" json:"email,omitempty"`
	Role         Role      `db:"role" json:"role"`
	AuthProvider string    `db:"auth_provider" json:"auth_provider"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

type UsersTable struct {
	ID           string
	UserName     string
	PasswordHash string
	Email        string
	Role         string
	AuthProvider string
	CreatedAt    string
}

func GetUserTable() UsersTable {
	return UsersTable{
		ID:           "id",
		UserName:     "user_name",
		PasswordHash: "password_hash",
		Email:        "email",
		Role:         "role",
		AuthProvider: "auth_provider",
		CreatedAt:    "created_at",
	}
}

func (t UsersTable) GetTableName() string {
	return "users"
}
