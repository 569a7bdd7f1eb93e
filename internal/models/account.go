package models

import "time"

// Account is the tenant boundary: every other row belongs, directly or
// through its parent, to exactly one Account.
type Account struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Email     string    `json:"email" gorm:"not null;index"`
	Name      string    `json:"name" gorm:"not null"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Role is a named permission label scoped to one account.
// "ADMIN" is created implicitly at account creation.
type Role struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null;uniqueIndex:idx_roles_account_name"`
	AccountID uint      `json:"accountId" gorm:"not null;uniqueIndex:idx_roles_account_name"`
	Account   Account   `json:"-" gorm:"foreignKey:AccountID"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AdminRoleName is the role seeded for the first user of a new account.
const AdminRoleName = "ADMIN"
