package models

import "time"

// User is a login identity. Email is unique across all accounts, not per
// tenant: a second signup with the same email is rejected regardless of the
// target account.
type User struct {
	ID        uint    `json:"id" gorm:"primaryKey"`
	Email     string  `json:"email" gorm:"unique;not null;index"`
	Password  string  `json:"-" gorm:"not null"` // bcrypt hash
	Name      string  `json:"name" gorm:"index"`
	AccountID uint    `json:"accountId" gorm:"not null;index"`
	Account   Account `json:"-" gorm:"foreignKey:AccountID"`
	RoleID    uint    `json:"roleId" gorm:"not null"`
	Role      Role    `json:"role" gorm:"foreignKey:RoleID"`
	// A user may work for several companies and sit in several teams.
	Companies []Company `json:"companies,omitempty" gorm:"many2many:user_companies"`
	Teams     []Team    `json:"teams,omitempty" gorm:"many2many:user_teams"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
