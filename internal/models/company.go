package models

import "time"

// Company is a business unit inside an account. Name is unique per account,
// not globally.
type Company struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null;uniqueIndex:idx_companies_account_name"`
	AccountID uint      `json:"accountId" gorm:"not null;uniqueIndex:idx_companies_account_name"`
	Account   Account   `json:"-" gorm:"foreignKey:AccountID"`
	Sites     []Site    `json:"sites,omitempty"`
	Employees []User    `json:"employees,omitempty" gorm:"many2many:user_companies"`
	Teams     []Team    `json:"teams,omitempty" gorm:"many2many:team_companies"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Address is a nested sub-record stored as JSON on the site row.
type Address struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// Contact is a nested name/phone/email sub-record stored as JSON.
type Contact struct {
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

// SiteRates holds the per-site charge-out rates, stored as JSON.
type SiteRates struct {
	Labour   float64 `json:"labour,omitempty"`
	Callout  float64 `json:"callout,omitempty"`
	Travel   float64 `json:"travel,omitempty"`
	Discount float64 `json:"discount,omitempty"`
}

// Site is a location under a company. It has no accountId column of its own:
// tenant ownership is resolved through the enclosing company.
type Site struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	Name           string    `json:"name" gorm:"not null;uniqueIndex:idx_sites_company_name"`
	CompanyID      uint      `json:"companyId" gorm:"not null;uniqueIndex:idx_sites_company_name"`
	Company        Company   `json:"company,omitempty" gorm:"foreignKey:CompanyID"`
	Address        Address   `json:"address" gorm:"serializer:json"`
	BillingAddress Address   `json:"billingAddress" gorm:"serializer:json"`
	BillingContact Contact   `json:"billingContact" gorm:"serializer:json"`
	PrimaryContact Contact   `json:"primaryContact" gorm:"serializer:json"`
	PublicNotes    string    `json:"publicNotes"`
	PrivateNotes   string    `json:"privateNotes"`
	Zone           string    `json:"zone"`
	STCZone        string    `json:"stcZone"`
	VEECZone       string    `json:"veecZone"`
	PreferredTechs []string  `json:"preferredTechs" gorm:"serializer:json"`
	Customers      []string  `json:"customers" gorm:"serializer:json"`
	Rates          SiteRates `json:"rates" gorm:"serializer:json"`
	Archived       bool      `json:"archived" gorm:"not null;default:false"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Team groups users across companies. It carries no accountId either; it is
// scoped through the companies it is linked to.
type Team struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null"`
	Companies []Company `json:"companies,omitempty" gorm:"many2many:team_companies"`
	Employees []User    `json:"employees,omitempty" gorm:"many2many:user_teams"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
