// Package policy holds the account-scoping predicates. Every query against
// shared storage must carry one of these scopes; ownership is decided inside
// the lookup predicate, never by filtering rows after the fetch. A row owned
// by another account is therefore indistinguishable from a missing row.
package policy

import "gorm.io/gorm"

// OwnedByAccount scopes rows that carry a direct account_id column
// (users, companies, roles, custom fields).
func OwnedByAccount(accountID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("account_id = ?", accountID)
	}
}

// SiteOwnedByAccount scopes sites through their enclosing company. Sites have
// no account_id of their own; ownership is indirect.
func SiteOwnedByAccount(accountID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Joins("JOIN companies ON companies.id = sites.company_id").
			Where("companies.account_id = ?", accountID)
	}
}

// TeamOwnedByAccount scopes teams linked to at least one company of the
// account. Teams carry no account_id; association is the only tie.
func TeamOwnedByAccount(accountID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		sub := db.Session(&gorm.Session{NewDB: true}).
			Table("team_companies").
			Select("team_companies.team_id").
			Joins("JOIN companies ON companies.id = team_companies.company_id").
			Where("companies.account_id = ?", accountID)
		return db.Where("teams.id IN (?)", sub)
	}
}
