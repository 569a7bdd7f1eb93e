package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/diewo77/fieldops-app/internal/apperr"
	"github.com/diewo77/fieldops-app/internal/auth"
	"github.com/diewo77/fieldops-app/internal/models"
	"github.com/diewo77/fieldops-app/internal/policy"
	"github.com/diewo77/fieldops-app/internal/validation"
)

// Directory owns accounts, roles, users, companies, sites and teams. Every
// operation other than registration and login takes the acting account id
// explicitly; there is no unscoped read or write path.
type Directory struct {
	db         *gorm.DB
	bcryptCost int
}

func NewDirectory(db *gorm.DB, bcryptCost int) *Directory {
	return &Directory{db: db, bcryptCost: bcryptCost}
}

type RegisterInput struct {
	Email       string
	Password    string
	Name        string
	AccountName string
	CompanyName string // optional seed company
}

type RegisterResult struct {
	User    models.User
	Account models.Account
	Role    models.Role
	Company *models.Company
}

// RegisterTenant creates an account, its ADMIN role, the first user and an
// optional seed company as one transaction. A duplicate email aborts the
// whole unit with Conflict; the unique index on users.email is the arbiter,
// so two concurrent registrations with the same email cannot both commit.
func (s *Directory) RegisterTenant(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	v := make(validation.Violations)
	validation.Required("email", in.Email, v)
	validation.Required("password", in.Password, v)
	if !v.Empty() {
		return nil, &apperr.ValidationError{Violations: v}
	}

	accountName := strings.TrimSpace(in.AccountName)
	if accountName == "" {
		name := strings.TrimSpace(in.Name)
		if name == "" {
			name = "New User"
		}
		accountName = name + "'s Account"
	}

	// Hash outside the transaction; bcrypt is CPU-bound and must not hold a
	// storage connection.
	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, apperr.Translate(err)
	}

	var out RegisterResult
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		account := models.Account{Email: in.Email, Name: accountName}
		if err := tx.Create(&account).Error; err != nil {
			return err
		}
		role := models.Role{Name: models.AdminRoleName, AccountID: account.ID}
		if err := tx.Create(&role).Error; err != nil {
			return err
		}
		user := models.User{
			Email:     in.Email,
			Password:  hash,
			Name:      strings.TrimSpace(in.Name),
			AccountID: account.ID,
			RoleID:    role.ID,
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		out = RegisterResult{User: user, Account: account, Role: role}
		if name := strings.TrimSpace(in.CompanyName); name != "" {
			company := models.Company{Name: name, AccountID: account.ID}
			if err := tx.Create(&company).Error; err != nil {
				return err
			}
			out.Company = &company
		}
		return nil
	})
	if err != nil {
		return nil, apperr.Translate(err)
	}
	return &out, nil
}

// Authenticate looks a user up by email and verifies the password. Unknown
// email and wrong password return the identical Unauthorized outcome; there
// is no signal that an email exists.
func (s *Directory) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Preload("Role").Preload("Account").
		Where("email = ?", email).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrUnauthorized
	}
	if err != nil {
		return nil, apperr.Translate(err)
	}
	if !auth.CheckPassword(password, user.Password) {
		return nil, apperr.ErrUnauthorized
	}
	return &user, nil
}

type UserInput struct {
	Email      string
	Password   string
	Name       string
	RoleID     uint
	CompanyIDs []uint // nil leaves associations untouched on update
	TeamIDs    []uint
}

// ListUsers returns the account's users with their role and associations.
func (s *Directory) ListUsers(ctx context.Context, accountID uint) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).
		Scopes(policy.OwnedByAccount(accountID)).
		Preload("Role").Preload("Companies").Preload("Teams").
		Find(&users).Error
	if err != nil {
		return nil, apperr.Translate(err)
	}
	return users, nil
}

// CreateUser inserts a user under the acting account. The role and any
// associated companies or teams must belong to the same account.
func (s *Directory) CreateUser(ctx context.Context, accountID uint, in UserInput) (*models.User, error) {
	v := make(validation.Violations)
	validation.Required("email", in.Email, v)
	validation.Required("password", in.Password, v)
	if in.RoleID == 0 {
		v["roleId"] = "required"
	}
	if !v.Empty() {
		return nil, &apperr.ValidationError{Violations: v}
	}

	if err := s.roleInAccount(ctx, accountID, in.RoleID); err != nil {
		return nil, err
	}
	companies, err := s.companiesInAccount(ctx, accountID, in.CompanyIDs)
	if err != nil {
		return nil, err
	}
	teams, err := s.teamsInAccount(ctx, accountID, in.TeamIDs)
	if err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, apperr.Translate(err)
	}
	user := models.User{
		Email:     in.Email,
		Password:  hash,
		Name:      strings.TrimSpace(in.Name),
		AccountID: accountID,
		RoleID:    in.RoleID,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&user).Error; err != nil {
			return err
		}
		if len(companies) > 0 {
			if err := tx.Model(&user).Association("Companies").Append(companies); err != nil {
				return err
			}
		}
		if len(teams) > 0 {
			if err := tx.Model(&user).Association("Teams").Append(teams); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, apperr.Translate(err)
	}
	return s.getUser(ctx, accountID, user.ID)
}

// UpdateUser modifies a user of the acting account. The account id is part of
// the lookup predicate: a user of another account reads as NotFound. Nil
// association slices leave the associations untouched; non-nil slices replace
// them.
func (s *Directory) UpdateUser(ctx context.Context, accountID, userID uint, in UserInput) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Scopes(policy.OwnedByAccount(accountID)).
		First(&user, userID).Error
	if err != nil {
		return nil, apperr.Translate(err)
	}

	if in.Email != "" {
		user.Email = in.Email
	}
	if name := strings.TrimSpace(in.Name); name != "" {
		user.Name = name
	}
	if in.RoleID != 0 && in.RoleID != user.RoleID {
		if err := s.roleInAccount(ctx, accountID, in.RoleID); err != nil {
			return nil, err
		}
		user.RoleID = in.RoleID
	}
	if in.Password != "" {
		hash, err := auth.HashPassword(in.Password, s.bcryptCost)
		if err != nil {
			return nil, apperr.Translate(err)
		}
		user.Password = hash
	}

	var companies []models.Company
	var teams []models.Team
	if in.CompanyIDs != nil {
		if companies, err = s.companiesInAccount(ctx, accountID, in.CompanyIDs); err != nil {
			return nil, err
		}
	}
	if in.TeamIDs != nil {
		if teams, err = s.teamsInAccount(ctx, accountID, in.TeamIDs); err != nil {
			return nil, err
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(&user).Error; err != nil {
			return err
		}
		if in.CompanyIDs != nil {
			if err := tx.Model(&user).Association("Companies").Replace(companies); err != nil {
				return err
			}
		}
		if in.TeamIDs != nil {
			if err := tx.Model(&user).Association("Teams").Replace(teams); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, apperr.Translate(err)
	}
	return s.getUser(ctx, accountID, user.ID)
}

// DeleteUser removes a user of the acting account along with its company and
// team association rows.
func (s *Directory) DeleteUser(ctx context.Context, accountID, userID uint) error {
	var user models.User
	err := s.db.WithContext(ctx).
		Scopes(policy.OwnedByAccount(accountID)).
		First(&user, userID).Error
	if err != nil {
		return apperr.Translate(err)
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&user).Association("Companies").Clear(); err != nil {
			return err
		}
		if err := tx.Model(&user).Association("Teams").Clear(); err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
	return apperr.Translate(err)
}

// ListCompanies returns the account's companies with teams and employees.
func (s *Directory) ListCompanies(ctx context.Context, accountID uint) ([]models.Company, error) {
	var companies []models.Company
	err := s.db.WithContext(ctx).
		Scopes(policy.OwnedByAccount(accountID)).
		Preload("Teams").Preload("Employees").
		Find(&companies).Error
	if err != nil {
		return nil, apperr.Translate(err)
	}
	return companies, nil
}

// CreateCompany inserts a company under the acting account. The name must be
// unique within the account.
func (s *Directory) CreateCompany(ctx context.Context, accountID uint, name string) (*models.Company, error) {
	v := make(validation.Violations)
	validation.Required("name", name, v)
	if !v.Empty() {
		return nil, &apperr.ValidationError{Violations: v}
	}
	company := models.Company{Name: name, AccountID: accountID}
	if err := s.db.WithContext(ctx).Create(&company).Error; err != nil {
		return nil, apperr.Translate(err)
	}
	return &company, nil
}

// ListRoles returns the account's roles.
func (s *Directory) ListRoles(ctx context.Context, accountID uint) ([]models.Role, error) {
	var roles []models.Role
	err := s.db.WithContext(ctx).
		Scopes(policy.OwnedByAccount(accountID)).
		Find(&roles).Error
	if err != nil {
		return nil, apperr.Translate(err)
	}
	return roles, nil
}

// CreateRole inserts a role under the acting account. Role names are unique
// within an account.
func (s *Directory) CreateRole(ctx context.Context, accountID uint, name string) (*models.Role, error) {
	v := make(validation.Violations)
	validation.Required("name", name, v)
	if !v.Empty() {
		return nil, &apperr.ValidationError{Violations: v}
	}
	role := models.Role{Name: name, AccountID: accountID}
	if err := s.db.WithContext(ctx).Create(&role).Error; err != nil {
		return nil, apperr.Translate(err)
	}
	return &role, nil
}

// ListTeams returns the teams linked to any of the account's companies.
func (s *Directory) ListTeams(ctx context.Context, accountID uint) ([]models.Team, error) {
	var teams []models.Team
	err := s.db.WithContext(ctx).
		Scopes(policy.TeamOwnedByAccount(accountID)).
		Preload("Companies").Preload("Employees").
		Find(&teams).Error
	if err != nil {
		return nil, apperr.Translate(err)
	}
	return teams, nil
}

// CreateTeam inserts a team and links it to companies of the acting account.
func (s *Directory) CreateTeam(ctx context.Context, accountID uint, name string, companyIDs []uint) (*models.Team, error) {
	v := make(validation.Violations)
	validation.Required("name", name, v)
	if len(companyIDs) == 0 {
		// A team with no companies would belong to no account and vanish
		// from every scoped query.
		v["companyIds"] = "required"
	}
	if !v.Empty() {
		return nil, &apperr.ValidationError{Violations: v}
	}
	companies, err := s.companiesInAccount(ctx, accountID, companyIDs)
	if err != nil {
		return nil, err
	}
	team := models.Team{Name: name}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&team).Error; err != nil {
			return err
		}
		if len(companies) > 0 {
			return tx.Model(&team).Association("Companies").Append(companies)
		}
		return nil
	})
	if err != nil {
		return nil, apperr.Translate(err)
	}
	return &team, nil
}

type SiteInput struct {
	Name           string
	Address        models.Address
	BillingAddress models.Address
	BillingContact models.Contact
	PrimaryContact models.Contact
	PublicNotes    string
	PrivateNotes   string
	Zone           string
	STCZone        string
	VEECZone       string
	PreferredTechs []string
	Customers      []string
	Rates          models.SiteRates
	Archived       bool
}

// ListSites returns the account's sites, optionally restricted to one
// company. Ownership runs through the enclosing company in the query itself.
func (s *Directory) ListSites(ctx context.Context, accountID uint, companyID *uint) ([]models.Site, error) {
	q := s.db.WithContext(ctx).
		Scopes(policy.SiteOwnedByAccount(accountID)).
		Preload("Company")
	if companyID != nil {
		q = q.Where("sites.company_id = ?", *companyID)
	}
	var sites []models.Site
	if err := q.Find(&sites).Error; err != nil {
		return nil, apperr.Translate(err)
	}
	return sites, nil
}

// CreateSite inserts a site under a company of the acting account. A company
// of another account reads as NotFound.
func (s *Directory) CreateSite(ctx context.Context, accountID, companyID uint, in SiteInput) (*models.Site, error) {
	v := make(validation.Violations)
	validation.Required("name", in.Name, v)
	if !v.Empty() {
		return nil, &apperr.ValidationError{Violations: v}
	}
	var company models.Company
	err := s.db.WithContext(ctx).
		Scopes(policy.OwnedByAccount(accountID)).
		First(&company, companyID).Error
	if err != nil {
		return nil, apperr.Translate(err)
	}

	site := models.Site{
		Name:           in.Name,
		CompanyID:      company.ID,
		Address:        in.Address,
		BillingAddress: in.BillingAddress,
		BillingContact: in.BillingContact,
		PrimaryContact: in.PrimaryContact,
		PublicNotes:    in.PublicNotes,
		PrivateNotes:   in.PrivateNotes,
		Zone:           in.Zone,
		STCZone:        in.STCZone,
		VEECZone:       in.VEECZone,
		PreferredTechs: in.PreferredTechs,
		Customers:      in.Customers,
		Rates:          in.Rates,
		Archived:       in.Archived,
	}
	if err := s.db.WithContext(ctx).Create(&site).Error; err != nil {
		return nil, apperr.Translate(err)
	}
	return &site, nil
}

func (s *Directory) getUser(ctx context.Context, accountID, userID uint) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Scopes(policy.OwnedByAccount(accountID)).
		Preload("Role").Preload("Companies").Preload("Teams").
		First(&user, userID).Error
	if err != nil {
		return nil, apperr.Translate(err)
	}
	return &user, nil
}

func (s *Directory) roleInAccount(ctx context.Context, accountID, roleID uint) error {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Role{}).
		Scopes(policy.OwnedByAccount(accountID)).
		Where("id = ?", roleID).
		Count(&count).Error
	if err != nil {
		return apperr.Translate(err)
	}
	if count == 0 {
		return apperr.Validation("roleId", "unknown_role")
	}
	return nil
}

func (s *Directory) companiesInAccount(ctx context.Context, accountID uint, ids []uint) ([]models.Company, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return nil, nil
	}
	var companies []models.Company
	err := s.db.WithContext(ctx).
		Scopes(policy.OwnedByAccount(accountID)).
		Where("id IN ?", ids).
		Find(&companies).Error
	if err != nil {
		return nil, apperr.Translate(err)
	}
	if len(companies) != len(ids) {
		return nil, apperr.Validation("companyIds", "unknown_company")
	}
	return companies, nil
}

func (s *Directory) teamsInAccount(ctx context.Context, accountID uint, ids []uint) ([]models.Team, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return nil, nil
	}
	var teams []models.Team
	err := s.db.WithContext(ctx).
		Scopes(policy.TeamOwnedByAccount(accountID)).
		Where("teams.id IN ?", ids).
		Find(&teams).Error
	if err != nil {
		return nil, apperr.Translate(err)
	}
	if len(teams) != len(ids) {
		return nil, apperr.Validation("teamIds", "unknown_team")
	}
	return teams, nil
}

// uniqueIDs drops repeated ids so a duplicate in the request does not skew
// the found-vs-requested count. A non-nil empty input stays non-nil: callers
// distinguish "replace with nothing" from "leave untouched" by nilness.
func uniqueIDs(ids []uint) []uint {
	if ids == nil {
		return nil
	}
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
