package services

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/diewo77/fieldops-app/internal/apperr"
	"github.com/diewo77/fieldops-app/internal/models"
	"github.com/diewo77/fieldops-app/internal/policy"
	"github.com/diewo77/fieldops-app/internal/validation"
)

// CustomFields is the per-account schema registry plus the value store that
// attaches typed values to arbitrary entity rows. Definitions are plain rows;
// no schema migration happens when a tenant adds a field.
type CustomFields struct {
	db *gorm.DB
}

func NewCustomFields(db *gorm.DB) *CustomFields {
	return &CustomFields{db: db}
}

var fieldTypes = []string{
	models.FieldTypeText,
	models.FieldTypeNumber,
	models.FieldTypeDate,
	models.FieldTypeSelect,
}

var fieldModules = []string{
	models.ModuleUser,
	models.ModuleSite,
	models.ModuleCompany,
}

type FieldInput struct {
	Name     string
	Label    string
	Type     string
	Module   string
	Options  []string
	Required bool
}

// DefineField registers a custom field for the account. The machine name is
// unique per (account, module); SELECT fields must carry options.
func (s *CustomFields) DefineField(ctx context.Context, accountID uint, in FieldInput) (*models.CustomField, error) {
	v := make(validation.Violations)
	validation.Required("name", in.Name, v)
	validation.Required("label", in.Label, v)
	validation.Required("type", in.Type, v)
	validation.Required("module", in.Module, v)
	if in.Type != "" {
		validation.OneOf("type", in.Type, fieldTypes, v)
	}
	if in.Module != "" {
		validation.OneOf("module", in.Module, fieldModules, v)
	}
	if in.Type == models.FieldTypeSelect {
		validation.NotEmptyList("options", in.Options, v)
	}
	if !v.Empty() {
		return nil, &apperr.ValidationError{Violations: v}
	}

	field := models.CustomField{
		Name:      in.Name,
		Label:     in.Label,
		Type:      in.Type,
		Module:    in.Module,
		Options:   in.Options,
		Required:  in.Required,
		AccountID: accountID,
	}
	if err := s.db.WithContext(ctx).Create(&field).Error; err != nil {
		return nil, apperr.Translate(err)
	}
	return &field, nil
}

// ListFields returns the account's field definitions, optionally restricted
// to one module.
func (s *CustomFields) ListFields(ctx context.Context, accountID uint, module string) ([]models.CustomField, error) {
	q := s.db.WithContext(ctx).Scopes(policy.OwnedByAccount(accountID))
	if module != "" {
		q = q.Where("module = ?", module)
	}
	var fields []models.CustomField
	if err := q.Find(&fields).Error; err != nil {
		return nil, apperr.Translate(err)
	}
	return fields, nil
}

// DeleteField removes a definition and every value bound to it. The storage
// engine is not trusted to cascade: values go first, then the definition,
// inside one transaction so no orphaned value can survive.
func (s *CustomFields) DeleteField(ctx context.Context, accountID, fieldID uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var field models.CustomField
		if err := tx.Scopes(policy.OwnedByAccount(accountID)).First(&field, fieldID).Error; err != nil {
			return err
		}
		if err := tx.Where("custom_field_id = ?", field.ID).Delete(&models.CustomFieldValue{}).Error; err != nil {
			return err
		}
		return tx.Delete(&field).Error
	})
	return apperr.Translate(err)
}

// SetValues upserts one value per (field, entity) pair. Values are stored as
// their string representation whatever the declared type; parsing and
// type-checking stay at the edges. Calling twice with the same mapping
// leaves the stored state unchanged. A field id outside the acting account
// is a validation error, not a silent drop.
func (s *CustomFields) SetValues(ctx context.Context, accountID, entityID uint, values map[uint]string) error {
	if len(values) == 0 {
		return nil
	}
	ids := make([]uint, 0, len(values))
	for id := range values {
		ids = append(ids, id)
	}
	var count int64
	err := s.db.WithContext(ctx).Model(&models.CustomField{}).
		Scopes(policy.OwnedByAccount(accountID)).
		Where("id IN ?", ids).
		Count(&count).Error
	if err != nil {
		return apperr.Translate(err)
	}
	if count != int64(len(ids)) {
		return apperr.Validation("customFields", "unknown_field")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for fieldID, raw := range values {
			value := models.CustomFieldValue{
				CustomFieldID: fieldID,
				EntityID:      entityID,
				Value:         raw,
			}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "custom_field_id"}, {Name: "entity_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
			}).Create(&value).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
	return apperr.Translate(err)
}

// GetValues returns the values attached to an entity joined to their
// definitions. Only definitions of the acting account are visible, so a
// foreign entity id yields nothing rather than another tenant's data.
func (s *CustomFields) GetValues(ctx context.Context, accountID, entityID uint) ([]models.CustomFieldValue, error) {
	var values []models.CustomFieldValue
	err := s.db.WithContext(ctx).
		Joins("JOIN custom_fields ON custom_fields.id = custom_field_values.custom_field_id").
		Where("custom_fields.account_id = ?", accountID).
		Where("custom_field_values.entity_id = ?", entityID).
		Preload("CustomField").
		Find(&values).Error
	if err != nil {
		return nil, apperr.Translate(err)
	}
	return values, nil
}
