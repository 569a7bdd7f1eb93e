package models

import "time"

// Custom field value types. Values are stored as text whatever the declared
// type; parsing happens at the edges.
const (
	FieldTypeText   = "TEXT"
	FieldTypeNumber = "NUMBER"
	FieldTypeDate   = "DATE"
	FieldTypeSelect = "SELECT"
)

// Entity modules a custom field can target.
const (
	ModuleUser    = "USER"
	ModuleSite    = "SITE"
	ModuleCompany = "COMPANY"
)

// CustomField is a per-account schema entry describing one extra attribute of
// a target module. The machine name is unique per (account, module).
type CustomField struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null;uniqueIndex:idx_custom_fields_account_module_name"`
	Label     string    `json:"label" gorm:"not null"`
	Type      string    `json:"type" gorm:"size:20;not null"`
	Module    string    `json:"module" gorm:"size:20;not null;uniqueIndex:idx_custom_fields_account_module_name"`
	Options   []string  `json:"options,omitempty" gorm:"serializer:json"` // required when Type is SELECT
	Required  bool      `json:"required" gorm:"not null;default:false"`
	AccountID uint      `json:"accountId" gorm:"not null;uniqueIndex:idx_custom_fields_account_module_name"`
	Account   Account   `json:"-" gorm:"foreignKey:AccountID"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CustomFieldValue binds one definition to one entity row. At most one value
// may exist per (field, entity) pair; writes go through an upsert.
type CustomFieldValue struct {
	ID            uint        `json:"id" gorm:"primaryKey"`
	Value         string      `json:"value" gorm:"not null"`
	CustomFieldID uint        `json:"customFieldId" gorm:"not null;uniqueIndex:idx_custom_field_values_field_entity"`
	CustomField   CustomField `json:"customField" gorm:"foreignKey:CustomFieldID"`
	EntityID      uint        `json:"entityId" gorm:"not null;uniqueIndex:idx_custom_field_values_field_entity;index"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}
