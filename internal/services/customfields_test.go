package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diewo77/fieldops-app/internal/apperr"
	"github.com/diewo77/fieldops-app/internal/models"
)

func seedTwoTenants(t *testing.T) (*Directory, *CustomFields, *RegisterResult, *RegisterResult) {
	t.Helper()
	conn := setupTestDB(t, t.Name())
	dir := NewDirectory(conn, 4)
	a := registerTenant(t, dir, "admin-a@x.com", "A", "A Co")
	b := registerTenant(t, dir, "admin-b@x.com", "B", "B Co")
	return dir, NewCustomFields(conn), a, b
}

func TestDefineFieldUniquePerAccountAndModule(t *testing.T) {
	_, fields, a, b := seedTwoTenants(t)
	ctx := context.Background()

	_, err := fields.DefineField(ctx, a.Account.ID, FieldInput{
		Name: "dob", Label: "Date of birth", Type: models.FieldTypeDate, Module: models.ModuleUser,
	})
	require.NoError(t, err)

	// Same (module, name) in the same account conflicts.
	_, err = fields.DefineField(ctx, a.Account.ID, FieldInput{
		Name: "dob", Label: "Other", Type: models.FieldTypeText, Module: models.ModuleUser,
	})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	// Same name on another module is a different field.
	_, err = fields.DefineField(ctx, a.Account.ID, FieldInput{
		Name: "dob", Label: "Opened", Type: models.FieldTypeDate, Module: models.ModuleSite,
	})
	assert.NoError(t, err)

	// Same (module, name) in another account is independent.
	_, err = fields.DefineField(ctx, b.Account.ID, FieldInput{
		Name: "dob", Label: "Date of birth", Type: models.FieldTypeDate, Module: models.ModuleUser,
	})
	assert.NoError(t, err)
}

func TestDefineFieldValidation(t *testing.T) {
	_, fields, a, _ := seedTwoTenants(t)
	ctx := context.Background()

	var ve *apperr.ValidationError

	_, err := fields.DefineField(ctx, a.Account.ID, FieldInput{})
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Violations, "name")
	assert.Contains(t, ve.Violations, "label")
	assert.Contains(t, ve.Violations, "type")
	assert.Contains(t, ve.Violations, "module")

	_, err = fields.DefineField(ctx, a.Account.ID, FieldInput{
		Name: "status", Label: "Status", Type: "BLOB", Module: models.ModuleUser,
	})
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Violations, "type")

	// SELECT without options is rejected.
	_, err = fields.DefineField(ctx, a.Account.ID, FieldInput{
		Name: "status", Label: "Status", Type: models.FieldTypeSelect, Module: models.ModuleUser,
	})
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Violations, "options")

	_, err = fields.DefineField(ctx, a.Account.ID, FieldInput{
		Name: "status", Label: "Status", Type: models.FieldTypeSelect, Module: models.ModuleUser,
		Options: []string{"active", "inactive"},
	})
	assert.NoError(t, err)
}

func TestListFieldsScopedAndFiltered(t *testing.T) {
	_, fields, a, b := seedTwoTenants(t)
	ctx := context.Background()

	mustDefine := func(accountID uint, name, module string) {
		t.Helper()
		_, err := fields.DefineField(ctx, accountID, FieldInput{
			Name: name, Label: name, Type: models.FieldTypeText, Module: module,
		})
		require.NoError(t, err)
	}
	mustDefine(a.Account.ID, "shirt_size", models.ModuleUser)
	mustDefine(a.Account.ID, "gate_code", models.ModuleSite)
	mustDefine(b.Account.ID, "shirt_size", models.ModuleUser)

	all, err := fields.ListFields(ctx, a.Account.ID, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	userOnly, err := fields.ListFields(ctx, a.Account.ID, models.ModuleUser)
	require.NoError(t, err)
	require.Len(t, userOnly, 1)
	assert.Equal(t, "shirt_size", userOnly[0].Name)
	assert.Equal(t, a.Account.ID, userOnly[0].AccountID)
}

func TestSetValuesUpsertIdempotent(t *testing.T) {
	_, fields, a, _ := seedTwoTenants(t)
	ctx := context.Background()

	dob, err := fields.DefineField(ctx, a.Account.ID, FieldInput{
		Name: "dob", Label: "Date of birth", Type: models.FieldTypeDate, Module: models.ModuleUser,
	})
	require.NoError(t, err)

	mapping := map[uint]string{dob.ID: "1990-01-01"}
	require.NoError(t, fields.SetValues(ctx, a.Account.ID, a.User.ID, mapping))
	// Applying the same mapping again changes nothing.
	require.NoError(t, fields.SetValues(ctx, a.Account.ID, a.User.ID, mapping))

	values, err := fields.GetValues(ctx, a.Account.ID, a.User.ID)
	require.NoError(t, err)
	require.Len(t, values, 1)
	assert.Equal(t, "1990-01-01", values[0].Value)
	assert.Equal(t, "dob", values[0].CustomField.Name)

	// A new value for the same pair replaces, never duplicates.
	require.NoError(t, fields.SetValues(ctx, a.Account.ID, a.User.ID, map[uint]string{dob.ID: "1991-02-02"}))
	values, err = fields.GetValues(ctx, a.Account.ID, a.User.ID)
	require.NoError(t, err)
	require.Len(t, values, 1)
	assert.Equal(t, "1991-02-02", values[0].Value)
}

func TestSetValuesUnknownFieldRejected(t *testing.T) {
	_, fields, a, b := seedTwoTenants(t)
	ctx := context.Background()

	// Nonexistent field id is a validation error, not a silent drop.
	err := fields.SetValues(ctx, a.Account.ID, a.User.ID, map[uint]string{9999: "x"})
	assert.True(t, apperr.IsValidation(err), "got %v", err)

	// A field defined by another tenant counts as unknown too.
	foreign, err := fields.DefineField(ctx, b.Account.ID, FieldInput{
		Name: "secret", Label: "Secret", Type: models.FieldTypeText, Module: models.ModuleUser,
	})
	require.NoError(t, err)
	err = fields.SetValues(ctx, a.Account.ID, a.User.ID, map[uint]string{foreign.ID: "x"})
	assert.True(t, apperr.IsValidation(err), "got %v", err)
}

func TestGetValuesScopedToAccount(t *testing.T) {
	_, fields, a, b := seedTwoTenants(t)
	ctx := context.Background()

	dob, err := fields.DefineField(ctx, a.Account.ID, FieldInput{
		Name: "dob", Label: "Date of birth", Type: models.FieldTypeDate, Module: models.ModuleUser,
	})
	require.NoError(t, err)
	require.NoError(t, fields.SetValues(ctx, a.Account.ID, a.User.ID, map[uint]string{dob.ID: "1990-01-01"}))

	// Probing A's entity id from account B yields nothing.
	values, err := fields.GetValues(ctx, b.Account.ID, a.User.ID)
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestDeleteFieldCascadesValues(t *testing.T) {
	dir, fields, a, b := seedTwoTenants(t)
	ctx := context.Background()

	gate, err := fields.DefineField(ctx, a.Account.ID, FieldInput{
		Name: "gate_code", Label: "Gate code", Type: models.FieldTypeText, Module: models.ModuleSite,
	})
	require.NoError(t, err)

	site, err := dir.CreateSite(ctx, a.Account.ID, a.Company.ID, SiteInput{Name: "Depot"})
	require.NoError(t, err)
	require.NoError(t, fields.SetValues(ctx, a.Account.ID, site.ID, map[uint]string{gate.ID: "1234"}))

	// Another account cannot delete the definition.
	err = fields.DeleteField(ctx, b.Account.ID, gate.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	require.NoError(t, fields.DeleteField(ctx, a.Account.ID, gate.ID))

	defs, err := fields.ListFields(ctx, a.Account.ID, "")
	require.NoError(t, err)
	assert.Empty(t, defs)

	// Values go first, then the definition: nothing may be orphaned.
	var orphans int64
	require.NoError(t, dir.db.Model(&models.CustomFieldValue{}).Count(&orphans).Error)
	assert.Zero(t, orphans)
}
