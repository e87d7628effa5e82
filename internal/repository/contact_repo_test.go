package repository

import (
	"context"
	"testing"

	"OutreachSync/internal/model"
	"OutreachSync/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func importedContact(companyID, externalID string) *model.ImportedContact {
	id := uuid.NewString()
	year := 2004
	return &model.ImportedContact{
		Contact: model.Contact{
			ID:                id,
			CompanyID:         companyID,
			ExternalContactID: strPtr(externalID),
			Name:              "Jane Doe",
			IsExternal:        true,
		},
		Branches:     []model.ContactBranch{{ContactID: id, City: "London", IsExternal: true}},
		Countries:    []model.ContactCountry{{ContactID: id, CountryName: "UK", IsExternal: true}},
		Educations:   []model.ContactEducation{{ContactID: id, GraduationYear: &year, SchoolName: "LSE", IsExternal: true}},
		Sectors:      []model.ContactSector{{ContactID: id, Name: "Energy", IsExternal: true}, {ContactID: id, Name: "Utilities", IsExternal: true}},
		PhoneNumbers: []model.ContactPhoneNumber{{ContactID: id, PhoneType: "work", PhoneNumber: "+44 20", IsExternal: true}},
	}
}

func TestContactCreateImportedAndFind(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewContactRepository(db)
	ctx := context.Background()
	company := uuid.NewString()

	missing, err := repo.FindByExternalID(ctx, company, "ext-55")
	require.NoError(t, err)
	assert.Nil(t, missing)

	ic := importedContact(company, "ext-55")
	require.NoError(t, repo.CreateImported(ctx, ic))

	found, err := repo.FindByExternalID(ctx, company, "ext-55")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, ic.Contact.ID, found.ID)
	assert.True(t, found.IsExternal)

	var sectors int64
	require.NoError(t, db.Model(&model.ContactSector{}).Where("contact_id = ?", found.ID).Count(&sectors).Error)
	assert.Equal(t, int64(2), sectors)

	exists, err := repo.Exists(ctx, company, found.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.Exists(ctx, uuid.NewString(), found.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestContactCreateImportedDuplicate(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewContactRepository(db)
	ctx := context.Background()
	company := uuid.NewString()

	first := importedContact(company, "ext-55")
	require.NoError(t, repo.CreateImported(ctx, first))

	second := importedContact(company, "ext-55")
	err := repo.CreateImported(ctx, second)
	assert.ErrorIs(t, err, ErrContactAlreadyImported)

	var contacts int64
	require.NoError(t, db.Model(&model.Contact{}).
		Where("company_id = ? AND external_contact_id = ?", company, "ext-55").Count(&contacts).Error)
	assert.Equal(t, int64(1), contacts)

	var orphans int64
	require.NoError(t, db.Model(&model.ContactBranch{}).Where("contact_id = ?", second.Contact.ID).Count(&orphans).Error)
	assert.Zero(t, orphans)

	// 其他公司可以导入同一个外部联系人
	require.NoError(t, repo.CreateImported(ctx, importedContact(uuid.NewString(), "ext-55")))
}
