package repository

import (
	"testing"
	"time"

	"OutreachSync/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func strPtr(s string) *string { return &s }

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func seedTask(t *testing.T, db *gorm.DB, companyID, title string, due time.Time) *model.Task {
	t.Helper()
	task := &model.Task{
		TaskID:    uuid.NewString(),
		CompanyID: companyID,
		Title:     title,
		Type:      "meeting",
		Due:       due,
		Origin:    "manual",
	}
	require.NoError(t, db.Create(task).Error)
	return task
}

func seedUser(t *testing.T, db *gorm.DB, companyID, name string) *model.User {
	t.Helper()
	u := &model.User{ID: uuid.NewString(), CompanyID: companyID, Name: name}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedContact(t *testing.T, db *gorm.DB, companyID, name string, externalID *string) *model.Contact {
	t.Helper()
	c := &model.Contact{ID: uuid.NewString(), CompanyID: companyID, Name: name, ExternalContactID: externalID}
	require.NoError(t, db.Create(c).Error)
	return c
}
