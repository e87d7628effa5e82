package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"OutreachSync/internal/apperr"
	"OutreachSync/internal/interfaces"
	"OutreachSync/internal/model"
	"OutreachSync/internal/repository"
	"OutreachSync/internal/testutil"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// stubMapping 内存映射表，err 非空时所有查询失败
type stubMapping struct {
	mu           sync.Mutex
	groups       map[string]string // institution -> group
	institutions map[string]string // group -> institution
	err          error
	calls        int
	invalidated  []string
}

func (m *stubMapping) GroupForInstitution(ctx context.Context, companyID, institutionID string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return "", false, m.err
	}
	g, ok := m.groups[institutionID]
	return g, ok, nil
}

func (m *stubMapping) InstitutionForGroup(ctx context.Context, companyID, groupID string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return "", false, m.err
	}
	i, ok := m.institutions[groupID]
	return i, ok, nil
}

func (m *stubMapping) Invalidate(ctx context.Context, companyID, institutionID, groupID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invalidated = append(m.invalidated, institutionID+"|"+groupID)
	return nil
}

type stubDirectory struct {
	profiles map[string]*model.ExternalContactProfile
	err      error
	calls    int
}

func (d *stubDirectory) GetContactProfile(ctx context.Context, externalContactID string) (*model.ExternalContactProfile, error) {
	d.calls++
	if d.err != nil {
		return nil, d.err
	}
	return d.profiles[externalContactID], nil
}

type fixture struct {
	db         *gorm.DB
	company    string
	mapping    *stubMapping
	directory  *stubDirectory
	tasks      repository.TaskRepository
	contacts   repository.ContactRepository
	links      repository.LinkRepository
	importer   *ImportService
	reconciler *ReconcileService
}

func newFixture(t *testing.T, opts ...ReconcileOption) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	f := &fixture{
		db:        db,
		company:   uuid.NewString(),
		mapping:   &stubMapping{groups: map[string]string{}, institutions: map[string]string{}},
		directory: &stubDirectory{profiles: map[string]*model.ExternalContactProfile{}},
		tasks:     repository.NewTaskRepository(db),
		contacts:  repository.NewContactRepository(db),
		links:     repository.NewLinkRepository(db),
	}
	f.importer = NewImportService(f.contacts, f.directory, quietLogger())
	f.reconciler = NewReconcileService(f.tasks, f.contacts, f.links, f.mapping, f.importer, quietLogger(), opts...)
	return f
}

// setMapping 双向登记 institution <-> group
func (f *fixture) setMapping(institutionID, groupID string) {
	f.mapping.groups[institutionID] = groupID
	f.mapping.institutions[groupID] = institutionID
}

func (f *fixture) newTask(t *testing.T) string {
	t.Helper()
	task := &model.Task{
		TaskID:    uuid.NewString(),
		CompanyID: f.company,
		Title:     "meeting",
		Due:       time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, f.tasks.Create(context.Background(), task, nil, nil))
	return task.TaskID
}

func (f *fixture) newContact(t *testing.T, name string) string {
	t.Helper()
	c := &model.Contact{ID: uuid.NewString(), CompanyID: f.company, Name: name}
	require.NoError(t, f.db.Create(c).Error)
	return c.ID
}

func (f *fixture) institutionIDs(t *testing.T, taskID string) []string {
	t.Helper()
	var ids []string
	require.NoError(t, f.db.Model(&model.TaskInstitution{}).Where("task_id = ?", taskID).
		Order("institution_id").Pluck("institution_id", &ids).Error)
	return ids
}

func (f *fixture) groupIDs(t *testing.T, taskID string) []string {
	t.Helper()
	var ids []string
	require.NoError(t, f.db.Model(&model.TaskShareholder{}).
		Where("task_id = ? AND shareholder_group_id IS NOT NULL", taskID).
		Order("shareholder_group_id").Pluck("shareholder_group_id", &ids).Error)
	return ids
}

func (f *fixture) contactIDs(t *testing.T, taskID string) []string {
	t.Helper()
	var ids []string
	require.NoError(t, f.db.Model(&model.TaskContact{}).Where("task_id = ?", taskID).
		Order("contact_id").Pluck("contact_id", &ids).Error)
	return ids
}

func requireKind(t *testing.T, err error, kind apperr.Kind) *apperr.Error {
	t.Helper()
	require.Error(t, err)
	e, ok := apperr.As(err)
	require.True(t, ok, "expected *apperr.Error, got %T: %v", err, err)
	require.Equal(t, kind, e.Kind, "unexpected kind for %v", err)
	return e
}

var errTimeout = errors.New("i/o timeout")

var _ interfaces.MappingClient = (*stubMapping)(nil)
var _ interfaces.DirectoryClient = (*stubDirectory)(nil)
