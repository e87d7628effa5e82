package service

import (
	"context"
	"testing"

	"OutreachSync/internal/apperr"
	"OutreachSync/internal/interfaces"
	"OutreachSync/internal/metrics"
	"OutreachSync/internal/model"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinkContactWithInstitutionHintLinksMappedGroup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	taskID := f.newTask(t)
	contactID := f.newContact(t, "Ann")
	f.setMapping("inst-7", "grp-3")

	err := f.reconciler.LinkCounterparty(ctx, LinkRequest{
		CompanyID:      f.company,
		TaskID:         taskID,
		Kind:           model.KindContact,
		CounterpartyID: contactID,
		Hint:           InstitutionHint("inst-7", "Seven Capital"),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{contactID}, f.contactIDs(t, taskID))
	assert.Equal(t, []string{"inst-7"}, f.institutionIDs(t, taskID))
	assert.Equal(t, []string{"grp-3"}, f.groupIDs(t, taskID))
}

func TestLinkContactWithGroupHintLinksMappedInstitution(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	taskID := f.newTask(t)
	contactID := f.newContact(t, "Ann")
	f.setMapping("inst-7", "grp-3")

	require.NoError(t, f.reconciler.LinkCounterparty(ctx, LinkRequest{
		CompanyID:      f.company,
		TaskID:         taskID,
		Kind:           model.KindContact,
		CounterpartyID: contactID,
		Hint:           GroupHint("grp-3", ""),
	}))

	assert.Equal(t, []string{"inst-7"}, f.institutionIDs(t, taskID))
	assert.Equal(t, []string{"grp-3"}, f.groupIDs(t, taskID))
}

func TestLinkMappingMissLeavesPairedSlot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	taskID := f.newTask(t)
	contactID := f.newContact(t, "Ann")

	// inst-1 没有映射，只写机构
	require.NoError(t, f.reconciler.LinkCounterparty(ctx, LinkRequest{
		CompanyID: f.company, TaskID: taskID, Kind: model.KindInstitution, CounterpartyID: "inst-1",
	}))
	// grp-9 也没有映射：写股东组和联系人，已有的 inst-1 保持不变
	require.NoError(t, f.reconciler.LinkCounterparty(ctx, LinkRequest{
		CompanyID:      f.company,
		TaskID:         taskID,
		Kind:           model.KindContact,
		CounterpartyID: contactID,
		Hint:           GroupHint("grp-9", "Nine"),
	}))

	assert.Equal(t, []string{"inst-1"}, f.institutionIDs(t, taskID))
	assert.Equal(t, []string{"grp-9"}, f.groupIDs(t, taskID))
	assert.Equal(t, []string{contactID}, f.contactIDs(t, taskID))
}

func TestLinkInstitutionReplacesExistingPair(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	taskID := f.newTask(t)
	f.setMapping("inst-A", "grp-A")
	f.setMapping("inst-B", "grp-B")

	for _, inst := range []string{"inst-A", "inst-B"} {
		require.NoError(t, f.reconciler.LinkCounterparty(ctx, LinkRequest{
			CompanyID: f.company, TaskID: taskID, Kind: model.KindInstitution, CounterpartyID: inst,
		}))
	}
	assert.Equal(t, []string{"inst-B"}, f.institutionIDs(t, taskID))
	assert.Equal(t, []string{"grp-B"}, f.groupIDs(t, taskID))

	require.NoError(t, f.reconciler.LinkCounterparty(ctx, LinkRequest{
		CompanyID: f.company, TaskID: taskID, Kind: model.KindShareholderGroup, CounterpartyID: "grp-A",
	}))
	assert.Equal(t, []string{"inst-A"}, f.institutionIDs(t, taskID))
	assert.Equal(t, []string{"grp-A"}, f.groupIDs(t, taskID))
}

func TestLinkFailsFastWhenLookupFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	taskID := f.newTask(t)
	contactID := f.newContact(t, "Ann")
	f.setMapping("inst-1", "grp-1")
	require.NoError(t, f.reconciler.LinkCounterparty(ctx, LinkRequest{
		CompanyID: f.company, TaskID: taskID, Kind: model.KindInstitution, CounterpartyID: "inst-1",
	}))

	f.mapping.err = errTimeout
	before := testutil.ToFloat64(metrics.ReconcileTotal.WithLabelValues("contact", "lookup_failed"))

	err := f.reconciler.LinkCounterparty(ctx, LinkRequest{
		CompanyID:      f.company,
		TaskID:         taskID,
		Kind:           model.KindContact,
		CounterpartyID: contactID,
		Hint:           InstitutionHint("inst-2", ""),
	})
	requireKind(t, err, apperr.KindExternalService)
	assert.ErrorIs(t, err, errTimeout)

	assert.Empty(t, f.contactIDs(t, taskID))
	assert.Equal(t, []string{"inst-1"}, f.institutionIDs(t, taskID))
	assert.Equal(t, []string{"grp-1"}, f.groupIDs(t, taskID))
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.ReconcileTotal.WithLabelValues("contact", "lookup_failed")))
}

func TestLinkPlainKindsSkipMapping(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	taskID := f.newTask(t)

	for _, req := range []LinkRequest{
		{Kind: model.KindFund, CounterpartyID: "fund-1", Name: "Growth"},
		{Kind: model.KindShareholder, CounterpartyID: "sh-1", Name: "Holder"},
		{Kind: model.KindExternalContact, CounterpartyID: "ext-1", Name: "Eve"},
		{Kind: model.KindExecutor, CounterpartyID: uuid.NewString()},
	} {
		req.CompanyID, req.TaskID = f.company, taskID
		require.NoError(t, f.reconciler.LinkCounterparty(ctx, req), req.Kind)
		require.NoError(t, f.reconciler.LinkCounterparty(ctx, req), req.Kind)
	}
	assert.Zero(t, f.mapping.calls)

	var shareholders int64
	require.NoError(t, f.db.Model(&model.TaskShareholder{}).Where("task_id = ?", taskID).Count(&shareholders).Error)
	assert.Equal(t, int64(1), shareholders)
}

func TestLinkRejectsBadRequests(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	taskID := f.newTask(t)

	err := f.reconciler.LinkCounterparty(ctx, LinkRequest{
		CompanyID: f.company, TaskID: taskID, Kind: model.KindFund, CounterpartyID: "fund-1",
		Hint: InstitutionHint("inst-1", ""),
	})
	requireKind(t, err, apperr.KindValidation)

	err = f.reconciler.LinkCounterparty(ctx, LinkRequest{
		CompanyID: f.company, TaskID: taskID, Kind: model.KindFund,
	})
	requireKind(t, err, apperr.KindValidation)

	err = f.reconciler.LinkCounterparty(ctx, LinkRequest{
		CompanyID: f.company, TaskID: uuid.NewString(), Kind: model.KindFund, CounterpartyID: "fund-1",
	})
	e := requireKind(t, err, apperr.KindNotFound)
	assert.Equal(t, apperr.CodeTaskNotFound, e.Code)

	err = f.reconciler.LinkCounterparty(ctx, LinkRequest{
		CompanyID: f.company, TaskID: taskID, Kind: model.KindContact, CounterpartyID: uuid.NewString(),
	})
	e = requireKind(t, err, apperr.KindNotFound)
	assert.Equal(t, apperr.CodeContactNotFound, e.Code)
	assert.Zero(t, f.mapping.calls, "validation must happen before any lookup")
}

func TestRemoveCounterpartyKeepsPairedSlot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	taskID := f.newTask(t)
	f.setMapping("inst-7", "grp-3")
	require.NoError(t, f.reconciler.LinkCounterparty(ctx, LinkRequest{
		CompanyID: f.company, TaskID: taskID, Kind: model.KindInstitution, CounterpartyID: "inst-7",
	}))

	require.NoError(t, f.reconciler.RemoveCounterparty(ctx, f.company, taskID, model.KindInstitution, "inst-7"))
	assert.Empty(t, f.institutionIDs(t, taskID))
	assert.Equal(t, []string{"grp-3"}, f.groupIDs(t, taskID))

	// 删除不存在的行不报错
	require.NoError(t, f.reconciler.RemoveCounterparty(ctx, f.company, taskID, model.KindInstitution, "inst-7"))

	err := f.reconciler.RemoveCounterparty(ctx, f.company, uuid.NewString(), model.KindFund, "fund-1")
	requireKind(t, err, apperr.KindNotFound)
}

// driftingMapping 第一次回答 first，之后回答 later；Uncached 返回自身
type driftingMapping struct {
	stubMapping
	answers []string
}

func (d *driftingMapping) GroupForInstitution(ctx context.Context, companyID, institutionID string) (string, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	answer := d.answers[0]
	if len(d.answers) > 1 {
		d.answers = d.answers[1:]
	}
	d.calls++
	return answer, answer != "", nil
}

func (d *driftingMapping) Uncached() interfaces.MappingClient { return d }

func TestVerifyAfterWriteReportsDrift(t *testing.T) {
	f := newFixture(t)
	drift := &driftingMapping{answers: []string{"grp-old", "grp-new"}}
	f.reconciler = NewReconcileService(f.tasks, f.contacts, f.links, drift, f.importer, quietLogger(), WithVerifyAfterWrite(true))
	ctx := context.Background()
	taskID := f.newTask(t)

	before := testutil.ToFloat64(metrics.MappingDriftTotal)
	require.NoError(t, f.reconciler.LinkCounterparty(ctx, LinkRequest{
		CompanyID: f.company, TaskID: taskID, Kind: model.KindInstitution, CounterpartyID: "inst-7",
	}))

	assert.Equal(t, before+1, testutil.ToFloat64(metrics.MappingDriftTotal))
	assert.Equal(t, 2, drift.calls)
	assert.Equal(t, []string{"inst-7|grp-old"}, drift.invalidated)
	// 已提交的写入不回滚
	assert.Equal(t, []string{"grp-old"}, f.groupIDs(t, taskID))
}

func TestVerifyAfterWriteSilentWhenStable(t *testing.T) {
	f := newFixture(t, WithVerifyAfterWrite(true))
	ctx := context.Background()
	taskID := f.newTask(t)
	f.setMapping("inst-7", "grp-3")

	before := testutil.ToFloat64(metrics.MappingDriftTotal)
	require.NoError(t, f.reconciler.LinkCounterparty(ctx, LinkRequest{
		CompanyID: f.company, TaskID: taskID, Kind: model.KindInstitution, CounterpartyID: "inst-7",
	}))
	assert.Equal(t, before, testutil.ToFloat64(metrics.MappingDriftTotal))
	assert.Equal(t, 2, f.mapping.calls)
	assert.Empty(t, f.mapping.invalidated)
}

func TestLinkFromExternalContactImportsOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	taskID := f.newTask(t)
	f.directory.profiles["ext-55"] = &model.ExternalContactProfile{
		Details: model.ExternalContactDetails{Name: "Jane Doe", InvestorID: "inv-1"},
	}

	first, err := f.reconciler.LinkFromExternalContact(ctx, f.company, taskID, "ext-55")
	require.NoError(t, err)
	second, err := f.reconciler.LinkFromExternalContact(ctx, f.company, taskID, "ext-55")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, f.directory.calls)
	assert.Equal(t, []string{first}, f.contactIDs(t, taskID))

	_, err = f.reconciler.LinkFromExternalContact(ctx, f.company, taskID, "ext-404")
	e := requireKind(t, err, apperr.KindNotFound)
	assert.Equal(t, apperr.CodeExternalContactNotFound, e.Code)
}
