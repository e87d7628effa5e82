package service

import (
	"context"
	"testing"
	"time"

	"OutreachSync/internal/apperr"
	"OutreachSync/internal/model"
	"OutreachSync/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTaskWithInitialLinks(t *testing.T) {
	f := newFixture(t)
	svc := NewTaskService(f.tasks, f.reconciler, quietLogger())
	ctx := context.Background()
	f.setMapping("inst-7", "grp-3")

	task, err := svc.CreateTask(ctx, CreateTaskRequest{
		CompanyID:     f.company,
		Title:         "Intro call",
		Due:           time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
		ExecutorIDs:   []string{"u-1", "u-1", "", "u-2"},
		InstitutionID: "inst-7",
		FundID:        "fund-1",
		FundName:      "Growth",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"inst-7"}, f.institutionIDs(t, task.TaskID))
	assert.Equal(t, []string{"grp-3"}, f.groupIDs(t, task.TaskID))

	var executors int64
	require.NoError(t, f.db.Model(&model.TaskExecutor{}).Where("task_id = ?", task.TaskID).Count(&executors).Error)
	assert.Equal(t, int64(2), executors)

	var funds int64
	require.NoError(t, f.db.Model(&model.TaskFund{}).Where("task_id = ?", task.TaskID).Count(&funds).Error)
	assert.Equal(t, int64(1), funds)
}

func TestCreateTaskLookupFailureWritesNothing(t *testing.T) {
	f := newFixture(t)
	svc := NewTaskService(f.tasks, f.reconciler, quietLogger())
	f.mapping.err = errTimeout

	_, err := svc.CreateTask(context.Background(), CreateTaskRequest{
		CompanyID:     f.company,
		Title:         "Intro call",
		Due:           time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
		InstitutionID: "inst-7",
	})
	requireKind(t, err, apperr.KindExternalService)

	var n int64
	require.NoError(t, f.db.Model(&model.Task{}).Where("company_id = ?", f.company).Count(&n).Error)
	assert.Zero(t, n)
}

func TestCreateTaskValidation(t *testing.T) {
	f := newFixture(t)
	svc := NewTaskService(f.tasks, f.reconciler, quietLogger())

	_, err := svc.CreateTask(context.Background(), CreateTaskRequest{CompanyID: f.company, Due: time.Now()})
	e := requireKind(t, err, apperr.KindValidation)
	assert.Equal(t, "task_title", e.Field)

	_, err = svc.CreateTask(context.Background(), CreateTaskRequest{CompanyID: f.company, Title: "x"})
	e = requireKind(t, err, apperr.KindValidation)
	assert.Equal(t, "task_due", e.Field)
}

func TestDeleteTask(t *testing.T) {
	f := newFixture(t)
	svc := NewTaskService(f.tasks, f.reconciler, quietLogger())
	ctx := context.Background()
	taskID := f.newTask(t)
	require.NoError(t, f.links.ApplyLinkPlan(ctx, repository.LinkPlan{
		TaskID: taskID,
		Fund:   &model.TaskFund{FundID: "fund-1"},
	}))

	require.NoError(t, svc.DeleteTask(ctx, f.company, taskID))

	err := svc.DeleteTask(ctx, f.company, taskID)
	e := requireKind(t, err, apperr.KindNotFound)
	assert.Equal(t, apperr.CodeTaskNotFound, e.Code)
}

func TestFollowUps(t *testing.T) {
	f := newFixture(t)
	svc := NewTaskService(f.tasks, f.reconciler, quietLogger())
	ctx := context.Background()
	taskID := f.newTask(t)

	followUp, err := svc.AddFollowUp(ctx, FollowUpRequest{CompanyID: f.company, TaskID: taskID, Annotation: "sent deck"})
	require.NoError(t, err)
	assert.False(t, followUp.AnnotationDate.IsZero())

	_, err = svc.AddFollowUp(ctx, FollowUpRequest{CompanyID: f.company, TaskID: taskID})
	requireKind(t, err, apperr.KindValidation)

	_, err = svc.AddFollowUp(ctx, FollowUpRequest{CompanyID: f.company, TaskID: uuid.NewString(), Annotation: "x"})
	requireKind(t, err, apperr.KindNotFound)

	require.NoError(t, svc.RemoveFollowUp(ctx, f.company, taskID, followUp.FollowUpID))
	var n int64
	require.NoError(t, f.db.Model(&model.TaskFollowUp{}).Where("task_id = ?", taskID).Count(&n).Error)
	assert.Zero(t, n)
}
