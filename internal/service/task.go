package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"OutreachSync/internal/apperr"
	"OutreachSync/internal/metrics"
	"OutreachSync/internal/model"
	"OutreachSync/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// CreateTaskRequest 创建任务；InstitutionID/FundID 为可选的初始关联
type CreateTaskRequest struct {
	CompanyID       string
	Title           string
	Type            string
	Subtype         string
	TaskTypeID      *string
	TaskSubtypeID   *string
	Description     string
	Due             time.Time
	StartDate       *time.Time
	Origin          string
	CreatedBy       string
	ExecutorIDs     []string
	InstitutionID   string
	InstitutionName string
	FundID          string
	FundName        string
}

// FollowUpRequest 新增跟进记录
type FollowUpRequest struct {
	CompanyID      string
	TaskID         string
	CreatedBy      string
	Annotation     string
	AnnotationDate time.Time
}

// TaskService 任务写入：创建、删除、跟进记录
type TaskService struct {
	tasks      repository.TaskRepository
	reconciler *ReconcileService
	logger     *logrus.Logger
}

func NewTaskService(tasks repository.TaskRepository, reconciler *ReconcileService, logger *logrus.Logger) *TaskService {
	return &TaskService{tasks: tasks, reconciler: reconciler, logger: logger}
}

// CreateTask 初始机构关联与普通关联一样先查映射；任务、执行人、初始关联在同一事务内写入
func (s *TaskService) CreateTask(ctx context.Context, req CreateTaskRequest) (*model.Task, error) {
	if strings.TrimSpace(req.CompanyID) == "" {
		return nil, apperr.Validation("companyId", errors.New("company id is required"))
	}
	if strings.TrimSpace(req.Title) == "" {
		return nil, apperr.Validation("task_title", errors.New("title is required"))
	}
	if req.Due.IsZero() {
		return nil, apperr.Validation("task_due", errors.New("due date is required"))
	}

	task := &model.Task{
		TaskID:        uuid.NewString(),
		CompanyID:     req.CompanyID,
		Title:         req.Title,
		Type:          req.Type,
		Subtype:       req.Subtype,
		TaskTypeID:    req.TaskTypeID,
		TaskSubtypeID: req.TaskSubtypeID,
		Description:   req.Description,
		Due:           req.Due,
		StartDate:     req.StartDate,
		Origin:        req.Origin,
		CreatedBy:     req.CreatedBy,
	}

	var initial plannedLink
	if req.InstitutionID != "" {
		planned, err := s.reconciler.plan(ctx, LinkRequest{
			CompanyID:      req.CompanyID,
			TaskID:         task.TaskID,
			Kind:           model.KindInstitution,
			CounterpartyID: req.InstitutionID,
			Name:           req.InstitutionName,
		})
		if err != nil {
			metrics.ReconcileTotal.WithLabelValues(string(model.KindInstitution), "lookup_failed").Inc()
			s.logger.WithError(err).WithField("institution_id", req.InstitutionID).Error("创建任务时映射查询失败")
			return nil, err
		}
		initial = planned
	}
	if req.FundID != "" {
		initial.plan.Fund = &model.TaskFund{FundID: req.FundID, Name: req.FundName}
	}

	if err := s.tasks.Create(ctx, task, dedupe(req.ExecutorIDs), &initial.plan); err != nil {
		s.logger.WithError(err).WithField("company_id", req.CompanyID).Error("创建任务失败")
		return nil, apperr.Store(err)
	}
	if initial.plan.Institution != nil {
		metrics.ReconcileTotal.WithLabelValues(string(model.KindInstitution), initial.outcome()).Inc()
	}
	s.logger.WithFields(logrus.Fields{"company_id": req.CompanyID, "task_id": task.TaskID}).Info("创建任务成功")
	s.reconciler.verify(ctx, req.CompanyID, initial.lookup)
	return task, nil
}

// DeleteTask 删除任务及其全部关联
func (s *TaskService) DeleteTask(ctx context.Context, companyID, taskID string) error {
	deleted, err := s.tasks.Delete(ctx, companyID, taskID)
	if err != nil {
		s.logger.WithError(err).WithField("task_id", taskID).Error("删除任务失败")
		return apperr.Store(err)
	}
	if !deleted {
		return apperr.NotFound(apperr.CodeTaskNotFound, fmt.Errorf("task %s not found", taskID))
	}
	s.logger.WithFields(logrus.Fields{"company_id": companyID, "task_id": taskID}).Info("删除任务成功")
	return nil
}

func (s *TaskService) AddFollowUp(ctx context.Context, req FollowUpRequest) (*model.TaskFollowUp, error) {
	if strings.TrimSpace(req.Annotation) == "" {
		return nil, apperr.Validation("annotation", errors.New("annotation is required"))
	}
	if err := s.reconciler.ensureTask(ctx, req.CompanyID, req.TaskID); err != nil {
		return nil, err
	}
	date := req.AnnotationDate
	if date.IsZero() {
		date = time.Now().UTC()
	}
	f := &model.TaskFollowUp{
		FollowUpID:     uuid.NewString(),
		TaskID:         req.TaskID,
		CreatedBy:      req.CreatedBy,
		Annotation:     req.Annotation,
		AnnotationDate: date,
	}
	if err := s.tasks.AddFollowUp(ctx, f); err != nil {
		s.logger.WithError(err).WithField("task_id", req.TaskID).Error("保存跟进记录失败")
		return nil, apperr.Store(err)
	}
	return f, nil
}

func (s *TaskService) RemoveFollowUp(ctx context.Context, companyID, taskID, followUpID string) error {
	if err := s.reconciler.ensureTask(ctx, companyID, taskID); err != nil {
		return err
	}
	if _, err := s.tasks.RemoveFollowUp(ctx, taskID, followUpID); err != nil {
		s.logger.WithError(err).WithField("followup_id", followUpID).Error("删除跟进记录失败")
		return apperr.Store(err)
	}
	return nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
