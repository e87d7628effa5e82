package service

import (
	"context"
	"errors"
	"fmt"

	"OutreachSync/internal/apperr"
	"OutreachSync/internal/model"
	"OutreachSync/internal/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	defaultPerPage = 10
	maxPerPage     = 1000
)

// ListRequest 列表查询参数，PageNumber 从 1 开始
type ListRequest struct {
	CompanyID  string
	Scope      repository.ListScope
	ScopeID    string
	PageNumber int
	PerPage    int
}

// TaskTypeNode 内部类型及其子类型
type TaskTypeNode struct {
	model.TaskType
	Subtypes []model.TaskSubtype `json:"subtypes"`
}

// TaskQueryService 任务详情与列表
type TaskQueryService struct {
	reads  repository.TaskReadRepository
	tasks  repository.TaskRepository
	logger *logrus.Logger
}

func NewTaskQueryService(reads repository.TaskReadRepository, tasks repository.TaskRepository, logger *logrus.Logger) *TaskQueryService {
	return &TaskQueryService{reads: reads, tasks: tasks, logger: logger}
}

// GetTaskDetail 在一个快照内读取任务全部关联
func (s *TaskQueryService) GetTaskDetail(ctx context.Context, companyID, taskID string) (*model.TaskDetail, error) {
	detail, err := s.reads.GetDetail(ctx, companyID, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(apperr.CodeTaskNotFound, fmt.Errorf("task %s not found", taskID))
		}
		s.logger.WithError(err).WithField("task_id", taskID).Error("查询任务详情失败")
		return nil, apperr.Store(err)
	}
	return detail, nil
}

// ListTasks 分页默认 10 条，上限 1000
func (s *TaskQueryService) ListTasks(ctx context.Context, req ListRequest) (*model.TaskListPage, error) {
	if req.Scope != repository.ScopeCompany && req.Scope != "" && req.ScopeID == "" {
		return nil, apperr.Validation(string(req.Scope)+"Id", errors.New("scope id is required"))
	}
	page, perPage := req.PageNumber, req.PerPage
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	items, total, err := s.reads.List(ctx, repository.ListFilter{
		CompanyID: req.CompanyID,
		Scope:     req.Scope,
		ScopeID:   req.ScopeID,
		Page:      page,
		PerPage:   perPage,
	})
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{"scope": req.Scope, "scope_id": req.ScopeID}).Error("查询任务列表失败")
		return nil, apperr.Store(err)
	}
	return &model.TaskListPage{Items: items, Total: total, PageNumber: page, PerPage: perPage}, nil
}

// ListTaskTypes 公司内部类型树
func (s *TaskQueryService) ListTaskTypes(ctx context.Context, companyID string) ([]TaskTypeNode, error) {
	types, err := s.tasks.ListTaskTypes(ctx, companyID)
	if err != nil {
		return nil, apperr.Store(err)
	}
	ids := make([]string, 0, len(types))
	for _, t := range types {
		ids = append(ids, t.TaskTypeID)
	}
	subtypes, err := s.tasks.ListTaskSubtypes(ctx, ids)
	if err != nil {
		return nil, apperr.Store(err)
	}
	byType := make(map[string][]model.TaskSubtype)
	for _, st := range subtypes {
		byType[st.TaskTypeID] = append(byType[st.TaskTypeID], st)
	}

	nodes := make([]TaskTypeNode, 0, len(types))
	for _, t := range types {
		subs := byType[t.TaskTypeID]
		if subs == nil {
			subs = []model.TaskSubtype{}
		}
		nodes = append(nodes, TaskTypeNode{TaskType: t, Subtypes: subs})
	}
	return nodes, nil
}
