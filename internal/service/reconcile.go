package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"OutreachSync/internal/apperr"
	"OutreachSync/internal/interfaces"
	"OutreachSync/internal/metrics"
	"OutreachSync/internal/model"
	"OutreachSync/internal/repository"

	"github.com/sirupsen/logrus"
)

// HintKind 关联联系人时附带的提示类型
type HintKind int

const (
	HintNone HintKind = iota
	HintInstitution
	HintGroup
)

// LinkHint 联系人所属机构或股东组，零值为无提示
type LinkHint struct {
	kind HintKind
	id   string
	name string
}

func NoHint() LinkHint { return LinkHint{} }

// InstitutionHint 联系人属于机构 id
func InstitutionHint(id, name string) LinkHint {
	return LinkHint{kind: HintInstitution, id: id, name: name}
}

// GroupHint 联系人属于股东组 id
func GroupHint(id, name string) LinkHint {
	return LinkHint{kind: HintGroup, id: id, name: name}
}

// LinkRequest 一次关联请求
type LinkRequest struct {
	CompanyID      string
	TaskID         string
	Kind           model.CounterpartyKind
	CounterpartyID string
	Name           string
	Hint           LinkHint
}

// mappingLookup 写入计划所依据的映射答案，写后复核时使用
type mappingLookup struct {
	from   model.CounterpartyKind // 以机构查股东组，或以股东组查机构
	id     string
	answer string
	found  bool
}

type plannedLink struct {
	plan   repository.LinkPlan
	lookup *mappingLookup
}

// outcome 指标标签
func (p plannedLink) outcome() string {
	switch {
	case p.plan.Institution != nil && p.plan.Group != nil:
		return "both"
	case p.plan.Institution != nil || p.plan.Group != nil:
		return "single"
	}
	return "alone"
}

// mappingInvalidator 缓存实现提供的失效接口
type mappingInvalidator interface {
	Invalidate(ctx context.Context, companyID, institutionID, groupID string) error
}

// uncachedMapping 缓存实现提供的底层客户端
type uncachedMapping interface {
	Uncached() interfaces.MappingClient
}

// ReconcileService 任务关联写入，负责机构/股东组与映射服务保持一致
type ReconcileService struct {
	tasks            repository.TaskRepository
	contacts         repository.ContactRepository
	links            repository.LinkRepository
	mapping          interfaces.MappingClient
	importer         *ImportService
	verifyAfterWrite bool
	logger           *logrus.Logger
}

// ReconcileOption 可选配置
type ReconcileOption func(*ReconcileService)

// WithVerifyAfterWrite 写入后重新查询映射，发现变化时记录告警
func WithVerifyAfterWrite(enabled bool) ReconcileOption {
	return func(s *ReconcileService) { s.verifyAfterWrite = enabled }
}

func NewReconcileService(
	tasks repository.TaskRepository,
	contacts repository.ContactRepository,
	links repository.LinkRepository,
	mapping interfaces.MappingClient,
	importer *ImportService,
	logger *logrus.Logger,
	opts ...ReconcileOption,
) *ReconcileService {
	s := &ReconcileService{
		tasks:    tasks,
		contacts: contacts,
		links:    links,
		mapping:  mapping,
		importer: importer,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func validateLinkRequest(req LinkRequest) error {
	if strings.TrimSpace(req.CompanyID) == "" {
		return apperr.Validation("companyId", errors.New("company id is required"))
	}
	if strings.TrimSpace(req.TaskID) == "" {
		return apperr.Validation("taskId", errors.New("task id is required"))
	}
	if strings.TrimSpace(req.CounterpartyID) == "" {
		return apperr.Validation(string(req.Kind)+"Id", errors.New("counterparty id is required"))
	}
	if _, err := model.ParseCounterpartyKind(string(req.Kind)); err != nil {
		return apperr.Validation("kind", err)
	}
	if req.Hint.kind != HintNone {
		if req.Kind != model.KindContact {
			return apperr.Validation("hint", errors.New("hint is only valid for contact links"))
		}
		if strings.TrimSpace(req.Hint.id) == "" {
			return apperr.Validation("hint", errors.New("hint id is required"))
		}
	}
	return nil
}

func (s *ReconcileService) ensureTask(ctx context.Context, companyID, taskID string) error {
	ok, err := s.tasks.Exists(ctx, companyID, taskID)
	if err != nil {
		return apperr.Store(fmt.Errorf("查询任务失败: %w", err))
	}
	if !ok {
		return apperr.NotFound(apperr.CodeTaskNotFound, fmt.Errorf("task %s not found", taskID))
	}
	return nil
}

// LinkCounterparty 先查映射（事务外），再在一个事务内写入整份计划。
// 映射查询失败时不做任何写入。
func (s *ReconcileService) LinkCounterparty(ctx context.Context, req LinkRequest) error {
	if err := validateLinkRequest(req); err != nil {
		return err
	}
	if err := s.ensureTask(ctx, req.CompanyID, req.TaskID); err != nil {
		return err
	}
	if req.Kind == model.KindContact {
		ok, err := s.contacts.Exists(ctx, req.CompanyID, req.CounterpartyID)
		if err != nil {
			return apperr.Store(fmt.Errorf("查询联系人失败: %w", err))
		}
		if !ok {
			return apperr.NotFound(apperr.CodeContactNotFound, fmt.Errorf("contact %s not found", req.CounterpartyID))
		}
	}

	log := s.logger.WithFields(logrus.Fields{
		"company_id": req.CompanyID,
		"task_id":    req.TaskID,
		"kind":       req.Kind,
		"id":         req.CounterpartyID,
	})

	planned, err := s.plan(ctx, req)
	if err != nil {
		metrics.ReconcileTotal.WithLabelValues(string(req.Kind), "lookup_failed").Inc()
		log.WithError(err).Error("映射服务查询失败，放弃写入")
		return err
	}
	planned.plan.TaskID = req.TaskID

	if err := s.links.ApplyLinkPlan(ctx, planned.plan); err != nil {
		metrics.ReconcileTotal.WithLabelValues(string(req.Kind), "store_failed").Inc()
		log.WithError(err).Error("保存任务关联失败")
		return apperr.Store(err)
	}

	metrics.ReconcileTotal.WithLabelValues(string(req.Kind), planned.outcome()).Inc()
	log.WithField("outcome", planned.outcome()).Info("任务关联成功")
	s.verify(ctx, req.CompanyID, planned.lookup)
	return nil
}

// plan 按类型与提示生成写入计划，只读取映射服务，不写库
func (s *ReconcileService) plan(ctx context.Context, req LinkRequest) (plannedLink, error) {
	var p plannedLink
	var err error
	switch req.Kind {
	case model.KindContact:
		p.plan.Contact = &model.TaskContact{ContactID: req.CounterpartyID}
		switch req.Hint.kind {
		case HintInstitution:
			p.lookup, err = s.pairFromInstitution(ctx, req.CompanyID, req.Hint.id, req.Hint.name, &p.plan)
		case HintGroup:
			p.lookup, err = s.pairFromGroup(ctx, req.CompanyID, req.Hint.id, req.Hint.name, &p.plan)
		}
	case model.KindInstitution:
		p.lookup, err = s.pairFromInstitution(ctx, req.CompanyID, req.CounterpartyID, req.Name, &p.plan)
	case model.KindShareholderGroup:
		p.lookup, err = s.pairFromGroup(ctx, req.CompanyID, req.CounterpartyID, req.Name, &p.plan)
	case model.KindFund:
		p.plan.Fund = &model.TaskFund{FundID: req.CounterpartyID, Name: req.Name}
	case model.KindShareholder:
		id := req.CounterpartyID
		p.plan.Shareholder = &model.TaskShareholder{ShareholderID: &id, Name: req.Name}
	case model.KindExternalContact:
		p.plan.ExternalContact = &model.TaskExternalContact{ExternalContactID: req.CounterpartyID, Name: req.Name}
	case model.KindExecutor:
		p.plan.Executor = &model.TaskExecutor{ExecutorID: req.CounterpartyID}
	default:
		return p, apperr.Validation("kind", fmt.Errorf("unsupported counterparty kind %q", req.Kind))
	}
	if err != nil {
		return plannedLink{}, err
	}
	return p, nil
}

// pairFromInstitution 写机构；映射到股东组时一并写入，未映射时不动股东组
func (s *ReconcileService) pairFromInstitution(ctx context.Context, companyID, institutionID, name string, plan *repository.LinkPlan) (*mappingLookup, error) {
	if s.mapping == nil {
		return nil, apperr.External(errors.New("mapping client not configured"))
	}
	groupID, found, err := s.mapping.GroupForInstitution(ctx, companyID, institutionID)
	if err != nil {
		return nil, apperr.External(fmt.Errorf("lookup group for institution %s: %w", institutionID, err))
	}
	plan.Institution = &model.TaskInstitution{InstitutionID: institutionID, Name: name}
	if found {
		plan.Group = &model.TaskShareholder{ShareholderGroupID: &groupID}
	}
	return &mappingLookup{from: model.KindInstitution, id: institutionID, answer: groupID, found: found}, nil
}

// pairFromGroup 写股东组；映射到机构时一并写入，未映射时不动机构
func (s *ReconcileService) pairFromGroup(ctx context.Context, companyID, groupID, name string, plan *repository.LinkPlan) (*mappingLookup, error) {
	if s.mapping == nil {
		return nil, apperr.External(errors.New("mapping client not configured"))
	}
	institutionID, found, err := s.mapping.InstitutionForGroup(ctx, companyID, groupID)
	if err != nil {
		return nil, apperr.External(fmt.Errorf("lookup institution for group %s: %w", groupID, err))
	}
	gid := groupID
	plan.Group = &model.TaskShareholder{ShareholderGroupID: &gid, Name: name}
	if found {
		plan.Institution = &model.TaskInstitution{InstitutionID: institutionID}
	}
	return &mappingLookup{from: model.KindShareholderGroup, id: groupID, answer: institutionID, found: found}, nil
}

// verify 写后复核：映射答案若已变化，只记录告警与指标并清除缓存，不回滚
func (s *ReconcileService) verify(ctx context.Context, companyID string, l *mappingLookup) {
	if !s.verifyAfterWrite || l == nil || s.mapping == nil {
		return
	}
	client := s.mapping
	if u, ok := client.(uncachedMapping); ok {
		client = u.Uncached()
	}

	var (
		answer string
		found  bool
		err    error
	)
	if l.from == model.KindInstitution {
		answer, found, err = client.GroupForInstitution(ctx, companyID, l.id)
	} else {
		answer, found, err = client.InstitutionForGroup(ctx, companyID, l.id)
	}
	log := s.logger.WithFields(logrus.Fields{"company_id": companyID, "from": l.from, "id": l.id})
	if err != nil {
		log.WithError(err).Warn("写后复核映射失败")
		return
	}
	if found == l.found && answer == l.answer {
		return
	}

	metrics.MappingDriftTotal.Inc()
	log.WithFields(logrus.Fields{"decided": l.answer, "current": answer}).Warn("映射在写入后发生变化")
	if inv, ok := s.mapping.(mappingInvalidator); ok {
		institutionID, groupID := l.id, l.answer
		if l.from == model.KindShareholderGroup {
			institutionID, groupID = l.answer, l.id
		}
		if err := inv.Invalidate(ctx, companyID, institutionID, groupID); err != nil {
			log.WithError(err).Warn("清除映射缓存失败")
		}
	}
}

// RemoveCounterparty 只删除指定的一行，不影响配对的机构/股东组
func (s *ReconcileService) RemoveCounterparty(ctx context.Context, companyID, taskID string, kind model.CounterpartyKind, counterpartyID string) error {
	if err := validateLinkRequest(LinkRequest{CompanyID: companyID, TaskID: taskID, Kind: kind, CounterpartyID: counterpartyID}); err != nil {
		return err
	}
	if err := s.ensureTask(ctx, companyID, taskID); err != nil {
		return err
	}
	n, err := s.links.RemoveLink(ctx, taskID, kind, counterpartyID)
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{"task_id": taskID, "kind": kind}).Error("删除任务关联失败")
		return apperr.Store(err)
	}
	s.logger.WithFields(logrus.Fields{"task_id": taskID, "kind": kind, "id": counterpartyID, "removed": n}).Info("删除任务关联")
	return nil
}

// LinkFromExternalContact 目录联系人未导入时先导入，再关联本地联系人
func (s *ReconcileService) LinkFromExternalContact(ctx context.Context, companyID, taskID, externalContactID string) (string, error) {
	if strings.TrimSpace(taskID) == "" {
		return "", apperr.Validation("taskId", errors.New("task id is required"))
	}
	if err := s.ensureTask(ctx, companyID, taskID); err != nil {
		return "", err
	}
	if s.importer == nil {
		return "", apperr.External(errors.New("directory importer not configured"))
	}
	res, err := s.importer.ImportExternal(ctx, companyID, externalContactID)
	if err != nil {
		return "", err
	}
	if err := s.LinkCounterparty(ctx, LinkRequest{
		CompanyID:      companyID,
		TaskID:         taskID,
		Kind:           model.KindContact,
		CounterpartyID: res.ContactID,
	}); err != nil {
		return "", err
	}
	return res.ContactID, nil
}
