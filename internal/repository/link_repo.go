package repository

import (
	"context"
	"fmt"

	"OutreachSync/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LinkPlan 一次关联写入计划，nil 字段跳过；整份计划在同一事务内执行
// Institution/Group 为"先删后插"：写入前删除该任务已有的同类关联
type LinkPlan struct {
	TaskID          string
	Institution     *model.TaskInstitution
	Group           *model.TaskShareholder
	Contact         *model.TaskContact
	Fund            *model.TaskFund
	Shareholder     *model.TaskShareholder
	ExternalContact *model.TaskExternalContact
	Executor        *model.TaskExecutor
}

// Empty 计划中没有任何写入
func (p LinkPlan) Empty() bool {
	return p.Institution == nil && p.Group == nil && p.Contact == nil && p.Fund == nil &&
		p.Shareholder == nil && p.ExternalContact == nil && p.Executor == nil
}

// LinkRepository 任务关联持久化
type LinkRepository interface {
	ApplyLinkPlan(ctx context.Context, plan LinkPlan) error
	RemoveLink(ctx context.Context, taskID string, kind model.CounterpartyKind, counterpartyID string) (int64, error)
}

type linkRepository struct {
	db *gorm.DB
}

// NewLinkRepository 创建关联仓储
func NewLinkRepository(db *gorm.DB) LinkRepository {
	return &linkRepository{db: db}
}

func (r *linkRepository) ApplyLinkPlan(ctx context.Context, plan LinkPlan) error {
	if plan.Empty() {
		return nil
	}
	// 开启事务
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("开启事务失败: %w", tx.Error)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := applyPlan(tx, plan); err != nil {
		tx.Rollback()
		return err
	}

	// 提交事务
	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("提交事务失败: %w", err)
	}
	return nil
}

func applyPlan(tx *gorm.DB, plan LinkPlan) error {
	taskID := plan.TaskID

	// 1. 股东组：删除该任务全部股东组行后插入
	if g := plan.Group; g != nil {
		if err := tx.Where("task_id = ? AND shareholder_group_id IS NOT NULL", taskID).
			Delete(&model.TaskShareholder{}).Error; err != nil {
			return fmt.Errorf("删除股东组关联失败: %w", err)
		}
		row := *g
		row.TaskID = taskID
		row.ShareholderID = nil
		if row.ID == "" {
			row.ID = uuid.NewString()
		}
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("保存股东组关联失败: %w, group_id: %s", err, deref(row.ShareholderGroupID))
		}
	}

	// 2. 机构：删除该任务全部机构行后插入
	if inst := plan.Institution; inst != nil {
		if err := tx.Where("task_id = ?", taskID).Delete(&model.TaskInstitution{}).Error; err != nil {
			return fmt.Errorf("删除机构关联失败: %w", err)
		}
		row := *inst
		row.TaskID = taskID
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("保存机构关联失败: %w, institution_id: %s", err, row.InstitutionID)
		}
	}

	// 3. 联系人：同一对先删后插，保证幂等
	if c := plan.Contact; c != nil {
		if err := tx.Where("task_id = ? AND contact_id = ?", taskID, c.ContactID).
			Delete(&model.TaskContact{}).Error; err != nil {
			return fmt.Errorf("删除联系人关联失败: %w", err)
		}
		if err := tx.Create(&model.TaskContact{TaskID: taskID, ContactID: c.ContactID}).Error; err != nil {
			return fmt.Errorf("保存联系人关联失败: %w, contact_id: %s", err, c.ContactID)
		}
	}

	if f := plan.Fund; f != nil {
		row := *f
		row.TaskID = taskID
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "task_id"}, {Name: "fund_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name"}),
		}).Create(&row).Error; err != nil {
			return fmt.Errorf("保存基金关联失败: %w, fund_id: %s", err, row.FundID)
		}
	}

	if s := plan.Shareholder; s != nil {
		if err := tx.Where("task_id = ? AND shareholder_id = ?", taskID, deref(s.ShareholderID)).
			Delete(&model.TaskShareholder{}).Error; err != nil {
			return fmt.Errorf("删除股东关联失败: %w", err)
		}
		row := *s
		row.TaskID = taskID
		row.ShareholderGroupID = nil
		if row.ID == "" {
			row.ID = uuid.NewString()
		}
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("保存股东关联失败: %w, shareholder_id: %s", err, deref(row.ShareholderID))
		}
	}

	if e := plan.ExternalContact; e != nil {
		row := *e
		row.TaskID = taskID
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "task_id"}, {Name: "external_contact_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name"}),
		}).Create(&row).Error; err != nil {
			return fmt.Errorf("保存目录联系人关联失败: %w, external_contact_id: %s", err, row.ExternalContactID)
		}
	}

	if ex := plan.Executor; ex != nil {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&model.TaskExecutor{TaskID: taskID, ExecutorID: ex.ExecutorID}).Error; err != nil {
			return fmt.Errorf("保存执行人失败: %w, executor_id: %s", err, ex.ExecutorID)
		}
	}
	return nil
}

// RemoveLink 只删除指定的一行，不级联到配对的机构/股东组
func (r *linkRepository) RemoveLink(ctx context.Context, taskID string, kind model.CounterpartyKind, counterpartyID string) (int64, error) {
	db := r.db.WithContext(ctx)
	var res *gorm.DB
	switch kind {
	case model.KindContact:
		res = db.Where("task_id = ? AND contact_id = ?", taskID, counterpartyID).Delete(&model.TaskContact{})
	case model.KindInstitution:
		res = db.Where("task_id = ? AND institution_id = ?", taskID, counterpartyID).Delete(&model.TaskInstitution{})
	case model.KindFund:
		res = db.Where("task_id = ? AND fund_id = ?", taskID, counterpartyID).Delete(&model.TaskFund{})
	case model.KindShareholder:
		res = db.Where("task_id = ? AND shareholder_id = ?", taskID, counterpartyID).Delete(&model.TaskShareholder{})
	case model.KindShareholderGroup:
		res = db.Where("task_id = ? AND shareholder_group_id = ?", taskID, counterpartyID).Delete(&model.TaskShareholder{})
	case model.KindExternalContact:
		res = db.Where("task_id = ? AND external_contact_id = ?", taskID, counterpartyID).Delete(&model.TaskExternalContact{})
	case model.KindExecutor:
		res = db.Where("task_id = ? AND executor_id = ?", taskID, counterpartyID).Delete(&model.TaskExecutor{})
	default:
		return 0, fmt.Errorf("unsupported counterparty kind %q", kind)
	}
	if res.Error != nil {
		return 0, fmt.Errorf("删除%s关联失败: %w", kind, res.Error)
	}
	return res.RowsAffected, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
