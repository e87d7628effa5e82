package repository

import (
	"context"
	"fmt"

	"OutreachSync/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TaskRepository 任务写入及基础查询
type TaskRepository interface {
	Create(ctx context.Context, task *model.Task, executorIDs []string, links *LinkPlan) error
	Delete(ctx context.Context, companyID, taskID string) (bool, error)
	Exists(ctx context.Context, companyID, taskID string) (bool, error)
	AddFollowUp(ctx context.Context, followUp *model.TaskFollowUp) error
	RemoveFollowUp(ctx context.Context, taskID, followUpID string) (int64, error)
	ListTaskTypes(ctx context.Context, companyID string) ([]model.TaskType, error)
	ListTaskSubtypes(ctx context.Context, taskTypeIDs []string) ([]model.TaskSubtype, error)
}

type taskRepository struct {
	db *gorm.DB
}

// NewTaskRepository 创建任务仓储
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

// Create 任务、执行人及初始关联（可为 nil）在同一事务内写入
func (r *taskRepository) Create(ctx context.Context, task *model.Task, executorIDs []string, links *LinkPlan) error {
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

	if err := tx.Create(task).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("保存任务失败: %w", err)
	}
	if len(executorIDs) > 0 {
		rows := make([]model.TaskExecutor, 0, len(executorIDs))
		for _, id := range executorIDs {
			rows = append(rows, model.TaskExecutor{TaskID: task.TaskID, ExecutorID: id})
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("保存执行人失败: %w", err)
		}
	}
	if links != nil && !links.Empty() {
		plan := *links
		plan.TaskID = task.TaskID
		if err := applyPlan(tx, plan); err != nil {
			tx.Rollback()
			return err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("提交事务失败: %w", err)
	}
	return nil
}

// Delete 删除任务及全部关联行，任务不存在时返回 false
func (r *taskRepository) Delete(ctx context.Context, companyID, taskID string) (bool, error) {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return false, fmt.Errorf("开启事务失败: %w", tx.Error)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	res := tx.Where("company_id = ? AND task_id = ?", companyID, taskID).Delete(&model.Task{})
	if res.Error != nil {
		tx.Rollback()
		return false, fmt.Errorf("删除任务失败: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		return false, nil
	}

	for _, m := range []interface{}{
		&model.TaskContact{},
		&model.TaskInstitution{},
		&model.TaskFund{},
		&model.TaskShareholder{},
		&model.TaskExternalContact{},
		&model.TaskExecutor{},
		&model.TaskFollowUp{},
	} {
		if err := tx.Where("task_id = ?", taskID).Delete(m).Error; err != nil {
			tx.Rollback()
			return false, fmt.Errorf("删除任务关联失败: %w", err)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return false, fmt.Errorf("提交事务失败: %w", err)
	}
	return true, nil
}

func (r *taskRepository) Exists(ctx context.Context, companyID, taskID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("company_id = ? AND task_id = ?", companyID, taskID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *taskRepository) AddFollowUp(ctx context.Context, followUp *model.TaskFollowUp) error {
	return r.db.WithContext(ctx).Create(followUp).Error
}

func (r *taskRepository) RemoveFollowUp(ctx context.Context, taskID, followUpID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("task_id = ? AND followup_id = ?", taskID, followUpID).
		Delete(&model.TaskFollowUp{})
	return res.RowsAffected, res.Error
}

func (r *taskRepository) ListTaskTypes(ctx context.Context, companyID string) ([]model.TaskType, error) {
	var types []model.TaskType
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("task_type_name ASC").
		Find(&types).Error
	return types, err
}

func (r *taskRepository) ListTaskSubtypes(ctx context.Context, taskTypeIDs []string) ([]model.TaskSubtype, error) {
	if len(taskTypeIDs) == 0 {
		return nil, nil
	}
	var subtypes []model.TaskSubtype
	err := r.db.WithContext(ctx).
		Where("task_type_id IN ?", taskTypeIDs).
		Order("task_subtype_name ASC").
		Find(&subtypes).Error
	return subtypes, err
}
