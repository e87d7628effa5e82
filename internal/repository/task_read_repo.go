package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"OutreachSync/internal/model"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// ListScope 任务列表的过滤维度
type ListScope string

const (
	ScopeCompany          ListScope = "company"
	ScopeContact          ListScope = "contact"
	ScopeInstitution      ListScope = "institution"
	ScopeFund             ListScope = "fund"
	ScopeShareholder      ListScope = "shareholder"
	ScopeShareholderGroup ListScope = "shareholderGroup"
	ScopeExternalContact  ListScope = "externalContact"
)

// ListFilter 列表查询条件；ScopeCompany 时忽略 ScopeID
type ListFilter struct {
	CompanyID string
	Scope     ListScope
	ScopeID   string
	Page      int
	PerPage   int
}

// TaskReadRepository 任务只读查询
type TaskReadRepository interface {
	GetDetail(ctx context.Context, companyID, taskID string) (*model.TaskDetail, error)
	List(ctx context.Context, filter ListFilter) ([]model.TaskListItem, int64, error)
}

type taskReadRepository struct {
	db *gorm.DB
}

// NewTaskReadRepository 创建任务只读仓储
func NewTaskReadRepository(db *gorm.DB) TaskReadRepository {
	return &taskReadRepository{db: db}
}

// snapshotTxOptions 详情的多条查询共享一个一致快照
var snapshotTxOptions = &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}

// GetDetail 任务不存在时返回 gorm.ErrRecordNotFound
func (r *taskReadRepository) GetDetail(ctx context.Context, companyID, taskID string) (*model.TaskDetail, error) {
	detail := &model.TaskDetail{}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Table("tasks AS t").
			Select(`t.task_id, t.company_id, t.task_title, t.task_type, t.task_subtype, t.task_description,
				t.task_due, t.task_start_date, t.task_origin, t.created_by, t.created_at, t.updated_at,
				tt.task_type_id AS mz_task_type_id, tt.task_type_name AS mz_task_type_name,
				ts.task_subtype_id AS mz_task_subtype_id, ts.task_subtype_name AS mz_task_subtype_name`).
			Joins("LEFT JOIN task_types tt ON tt.task_type_id = t.task_type_id").
			Joins("LEFT JOIN task_subtypes ts ON ts.task_subtype_id = t.task_subtype_id").
			Where("t.company_id = ? AND t.task_id = ?", companyID, taskID).
			Limit(1).
			Scan(&detail.Task)
		if res.Error != nil {
			return fmt.Errorf("查询任务失败: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		if err := tx.Table("users AS u").
			Select("u.id, u.name").
			Joins("JOIN task_executors te ON te.executor_id = u.id").
			Where("te.task_id = ?", taskID).
			Order("u.name ASC").
			Scan(&detail.Executors).Error; err != nil {
			return fmt.Errorf("查询执行人失败: %w", err)
		}
		if err := tx.Table("contacts AS c").
			Select("c.id, c.name, c.email_1").
			Joins("JOIN task_contacts tc ON tc.contact_id = c.id").
			Where("tc.task_id = ?", taskID).
			Order("c.name ASC").
			Scan(&detail.Contacts).Error; err != nil {
			return fmt.Errorf("查询联系人失败: %w", err)
		}
		if err := tx.Where("task_id = ?", taskID).Order("name ASC").Find(&detail.Funds).Error; err != nil {
			return fmt.Errorf("查询基金失败: %w", err)
		}
		if err := tx.Where("task_id = ?", taskID).Order("name ASC").Find(&detail.Institutions).Error; err != nil {
			return fmt.Errorf("查询机构失败: %w", err)
		}
		if err := tx.Where("task_id = ?", taskID).Order("annotation_date DESC").Find(&detail.FollowUps).Error; err != nil {
			return fmt.Errorf("查询跟进记录失败: %w", err)
		}
		if err := tx.Where("task_id = ?", taskID).Order("name ASC").Find(&detail.ExternalContacts).Error; err != nil {
			return fmt.Errorf("查询目录联系人失败: %w", err)
		}
		if err := tx.Where("task_id = ?", taskID).Order("name ASC").Find(&detail.ShareholderAndGroups).Error; err != nil {
			return fmt.Errorf("查询股东失败: %w", err)
		}
		return nil
	}, snapshotTxOptions)
	if err != nil {
		return nil, err
	}
	normalizeDetail(detail)
	return detail, nil
}

func normalizeDetail(d *model.TaskDetail) {
	if d.Executors == nil {
		d.Executors = []model.ExecutorRef{}
	}
	if d.Contacts == nil {
		d.Contacts = []model.ContactRef{}
	}
	if d.Funds == nil {
		d.Funds = []model.TaskFund{}
	}
	if d.Institutions == nil {
		d.Institutions = []model.TaskInstitution{}
	}
	if d.FollowUps == nil {
		d.FollowUps = []model.TaskFollowUp{}
	}
	if d.ExternalContacts == nil {
		d.ExternalContacts = []model.TaskExternalContact{}
	}
	if d.ShareholderAndGroups == nil {
		d.ShareholderAndGroups = []model.TaskShareholder{}
	}
}

type taskListRow struct {
	TaskID       string     `gorm:"column:task_id"`
	Title        string     `gorm:"column:task_title"`
	Type         string     `gorm:"column:task_type"`
	Subtype      string     `gorm:"column:task_subtype"`
	Description  string     `gorm:"column:task_description"`
	Due          time.Time  `gorm:"column:task_due"`
	StartDate    *time.Time `gorm:"column:task_start_date"`
	Origin       string     `gorm:"column:task_origin"`
	TaskTypeName *string    `gorm:"column:mz_task_type_name"`
}

type nameRow struct {
	TaskID string `gorm:"column:task_id"`
	Name   string `gorm:"column:name"`
}

type countRow struct {
	TaskID string `gorm:"column:task_id"`
	Total  int    `gorm:"column:total"`
}

func (r *taskReadRepository) scoped(ctx context.Context, filter ListFilter) (*gorm.DB, error) {
	q := r.db.WithContext(ctx).Table("tasks AS t").Where("t.company_id = ?", filter.CompanyID)
	switch filter.Scope {
	case ScopeCompany, "":
	case ScopeContact:
		q = q.Where("t.task_id IN (SELECT task_id FROM task_contacts WHERE contact_id = ?)", filter.ScopeID)
	case ScopeInstitution:
		q = q.Where("t.task_id IN (SELECT task_id FROM task_institutions WHERE institution_id = ?)", filter.ScopeID)
	case ScopeFund:
		q = q.Where("t.task_id IN (SELECT task_id FROM task_funds WHERE fund_id = ?)", filter.ScopeID)
	case ScopeShareholder:
		q = q.Where("t.task_id IN (SELECT task_id FROM task_shareholders WHERE shareholder_id = ?)", filter.ScopeID)
	case ScopeShareholderGroup:
		q = q.Where("t.task_id IN (SELECT task_id FROM task_shareholders WHERE shareholder_group_id = ?)", filter.ScopeID)
	case ScopeExternalContact:
		// 直接关联的目录联系人，或已导入为本地联系人后经 task_contacts 关联
		q = q.Where(`(t.task_id IN (SELECT task_id FROM task_external_contacts WHERE external_contact_id = ?)
			OR t.task_id IN (SELECT tc.task_id FROM task_contacts tc JOIN contacts c ON c.id = tc.contact_id
				WHERE c.company_id = ? AND c.external_contact_id = ?))`,
			filter.ScopeID, filter.CompanyID, filter.ScopeID)
	default:
		return nil, fmt.Errorf("unsupported list scope %q", filter.Scope)
	}
	return q, nil
}

// List 按 task_due 倒序分页，并汇总每行的计数与名称
func (r *taskReadRepository) List(ctx context.Context, filter ListFilter) ([]model.TaskListItem, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PerPage <= 0 {
		filter.PerPage = 10
	}

	query, err := r.scoped(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	base := query.Session(&gorm.Session{})
	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("统计任务数失败: %w", err)
	}

	var rows []taskListRow
	if err := base.
		Select(`t.task_id, t.task_title, t.task_type, t.task_subtype, t.task_description,
			t.task_due, t.task_start_date, t.task_origin, tt.task_type_name AS mz_task_type_name`).
		Joins("LEFT JOIN task_types tt ON tt.task_type_id = t.task_type_id").
		Order("t.task_due DESC").
		Order("t.task_id ASC").
		Offset((filter.Page - 1) * filter.PerPage).
		Limit(filter.PerPage).
		Scan(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("查询任务列表失败: %w", err)
	}

	items := make([]model.TaskListItem, 0, len(rows))
	if len(rows) == 0 {
		return items, total, nil
	}
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.TaskID)
	}

	var (
		externalRows    []nameRow
		shareholderRows []nameRow
		executorRows    []nameRow
		contactCounts   []countRow
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return r.db.WithContext(gctx).Table("task_external_contacts").
			Select("task_id, name").
			Where("task_id IN ?", ids).
			Order("name ASC").
			Scan(&externalRows).Error
	})
	g.Go(func() error {
		return r.db.WithContext(gctx).Table("task_shareholders").
			Select("task_id, name").
			Where("task_id IN ?", ids).
			Order("name ASC").
			Scan(&shareholderRows).Error
	})
	g.Go(func() error {
		return r.db.WithContext(gctx).Table("task_executors AS te").
			Select("te.task_id, u.name").
			Joins("JOIN users u ON u.id = te.executor_id").
			Where("te.task_id IN ?", ids).
			Order("u.name ASC").
			Scan(&executorRows).Error
	})
	g.Go(func() error {
		return r.db.WithContext(gctx).Table("task_contacts").
			Select("task_id, COUNT(*) AS total").
			Where("task_id IN ?", ids).
			Group("task_id").
			Scan(&contactCounts).Error
	})
	if err := g.Wait(); err != nil {
		return nil, 0, fmt.Errorf("汇总任务关联失败: %w", err)
	}

	externalNames, externalCounts := groupNames(externalRows)
	shareholderNames, shareholderCounts := groupNames(shareholderRows)
	executorNames, _ := groupNames(executorRows)
	contactsByTask := make(map[string]int, len(contactCounts))
	for _, c := range contactCounts {
		contactsByTask[c.TaskID] = c.Total
	}

	for _, row := range rows {
		items = append(items, model.TaskListItem{
			TaskID:               row.TaskID,
			Title:                row.Title,
			Type:                 row.Type,
			Subtype:              row.Subtype,
			Description:          row.Description,
			Due:                  row.Due,
			StartDate:            row.StartDate,
			Origin:               row.Origin,
			TaskTypeName:         row.TaskTypeName,
			ExternalContactCount: externalCounts[row.TaskID],
			ShareholderCount:     shareholderCounts[row.TaskID],
			ContactCount:         contactsByTask[row.TaskID],
			ExecutorNames:        nonNil(executorNames[row.TaskID]),
			ExternalContactNames: nonNil(externalNames[row.TaskID]),
			ShareholderNames:     nonNil(shareholderNames[row.TaskID]),
		})
	}
	return items, total, nil
}

// groupNames 按任务分组名称；计数包含名称为空的行
func groupNames(rows []nameRow) (map[string][]string, map[string]int) {
	names := make(map[string][]string)
	counts := make(map[string]int)
	for _, row := range rows {
		counts[row.TaskID]++
		if row.Name != "" {
			names[row.TaskID] = append(names[row.TaskID], row.Name)
		}
	}
	return names, counts
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
