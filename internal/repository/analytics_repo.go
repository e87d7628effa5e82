package repository

import (
	"context"
	"fmt"
	"time"

	"OutreachSync/internal/model"

	"gorm.io/gorm"
)

// Dimension 统计的系列维度
type Dimension string

const (
	DimensionExecutor Dimension = "executor"
	DimensionType     Dimension = "type"
)

// Period 统计的时间粒度
type Period string

const (
	PeriodYear  Period = "year"
	PeriodMonth Period = "month"
)

// AnalyticsQuery task_due 落在 [From, To) 内的任务参与统计
type AnalyticsQuery struct {
	CompanyID string
	From      time.Time
	To        time.Time
	Dimension Dimension
	Period    Period
}

// AnalyticsRepository 任务统计查询
type AnalyticsRepository interface {
	CountByPeriod(ctx context.Context, q AnalyticsQuery) ([]model.AnalyticsRow, error)
	Totals(ctx context.Context, q AnalyticsQuery) ([]model.AnalyticsTotal, error)
}

type analyticsRepository struct {
	db *gorm.DB
}

// NewAnalyticsRepository 创建统计仓储
func NewAnalyticsRepository(db *gorm.DB) AnalyticsRepository {
	return &analyticsRepository{db: db}
}

// periodExpr 时间段标签：年 "2023"，月 "2023/05"
func periodExpr(dialect string, p Period) string {
	if dialect == "sqlite" {
		if p == PeriodMonth {
			return "strftime('%Y/%m', t.task_due)"
		}
		return "strftime('%Y', t.task_due)"
	}
	if p == PeriodMonth {
		return "TO_CHAR(t.task_due, 'YYYY/MM')"
	}
	return "TO_CHAR(t.task_due, 'YYYY')"
}

func (r *analyticsRepository) base(ctx context.Context, q AnalyticsQuery) (*gorm.DB, string, error) {
	db := r.db.WithContext(ctx).Table("tasks AS t").
		Where("t.company_id = ? AND t.task_due >= ? AND t.task_due < ?", q.CompanyID, q.From, q.To)
	switch q.Dimension {
	case DimensionExecutor:
		db = db.Joins("JOIN task_executors te ON te.task_id = t.task_id").
			Joins("JOIN users u ON u.id = te.executor_id")
		return db, "u.name", nil
	case DimensionType:
		db = db.Joins("JOIN task_types tt ON tt.task_type_id = t.task_type_id")
		return db, "tt.task_type_name", nil
	}
	return nil, "", fmt.Errorf("unsupported analytics dimension %q", q.Dimension)
}

// CountByPeriod 按 (时间段, 系列) 分组计数，时间段与系列均升序
func (r *analyticsRepository) CountByPeriod(ctx context.Context, q AnalyticsQuery) ([]model.AnalyticsRow, error) {
	db, series, err := r.base(ctx, q)
	if err != nil {
		return nil, err
	}
	bucket := periodExpr(r.db.Dialector.Name(), q.Period)

	var rows []model.AnalyticsRow
	if err := db.
		Select(fmt.Sprintf("%s AS bucket_key, %s AS series_key, COUNT(*) AS task_total", bucket, series)).
		Group(bucket + ", " + series).
		Order("bucket_key ASC, series_key ASC").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("分组统计失败: %w", err)
	}
	return rows, nil
}

// Totals 不分时间段，按系列名称升序
func (r *analyticsRepository) Totals(ctx context.Context, q AnalyticsQuery) ([]model.AnalyticsTotal, error) {
	db, series, err := r.base(ctx, q)
	if err != nil {
		return nil, err
	}

	var totals []model.AnalyticsTotal
	if err := db.
		Select(fmt.Sprintf("%s AS series_key, COUNT(*) AS task_total", series)).
		Group(series).
		Order("series_key ASC").
		Scan(&totals).Error; err != nil {
		return nil, fmt.Errorf("汇总统计失败: %w", err)
	}
	if totals == nil {
		totals = []model.AnalyticsTotal{}
	}
	return totals, nil
}
