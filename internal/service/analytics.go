package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"OutreachSync/internal/apperr"
	"OutreachSync/internal/model"
	"OutreachSync/internal/pivot"
	"OutreachSync/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const analyticsDateLayout = "2006-01-02"

// parseAnalyticsDate 接受 YYYY-MM-DD 或 RFC 3339，时间戳按 UTC 取日期
func parseAnalyticsDate(s string) (time.Time, error) {
	if d, err := time.Parse(analyticsDateLayout, s); err == nil {
		return d, nil
	}
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q is neither YYYY-MM-DD nor RFC 3339", s)
	}
	y, m, d := ts.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}

// AnalyticsRequest initialDate/endDate 为 YYYY-MM-DD 或 RFC 3339，endDate 当天包含在内
type AnalyticsRequest struct {
	CompanyID   string
	InitialDate string
	EndDate     string
	Dimension   repository.Dimension
	Period      repository.Period
}

// AnalyticsService 按执行人/类型的任务统计
type AnalyticsService struct {
	repo   repository.AnalyticsRepository
	logger *logrus.Logger
}

func NewAnalyticsService(repo repository.AnalyticsRepository, logger *logrus.Logger) *AnalyticsService {
	return &AnalyticsService{repo: repo, logger: logger}
}

func (s *AnalyticsService) query(req AnalyticsRequest) (repository.AnalyticsQuery, error) {
	if _, err := uuid.Parse(req.CompanyID); err != nil {
		return repository.AnalyticsQuery{}, apperr.Validation("companyId", err)
	}
	from, err := parseAnalyticsDate(req.InitialDate)
	if err != nil {
		return repository.AnalyticsQuery{}, apperr.Validation("initialDate", err)
	}
	end, err := parseAnalyticsDate(req.EndDate)
	if err != nil {
		return repository.AnalyticsQuery{}, apperr.Validation("endDate", err)
	}
	if end.Before(from) {
		return repository.AnalyticsQuery{}, apperr.Validation("endDate", errors.New("endDate is before initialDate"))
	}
	switch req.Dimension {
	case repository.DimensionExecutor, repository.DimensionType:
	default:
		return repository.AnalyticsQuery{}, apperr.Validation("dimension", fmt.Errorf("unsupported dimension %q", req.Dimension))
	}
	return repository.AnalyticsQuery{
		CompanyID: req.CompanyID,
		From:      from,
		To:        end.AddDate(0, 0, 1),
		Dimension: req.Dimension,
		Period:    req.Period,
	}, nil
}

// Matrix 按年/月分组后转换为补零的矩阵
func (s *AnalyticsService) Matrix(ctx context.Context, req AnalyticsRequest) (pivot.Matrix, error) {
	if req.Period != repository.PeriodYear && req.Period != repository.PeriodMonth {
		return pivot.Matrix{}, apperr.Validation("period", fmt.Errorf("unsupported period %q", req.Period))
	}
	q, err := s.query(req)
	if err != nil {
		return pivot.Matrix{}, err
	}
	rows, err := s.repo.CountByPeriod(ctx, q)
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{"dimension": q.Dimension, "period": q.Period}).Error("任务统计查询失败")
		return pivot.Matrix{}, apperr.Store(err)
	}
	in := make([]pivot.Row, 0, len(rows))
	for _, r := range rows {
		in = append(in, pivot.Row{Bucket: r.Bucket, Series: r.Series, Count: r.Total})
	}
	return pivot.Build(in), nil
}

// Totals 不分时间段的汇总
func (s *AnalyticsService) Totals(ctx context.Context, req AnalyticsRequest) ([]model.AnalyticsTotal, error) {
	q, err := s.query(req)
	if err != nil {
		return nil, err
	}
	totals, err := s.repo.Totals(ctx, q)
	if err != nil {
		s.logger.WithError(err).WithField("dimension", q.Dimension).Error("任务汇总查询失败")
		return nil, apperr.Store(err)
	}
	return totals, nil
}
