package service

import (
	"context"
	"fmt"
	"time"

	"github.com/mautops/dailyreport-gin/internal/repository"
	"github.com/mautops/dailyreport-gin/internal/report"
)

// StatisticsService 统计服务接口
type StatisticsService interface {
	// GetMyStats 获取员工当月的提交统计
	GetMyStats(ctx context.Context, employeeID string) (*report.Stats, error)
}

// statisticsService 统计服务实现
type statisticsService struct {
	reportRepo repository.ReportRepository
	now        func() time.Time
}

// NewStatisticsService 创建统计服务
func NewStatisticsService(reportRepo repository.ReportRepository) StatisticsService {
	return &statisticsService{
		reportRepo: reportRepo,
		now:        time.Now,
	}
}

// NewStatisticsServiceAt 创建使用固定时钟的统计服务(测试用)
func NewStatisticsServiceAt(reportRepo repository.ReportRepository, now func() time.Time) StatisticsService {
	return &statisticsService{
		reportRepo: reportRepo,
		now:        now,
	}
}

// GetMyStats 获取员工当月的提交统计
// 提交率 = 当月日报数 / 当月已过工作日数
func (s *statisticsService) GetMyStats(ctx context.Context, employeeID string) (*report.Stats, error) {
	today := s.now()
	month := today.Format("2006-01")

	total, verified, err := s.reportRepo.CountByEmployeeAndMonth(employeeID, month)
	if err != nil {
		return nil, fmt.Errorf("failed to count reports: %w", err)
	}

	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
	workingDays := CountWorkingDays(monthStart, today)

	rate := 0.0
	if workingDays > 0 {
		rate = float64(total) / float64(workingDays) * 100
		if rate > 100 {
			rate = 100
		}
	}

	return &report.Stats{
		TotalReports:    total,
		VerifiedReports: verified,
		PendingReports:  total - verified,
		WorkingDays:     workingDays,
		SubmissionRate:  rate,
		Month:           month,
	}, nil
}

// CountWorkingDays 统计 [from, to] 区间内的工作日数(周一至周五)
func CountWorkingDays(from, to time.Time) int {
	from = time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	to = time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, to.Location())

	count := 0
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		switch d.Weekday() {
		case time.Saturday, time.Sunday:
		default:
			count++
		}
	}
	return count
}
