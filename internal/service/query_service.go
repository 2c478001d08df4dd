package service

import (
	"context"
	"fmt"

	"github.com/mautops/dailyreport-gin/internal/model"
	"github.com/mautops/dailyreport-gin/internal/repository"
	"github.com/mautops/dailyreport-gin/internal/report"
	"github.com/mautops/dailyreport-gin/internal/utils"
	"gorm.io/gorm"
)

// QueryService 日报查询服务接口
type QueryService interface {
	ListMyReports(ctx context.Context, employeeID string, filter *ListReportsFilter) ([]*report.DailyReport, int64, error)
	// ListEmployeeReports 列出指定员工的日报(主管视角,调用方负责鉴权)
	ListEmployeeReports(ctx context.Context, employeeID string, filter *ListReportsFilter) ([]*report.DailyReport, int64, error)
	// ListPending 列出主管直属下属的未验证日报
	ListPending(ctx context.Context, managerID string, page, pageSize int) ([]*report.DailyReport, int64, error)
}

// ListReportsFilter 日报列表查询过滤器
type ListReportsFilter struct {
	StartDate *string // 含,YYYY-MM-DD
	EndDate   *string // 含,YYYY-MM-DD
	SortBy    string
	Order     string
	Page      int
	PageSize  int
}

// queryService 日报查询服务实现
type queryService struct {
	db         *gorm.DB
	reportRepo repository.ReportRepository
	empRepo    repository.EmployeeRepository
}

// NewQueryService 创建日报查询服务
func NewQueryService(db *gorm.DB) QueryService {
	return &queryService{
		db:         db,
		reportRepo: repository.NewReportRepository(db),
		empRepo:    repository.NewEmployeeRepository(db),
	}
}

// ListMyReports 分页列出员工自己的日报,按日期倒序
func (s *queryService) ListMyReports(ctx context.Context, employeeID string, filter *ListReportsFilter) ([]*report.DailyReport, int64, error) {
	return s.ListEmployeeReports(ctx, employeeID, filter)
}

// ListEmployeeReports 分页列出指定员工的日报
func (s *queryService) ListEmployeeReports(ctx context.Context, employeeID string, filter *ListReportsFilter) ([]*report.DailyReport, int64, error) {
	if filter == nil {
		filter = &ListReportsFilter{}
	}

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	// 排序字段白名单校验,防止 SQL 注入
	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = "report_date"
	}
	if err := utils.ValidateSortField(sortBy); err != nil {
		return nil, 0, fmt.Errorf("invalid sort field: %w", err)
	}
	order := utils.SanitizeSortOrder(filter.Order)

	models, total, err := s.reportRepo.FindByFilter(&repository.ReportFilter{
		EmployeeID: &employeeID,
		StartDate:  filter.StartDate,
		EndDate:    filter.EndDate,
		SortBy:     sortBy,
		Order:      order,
		Page:       page,
		PageSize:   pageSize,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query reports: %w", err)
	}

	return convertAll(models), total, nil
}

// ListPending 列出主管直属下属的未验证日报,按日期倒序
func (s *queryService) ListPending(ctx context.Context, managerID string, page, pageSize int) ([]*report.DailyReport, int64, error) {
	employees, err := s.empRepo.FindByManagerID(managerID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load direct reports: %w", err)
	}
	if len(employees) == 0 {
		return []*report.DailyReport{}, 0, nil
	}

	ids := make([]string, 0, len(employees))
	for _, e := range employees {
		ids = append(ids, e.ID)
	}

	query := s.db.Model(&model.DailyReportModel{}).
		Where("employee_id IN ?", ids).
		Where("is_verified = ?", false)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count pending reports: %w", err)
	}

	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	var models []*model.DailyReportModel
	err = query.Order("report_date DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&models).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query pending reports: %w", err)
	}

	return convertAll(models), total, nil
}

// convertAll 批量转换数据模型,跳过无法反序列化的记录
func convertAll(models []*model.DailyReportModel) []*report.DailyReport {
	reports := make([]*report.DailyReport, 0, len(models))
	for _, m := range models {
		r, err := toDomain(m)
		if err != nil {
			continue
		}
		reports = append(reports, r)
	}
	return reports
}
