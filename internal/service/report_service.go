package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mautops/dailyreport-gin/internal/metrics"
	"github.com/mautops/dailyreport-gin/internal/model"
	"github.com/mautops/dailyreport-gin/internal/repository"
	"github.com/mautops/dailyreport-gin/internal/report"
	"gorm.io/gorm"
)

// ReportService 日报服务接口
type ReportService interface {
	Submit(ctx context.Context, req *SubmitReportRequest) (*report.DailyReport, error)
	Update(ctx context.Context, employeeID, reportID string, req *UpdateReportRequest) (*report.DailyReport, error)
	Delete(ctx context.Context, employeeID, reportID string) error
	GetToday(ctx context.Context, employeeID string) (*report.DailyReport, error)
	GetByID(ctx context.Context, reportID string) (*report.DailyReport, error)
	Verify(ctx context.Context, req *VerifyReportRequest) (*report.DailyReport, error)
}

// SubmitReportRequest 提交日报请求
type SubmitReportRequest struct {
	EmployeeID   string
	ReportDate   string // YYYY-MM-DD
	ReportData   report.ReportData
	GeneralNotes string
	Attachments  []report.Attachment
}

// UpdateReportRequest 更新日报请求
type UpdateReportRequest struct {
	ReportData   report.ReportData
	GeneralNotes string
	Attachments  []report.Attachment
}

// VerifyReportRequest 验证日报请求
type VerifyReportRequest struct {
	VerifierID string
	ReportID   string
	Comment    string
}

// reportService 日报服务实现
type reportService struct {
	reportRepo repository.ReportRepository
	paramRepo  repository.ParameterRepository
	empRepo    repository.EmployeeRepository
	auditSvc   AuditLogService
}

// NewReportService 创建日报服务
func NewReportService(
	reportRepo repository.ReportRepository,
	paramRepo repository.ParameterRepository,
	empRepo repository.EmployeeRepository,
	auditSvc AuditLogService,
) ReportService {
	return &reportService{
		reportRepo: reportRepo,
		paramRepo:  paramRepo,
		empRepo:    empRepo,
		auditSvc:   auditSvc,
	}
}

// Submit 提交日报,同一员工同一日期只允许一份
func (s *reportService) Submit(ctx context.Context, req *SubmitReportRequest) (*report.DailyReport, error) {
	if _, err := time.Parse(report.DateLayout, req.ReportDate); err != nil {
		return nil, fmt.Errorf("invalid report date %q: %w", req.ReportDate, err)
	}

	existing, err := s.reportRepo.FindByEmployeeAndDate(req.EmployeeID, req.ReportDate)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing report: %w", err)
	}
	if existing != nil {
		return nil, report.ErrDuplicateReport
	}

	params, err := s.employeeParams(req.EmployeeID)
	if err != nil {
		return nil, err
	}

	attachments := req.Attachments
	if attachments == nil {
		attachments = []report.Attachment{}
	}

	now := time.Now()
	r := &report.DailyReport{
		ID:           uuid.New().String(),
		EmployeeID:   req.EmployeeID,
		ReportDate:   req.ReportDate,
		ReportData:   report.Normalize(params, req.ReportData),
		GeneralNotes: req.GeneralNotes,
		Attachments:  attachments,
		IsVerified:   false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	m, err := toModel(r)
	if err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if err := s.reportRepo.Save(m); err != nil {
		return nil, fmt.Errorf("failed to save report: %w", err)
	}

	metrics.RecordReportSubmitted()
	_ = s.auditSvc.RecordAction(ctx, req.EmployeeID, "create", "report", r.ID, map[string]interface{}{
		"report_date": r.ReportDate,
	})

	return r, nil
}

// Update 更新日报,已验证的日报拒绝修改
func (s *reportService) Update(ctx context.Context, employeeID, reportID string, req *UpdateReportRequest) (*report.DailyReport, error) {
	m, err := s.reportRepo.FindByID(reportID)
	if err != nil {
		if isNotFound(err) {
			return nil, report.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load report: %w", err)
	}
	if m.EmployeeID != employeeID {
		return nil, report.ErrNotFound
	}
	if m.IsVerified {
		return nil, report.ErrAlreadyVerified
	}

	params, err := s.employeeParams(employeeID)
	if err != nil {
		return nil, err
	}

	r, err := toDomain(m)
	if err != nil {
		return nil, err
	}
	r.ReportData = report.Normalize(params, req.ReportData)
	r.GeneralNotes = req.GeneralNotes
	if req.Attachments == nil {
		r.Attachments = []report.Attachment{}
	} else {
		r.Attachments = req.Attachments
	}
	r.UpdatedAt = time.Now()

	updated, err := toModel(r)
	if err != nil {
		return nil, err
	}
	if err := s.reportRepo.Save(updated); err != nil {
		return nil, fmt.Errorf("failed to save report: %w", err)
	}

	metrics.RecordReportOperation("update")
	_ = s.auditSvc.RecordAction(ctx, employeeID, "update", "report", r.ID, map[string]interface{}{
		"report_date": r.ReportDate,
	})

	return r, nil
}

// Delete 删除日报,已验证的日报拒绝删除
func (s *reportService) Delete(ctx context.Context, employeeID, reportID string) error {
	m, err := s.reportRepo.FindByID(reportID)
	if err != nil {
		if isNotFound(err) {
			return report.ErrNotFound
		}
		return fmt.Errorf("failed to load report: %w", err)
	}
	if m.EmployeeID != employeeID {
		return report.ErrNotFound
	}
	if m.IsVerified {
		return report.ErrAlreadyVerified
	}

	if err := s.reportRepo.Delete(reportID); err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}

	metrics.RecordReportOperation("delete")
	_ = s.auditSvc.RecordAction(ctx, employeeID, "delete", "report", reportID, map[string]interface{}{
		"report_date": m.ReportDate,
	})

	return nil
}

// GetToday 获取员工今天的日报,未提交时返回 (nil, nil)
func (s *reportService) GetToday(ctx context.Context, employeeID string) (*report.DailyReport, error) {
	today := time.Now().Format(report.DateLayout)
	m, err := s.reportRepo.FindByEmployeeAndDate(employeeID, today)
	if err != nil {
		return nil, fmt.Errorf("failed to load today's report: %w", err)
	}
	if m == nil {
		return nil, nil
	}
	return s.toDomainNormalized(employeeID, m)
}

// GetByID 按 ID 获取日报
func (s *reportService) GetByID(ctx context.Context, reportID string) (*report.DailyReport, error) {
	m, err := s.reportRepo.FindByID(reportID)
	if err != nil {
		if isNotFound(err) {
			return nil, report.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load report: %w", err)
	}
	return s.toDomainNormalized(m.EmployeeID, m)
}

// Verify 主管验证日报,验证后不可再修改
func (s *reportService) Verify(ctx context.Context, req *VerifyReportRequest) (*report.DailyReport, error) {
	m, err := s.reportRepo.FindByID(req.ReportID)
	if err != nil {
		if isNotFound(err) {
			return nil, report.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load report: %w", err)
	}
	if m.IsVerified {
		return nil, report.ErrAlreadyVerified
	}

	now := time.Now()
	verifierID := req.VerifierID
	m.IsVerified = true
	m.VerifiedBy = &verifierID
	m.VerifiedAt = &now
	m.ManagerComment = req.Comment
	m.UpdatedAt = now

	if err := s.reportRepo.Save(m); err != nil {
		return nil, fmt.Errorf("failed to save report: %w", err)
	}

	metrics.RecordReportOperation("verify")
	_ = s.auditSvc.RecordAction(ctx, req.VerifierID, "verify", "report", m.ID, map[string]interface{}{
		"employee_id": m.EmployeeID,
		"report_date": m.ReportDate,
	})

	return s.toDomainNormalized(m.EmployeeID, m)
}

// employeeParams 取员工角色的指标集
func (s *reportService) employeeParams(employeeID string) ([]report.Parameter, error) {
	emp, err := s.empRepo.FindByID(employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load employee: %w", err)
	}

	models, err := s.paramRepo.FindByRoleID(emp.RoleID)
	if err != nil {
		return nil, fmt.Errorf("failed to load parameters: %w", err)
	}
	return toParameters(models), nil
}

// toDomainNormalized 转换为领域对象并按当前指标集归一化
func (s *reportService) toDomainNormalized(employeeID string, m *model.DailyReportModel) (*report.DailyReport, error) {
	r, err := toDomain(m)
	if err != nil {
		return nil, err
	}

	params, err := s.employeeParams(employeeID)
	if err != nil {
		return nil, err
	}
	r.ReportData = report.Normalize(params, r.ReportData)
	return r, nil
}

// isNotFound 判断仓储错误是否为记录不存在
func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
