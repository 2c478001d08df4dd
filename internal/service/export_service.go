package service

import (
	"context"
	"fmt"
	"time"

	"github.com/mautops/dailyreport-gin/internal/repository"
	"github.com/mautops/dailyreport-gin/internal/report"
	"github.com/xuri/excelize/v2"
)

// ExportService 日报导出服务接口
type ExportService interface {
	// ExportMonth 导出员工某月的日报为 xlsx 工作簿,month 形如 "2026-08"
	ExportMonth(ctx context.Context, employeeID, month string) (*excelize.File, error)
}

// exportService 日报导出服务实现
type exportService struct {
	reportRepo repository.ReportRepository
	paramRepo  repository.ParameterRepository
	empRepo    repository.EmployeeRepository
}

// NewExportService 创建日报导出服务
func NewExportService(
	reportRepo repository.ReportRepository,
	paramRepo repository.ParameterRepository,
	empRepo repository.EmployeeRepository,
) ExportService {
	return &exportService{
		reportRepo: reportRepo,
		paramRepo:  paramRepo,
		empRepo:    empRepo,
	}
}

// ExportMonth 导出员工某月的日报
// 每个指标占两列:填报值与完成度,行按日期升序
func (s *exportService) ExportMonth(ctx context.Context, employeeID, month string) (*excelize.File, error) {
	monthStart, err := time.Parse("2006-01", month)
	if err != nil {
		return nil, fmt.Errorf("invalid month %q: %w", month, err)
	}

	emp, err := s.empRepo.FindByID(employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load employee: %w", err)
	}

	paramModels, err := s.paramRepo.FindByRoleID(emp.RoleID)
	if err != nil {
		return nil, fmt.Errorf("failed to load parameters: %w", err)
	}
	params := toParameters(paramModels)

	start := monthStart.Format(report.DateLayout)
	end := monthStart.AddDate(0, 1, -1).Format(report.DateLayout)
	models, _, err := s.reportRepo.FindByFilter(&repository.ReportFilter{
		EmployeeID: &employeeID,
		StartDate:  &start,
		EndDate:    &end,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}

	f := excelize.NewFile()
	sheet := "Reports"
	f.SetSheetName("Sheet1", sheet)

	// 表头
	headers := []interface{}{"Date"}
	for _, p := range params {
		headers = append(headers, p.Label, p.Label+" %")
	}
	headers = append(headers, "General Notes", "Verified", "Manager Comment")
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	// 数据行,FindByFilter 按日期倒序返回,导出时翻转为升序
	row := 2
	for i := len(models) - 1; i >= 0; i-- {
		r, err := toDomain(models[i])
		if err != nil {
			continue
		}
		data := report.Normalize(params, r.ReportData)

		cells := []interface{}{r.ReportDate}
		for _, p := range params {
			entry := data[p.Key]
			cells = append(cells, entry.Value, report.ProgressPercent(entry.Value, p.Target))
		}
		verified := "no"
		if r.IsVerified {
			verified = "yes"
		}
		cells = append(cells, r.GeneralNotes, verified, r.ManagerComment)

		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return nil, fmt.Errorf("failed to write row: %w", err)
		}
		row++
	}

	// 汇总页
	summary := "Summary"
	if _, err := f.NewSheet(summary); err != nil {
		return nil, err
	}
	total := len(models)
	verified := 0
	for _, m := range models {
		if m.IsVerified {
			verified++
		}
	}
	rows := [][]interface{}{
		{"Employee", emp.Name},
		{"Month", month},
		{"Reports", total},
		{"Verified", verified},
		{"Pending", total - verified},
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		row := r
		if err := f.SetSheetRow(summary, cell, &row); err != nil {
			return nil, err
		}
	}

	return f, nil
}
