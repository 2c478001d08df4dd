package repository

import (
	"errors"

	"github.com/mautops/dailyreport-gin/internal/model"
	"gorm.io/gorm"
)

// ReportRepository 日报仓储接口
type ReportRepository interface {
	Save(report *model.DailyReportModel) error
	FindByID(id string) (*model.DailyReportModel, error)
	FindByEmployeeAndDate(employeeID, date string) (*model.DailyReportModel, error)
	FindByFilter(filter *ReportFilter) ([]*model.DailyReportModel, int64, error)
	Delete(id string) error
	CountByEmployeeAndMonth(employeeID, monthPrefix string) (total, verified int64, err error)
}

// ReportFilter 日报查询过滤器
type ReportFilter struct {
	EmployeeID *string
	StartDate  *string // 含
	EndDate    *string // 含
	IsVerified *bool
	SortBy     string // 排序字段,调用方负责白名单校验
	Order      string // ASC / DESC
	Page       int
	PageSize   int
}

// reportRepository 日报仓储实现
type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository 创建日报仓储
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

// Save 保存日报
func (r *reportRepository) Save(report *model.DailyReportModel) error {
	return r.db.Save(report).Error
}

// FindByID 根据 ID 查找日报
func (r *reportRepository) FindByID(id string) (*model.DailyReportModel, error) {
	var m model.DailyReportModel
	if err := r.db.Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// FindByEmployeeAndDate 查找员工某一天的日报,不存在时返回 (nil, nil)
func (r *reportRepository) FindByEmployeeAndDate(employeeID, date string) (*model.DailyReportModel, error) {
	var m model.DailyReportModel
	err := r.db.Where("employee_id = ? AND report_date = ?", employeeID, date).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

// FindByFilter 根据过滤器分页查找日报,按日期倒序
func (r *reportRepository) FindByFilter(filter *ReportFilter) ([]*model.DailyReportModel, int64, error) {
	query := r.db.Model(&model.DailyReportModel{})

	if filter != nil {
		if filter.EmployeeID != nil {
			query = query.Where("employee_id = ?", *filter.EmployeeID)
		}
		if filter.StartDate != nil {
			query = query.Where("report_date >= ?", *filter.StartDate)
		}
		if filter.EndDate != nil {
			query = query.Where("report_date <= ?", *filter.EndDate)
		}
		if filter.IsVerified != nil {
			query = query.Where("is_verified = ?", *filter.IsVerified)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortBy := "report_date"
	order := "DESC"
	if filter != nil {
		if filter.SortBy != "" {
			sortBy = filter.SortBy
		}
		if filter.Order != "" {
			order = filter.Order
		}
	}
	query = query.Order(sortBy + " " + order)

	if filter != nil && filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var reports []*model.DailyReportModel
	err := query.Find(&reports).Error
	return reports, total, err
}

// Delete 删除日报
func (r *reportRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&model.DailyReportModel{}).Error
}

// CountByEmployeeAndMonth 统计员工某月的日报总数与已验证数
// monthPrefix 形如 "2026-08"
func (r *reportRepository) CountByEmployeeAndMonth(employeeID, monthPrefix string) (int64, int64, error) {
	var total int64
	err := r.db.Model(&model.DailyReportModel{}).
		Where("employee_id = ? AND report_date LIKE ?", employeeID, monthPrefix+"%").
		Count(&total).Error
	if err != nil {
		return 0, 0, err
	}

	var verified int64
	err = r.db.Model(&model.DailyReportModel{}).
		Where("employee_id = ? AND report_date LIKE ? AND is_verified = ?", employeeID, monthPrefix+"%", true).
		Count(&verified).Error
	if err != nil {
		return 0, 0, err
	}

	return total, verified, nil
}
