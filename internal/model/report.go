package model

import (
	"errors"
	"time"
)

// DailyReportModel 日报数据模型
// 同一员工同一日期只允许一条记录,由唯一索引保证
type DailyReportModel struct {
	ID             string     `gorm:"primaryKey;type:varchar(64)"`
	EmployeeID     string     `gorm:"type:varchar(64);not null;index;uniqueIndex:idx_reports_employee_date"`
	ReportDate     string     `gorm:"type:varchar(10);not null;index;uniqueIndex:idx_reports_employee_date"` // YYYY-MM-DD
	ReportData     []byte     `gorm:"type:jsonb;not null"` // 指标 key -> 填报内容
	GeneralNotes   string     `gorm:"type:text"`
	Attachments    []byte     `gorm:"type:jsonb"` // 附件列表
	IsVerified     bool       `gorm:"not null;index"`
	VerifiedBy     *string    `gorm:"type:varchar(64)"` // 验证人 ID
	VerifiedAt     *time.Time `gorm:""`
	ManagerComment string     `gorm:"type:text"`
	CreatedAt      time.Time  `gorm:"not null;index"`
	UpdatedAt      time.Time  `gorm:"not null;index"`
}

// TableName 指定表名
func (DailyReportModel) TableName() string {
	return "daily_reports"
}

// Validate 验证日报模型
func (m *DailyReportModel) Validate() error {
	if m.ID == "" {
		return errors.New("report ID is required")
	}
	if m.EmployeeID == "" {
		return errors.New("employee ID is required")
	}
	if m.ReportDate == "" {
		return errors.New("report date is required")
	}
	if len(m.ReportData) == 0 {
		return errors.New("report data is required")
	}
	return nil
}
