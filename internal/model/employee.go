package model

import (
	"errors"
	"time"
)

// RoleModel 角色数据模型
type RoleModel struct {
	ID          string    `gorm:"primaryKey;type:varchar(64)"`
	Name        string    `gorm:"type:varchar(255);not null;index"`
	Description string    `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

// TableName 指定表名
func (RoleModel) TableName() string {
	return "roles"
}

// Validate 验证角色模型
func (m *RoleModel) Validate() error {
	if m.ID == "" {
		return errors.New("role ID is required")
	}
	if m.Name == "" {
		return errors.New("role name is required")
	}
	return nil
}

// EmployeeModel 员工数据模型
// ID 与认证系统的 subject 一致
type EmployeeModel struct {
	ID        string    `gorm:"primaryKey;type:varchar(64)"`
	Name      string    `gorm:"type:varchar(255);not null"`
	Email     string    `gorm:"type:varchar(255);index"`
	RoleID    string    `gorm:"type:varchar(64);not null;index"`
	ManagerID string    `gorm:"type:varchar(64);index"` // 直属主管 ID
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName 指定表名
func (EmployeeModel) TableName() string {
	return "employees"
}

// Validate 验证员工模型
func (m *EmployeeModel) Validate() error {
	if m.ID == "" {
		return errors.New("employee ID is required")
	}
	if m.Name == "" {
		return errors.New("employee name is required")
	}
	if m.RoleID == "" {
		return errors.New("role ID is required")
	}
	return nil
}
