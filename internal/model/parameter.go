package model

import (
	"errors"
	"time"
)

// ParameterModel 汇报指标数据模型
// 指标按角色配置,key 在角色内唯一
type ParameterModel struct {
	ID         string    `gorm:"primaryKey;type:varchar(64)"`
	RoleID     string    `gorm:"type:varchar(64);not null;index;uniqueIndex:idx_params_role_key"`
	Key        string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_params_role_key"`
	Label      string    `gorm:"type:varchar(255);not null"`
	Target     float64   `gorm:"not null"`                        // 当日目标值
	Type       string    `gorm:"type:varchar(16);not null"`       // number/percentage/currency
	AllowProof bool      `gorm:"not null"`                        // 是否允许证明附件
	SortOrder  int       `gorm:"not null;default:0"`              // 展示顺序
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

// TableName 指定表名
func (ParameterModel) TableName() string {
	return "reporting_parameters"
}

// Validate 验证指标模型
func (m *ParameterModel) Validate() error {
	if m.ID == "" {
		return errors.New("parameter ID is required")
	}
	if m.RoleID == "" {
		return errors.New("role ID is required")
	}
	if m.Key == "" {
		return errors.New("parameter key is required")
	}
	if m.Label == "" {
		return errors.New("parameter label is required")
	}
	return nil
}
